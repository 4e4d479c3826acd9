package materials

import (
	"strings"

	"github.com/Spok95/costbook/internal/domain"
)

// Ledger набор материалов в порядке добавления.
// Каждая мутация собирает новый срез и целиком подменяет старый.
type Ledger struct {
	items []Material
	index map[string]int
}

func NewLedger(items []Material) *Ledger {
	l := &Ledger{}
	l.replace(append([]Material(nil), items...))
	return l
}

func (l *Ledger) replace(items []Material) {
	idx := make(map[string]int, len(items))
	for i, m := range items {
		idx[m.ID] = i
	}
	l.items = items
	l.index = idx
}

// Add создаёт материал. Пустое имя или нечисловые количество/цена => ValidationError.
func (l *Ledger) Add(name, quantity, unitPrice string) (Material, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Material{}, domain.Invalid("name", "required")
	}
	q, ok := domain.ParseNumber(quantity)
	if !ok {
		return Material{}, domain.Invalid("quantity", "must be a number")
	}
	p, ok := domain.ParseNumber(unitPrice)
	if !ok {
		return Material{}, domain.Invalid("unitPrice", "must be a number")
	}

	m := Material{ID: domain.NewID(), Name: name, Quantity: q, UnitPrice: p}
	next := make([]Material, 0, len(l.items)+1)
	next = append(next, l.items...)
	next = append(next, m)
	l.replace(next)
	return m, nil
}

// Update правка поля "в ячейке". Числовой мусор превращается в 0, это не ошибка.
func (l *Ledger) Update(id string, field Field, raw string) (Material, error) {
	i, ok := l.index[id]
	if !ok {
		return Material{}, domain.ErrNotFound
	}
	m := l.items[i]
	switch field {
	case FieldName:
		name := strings.TrimSpace(raw)
		if name == "" {
			return Material{}, domain.Invalid("name", "required")
		}
		m.Name = name
	case FieldQuantity:
		m.Quantity = domain.NumberOrZero(raw)
	case FieldUnitPrice:
		m.UnitPrice = domain.NumberOrZero(raw)
	default:
		return Material{}, domain.Invalid("field", "unknown material field "+string(field))
	}

	next := append([]Material(nil), l.items...)
	next[i] = m
	l.replace(next)
	return m, nil
}

// Remove удаляет материал без каскада: строки рецептов со ссылкой на него просто перестают стоить.
func (l *Ledger) Remove(id string) bool {
	i, ok := l.index[id]
	if !ok {
		return false
	}
	next := make([]Material, 0, len(l.items)-1)
	next = append(next, l.items[:i]...)
	next = append(next, l.items[i+1:]...)
	l.replace(next)
	return true
}

func (l *Ledger) Get(id string) (Material, bool) {
	i, ok := l.index[id]
	if !ok {
		return Material{}, false
	}
	return l.items[i], true
}

func (l *Ledger) List() []Material {
	return append([]Material(nil), l.items...)
}

func (l *Ledger) Len() int { return len(l.items) }

// TotalValue сумма quantity*unitPrice по всем материалам.
func (l *Ledger) TotalValue() float64 {
	var total float64
	for _, m := range l.items {
		total += m.Value()
	}
	return total
}

// Adjust применяет дельты остатков по id (delta > 0 приход, delta < 0 списание).
// Проверок нет: остаток может уйти в минус. Неизвестные id пропускаются.
func (l *Ledger) Adjust(deltas map[string]float64) {
	if len(deltas) == 0 {
		return
	}
	next := append([]Material(nil), l.items...)
	for i := range next {
		if d, ok := deltas[next[i].ID]; ok {
			next[i].Quantity = domain.AddExact(next[i].Quantity, d)
		}
	}
	l.replace(next)
}
