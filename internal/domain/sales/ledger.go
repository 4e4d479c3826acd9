package sales

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/Spok95/costbook/internal/domain"
	"github.com/Spok95/costbook/internal/domain/products"
)

// Catalog то, что нужно журналу продаж от каталога продуктов.
type Catalog interface {
	Get(id string) (products.Product, bool)
	CostOf(recipe []products.RecipeLine) float64
}

// Stock остатки материалов (materials.Ledger).
type Stock interface {
	Adjust(deltas map[string]float64)
}

// Ledger журнал продаж; новые записи в начале.
type Ledger struct {
	items   []Sale
	catalog Catalog
	stock   Stock
}

func NewLedger(items []Sale, catalog Catalog, stock Stock) *Ledger {
	return &Ledger{items: append([]Sale(nil), items...), catalog: catalog, stock: stock}
}

// noTime ключ сортировки для продажи без времени: после любого реального HH:MM.
const noTime = "99:99"

var colorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Record проводит продажу: запись в начало журнала + списание материалов по текущему рецепту.
func (l *Ledger) Record(in Input) (Sale, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return Sale{}, domain.Invalid("productId", "required")
	}
	if strings.TrimSpace(in.Quantity) == "" {
		return Sale{}, domain.Invalid("quantity", "required")
	}
	qty, ok := domain.ParseNumber(in.Quantity)
	if !ok || qty <= 0 {
		return Sale{}, domain.Invalid("quantity", "must be greater than 0")
	}
	date := strings.TrimSpace(in.DateISO)
	if date == "" {
		return Sale{}, domain.Invalid("dateISO", "required")
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return Sale{}, domain.Invalid("dateISO", "must be YYYY-MM-DD")
	}
	if in.Month != "" && MonthOf(date) != in.Month {
		return Sale{}, domain.Invalid("dateISO", "outside selected month")
	}

	s := Sale{
		ID:           domain.NewID(),
		ProductID:    productID,
		Quantity:     qty,
		Place:        strings.TrimSpace(in.Place),
		CustomerName: strings.TrimSpace(in.CustomerName),
		DateISO:      date,
		Time:         NormalizeTime(in.Time),
	}

	// обе части считаются до мутации и применяются вместе
	deltas := l.stockDeltas(s, -1)
	next := make([]Sale, 0, len(l.items)+1)
	next = append(next, s)
	next = append(next, l.items...)

	l.items = next
	l.stock.Adjust(deltas)
	return s, nil
}

// stockDeltas qty*quantityPerUnit по каждой строке рецепта со знаком sign.
// Продукта нет или рецепт пуст: дельт нет.
func (l *Ledger) stockDeltas(s Sale, sign float64) map[string]float64 {
	p, ok := l.catalog.Get(s.ProductID)
	if !ok || len(p.Recipe) == 0 {
		return nil
	}
	deltas := make(map[string]float64, len(p.Recipe))
	for _, line := range p.Recipe {
		deltas[line.MaterialID] = domain.AddExact(deltas[line.MaterialID], sign*domain.MulExact(line.QuantityPerUnit, s.Quantity))
	}
	return deltas
}

// UndoLast отменяет последнюю продажу месяца (в порядке сортировки) и возвращает материалы на склад.
func (l *Ledger) UndoLast(month string) (Sale, error) {
	view := l.MonthView(month)
	if len(view) == 0 {
		return Sale{}, ErrNothingToUndo
	}
	last := view[len(view)-1]

	deltas := l.stockDeltas(last, +1)
	l.items = without(l.items, last.ID)
	l.stock.Adjust(deltas)
	return last, nil
}

// Remove удаляет продажу БЕЗ возврата материалов на склад (в отличие от UndoLast).
func (l *Ledger) Remove(id string) bool {
	if _, ok := l.Get(id); !ok {
		return false
	}
	l.items = without(l.items, id)
	return true
}

func without(items []Sale, id string) []Sale {
	out := make([]Sale, 0, len(items))
	for _, s := range items {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

// Update правка поля на месте. Склад не трогается ни при каком поле.
func (l *Ledger) Update(id string, field Field, value string) (Sale, error) {
	i := slices.IndexFunc(l.items, func(s Sale) bool { return s.ID == id })
	if i < 0 {
		return Sale{}, domain.ErrNotFound
	}
	s := l.items[i]
	switch field {
	case FieldQuantity:
		s.Quantity = domain.NumberOrZero(value)
	case FieldPlace:
		s.Place = value
	case FieldTime:
		s.Time = NormalizeTime(value)
	case FieldDate:
		v := strings.TrimSpace(value)
		if _, err := time.Parse(time.DateOnly, v); err != nil {
			return Sale{}, domain.Invalid("dateISO", "must be YYYY-MM-DD")
		}
		s.DateISO = v
	case FieldColorTag:
		v := strings.TrimSpace(value)
		if v != "" && !colorRe.MatchString(v) {
			return Sale{}, domain.Invalid("colorTag", "must be #RRGGBB or empty")
		}
		s.ColorTag = v
	case FieldNotes:
		s.Notes = value
	case FieldCustomerName:
		s.CustomerName = value
	default:
		return Sale{}, domain.Invalid("field", "unknown sale field "+string(field))
	}

	next := append([]Sale(nil), l.items...)
	next[i] = s
	l.items = next
	return s, nil
}

func (l *Ledger) Get(id string) (Sale, bool) {
	for _, s := range l.items {
		if s.ID == id {
			return s, true
		}
	}
	return Sale{}, false
}

func (l *Ledger) List() []Sale { return append([]Sale(nil), l.items...) }

func (l *Ledger) Len() int { return len(l.items) }

// MonthView продажи месяца (YYYY-MM) по возрастанию (дата, время); без времени в конце дня.
func (l *Ledger) MonthView(month string) []Sale {
	var view []Sale
	for _, s := range l.items {
		if MonthOf(s.DateISO) == month {
			view = append(view, s)
		}
	}
	slices.SortStableFunc(view, func(a, b Sale) int {
		if c := strings.Compare(a.DateISO, b.DateISO); c != 0 {
			return c
		}
		return strings.Compare(timeKey(a.Time), timeKey(b.Time))
	})
	return view
}

func timeKey(t string) string {
	if t == "" {
		return noTime
	}
	return t
}

// Lines цифры по каждой продаже из текущего каталога.
// Прибыль считается только по наценке продукта: ручная цена без наценки даёт нулевую прибыль.
func (l *Ledger) Lines(view []Sale) []Line {
	out := make([]Line, 0, len(view))
	for _, s := range view {
		line := Line{Sale: s}
		if p, ok := l.catalog.Get(s.ProductID); ok {
			line.Known = true
			line.ProductName = p.Name
			line.UnitCost = l.catalog.CostOf(p.Recipe)
			line.UnitProfit = p.Margin()
		}
		line.UnitPrice = line.UnitCost + line.UnitProfit
		line.Subtotal = line.UnitPrice * s.Quantity
		out = append(out, line)
	}
	return out
}

func (l *Ledger) Aggregate(view []Sale) Summary {
	return Summarize(l.Lines(view))
}

func Summarize(lines []Line) Summary {
	var sum Summary
	for _, line := range lines {
		sum.Cost += line.UnitCost * line.Quantity
		sum.Revenue += line.UnitPrice * line.Quantity
		sum.Profit += line.UnitProfit * line.Quantity
	}
	if sum.Revenue > 0 {
		sum.MarginPct = sum.Profit / sum.Revenue * 100
	}
	return sum
}

// MonthOf YYYY-MM из YYYY-MM-DD.
func MonthOf(dateISO string) string {
	if len(dateISO) < 7 {
		return dateISO
	}
	return dateISO[:7]
}

// NormalizeTime "9:5" => "09:05"; берутся только часы и минуты.
func NormalizeTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, ":")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	for i, p := range parts {
		if len(p) < 2 {
			parts[i] = strings.Repeat("0", 2-len(p)) + p
		}
	}
	return strings.Join(parts, ":")
}
