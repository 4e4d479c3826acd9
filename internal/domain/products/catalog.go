package products

import (
	"strconv"
	"strings"

	"github.com/Spok95/costbook/internal/domain"
	"github.com/Spok95/costbook/internal/domain/materials"
)

// MaterialLookup поиск материала по id (materials.Ledger).
type MaterialLookup interface {
	Get(id string) (materials.Material, bool)
}

// CostOf себестоимость единицы по рецепту: sum(qty * unitPrice).
// Висячая ссылка на материал даёт 0. Любой расчёт цены/прибыли идёт только через эту функцию.
func CostOf(lookup MaterialLookup, recipe []RecipeLine) float64 {
	var cost float64
	for _, line := range recipe {
		m, ok := lookup.Get(line.MaterialID)
		if !ok {
			continue
		}
		cost += line.QuantityPerUnit * m.UnitPrice
	}
	return cost
}

// Catalog продукты; новые добавляются в начало.
type Catalog struct {
	items     []Product
	index     map[string]int
	materials MaterialLookup
}

func NewCatalog(items []Product, lookup MaterialLookup) *Catalog {
	c := &Catalog{materials: lookup}
	cp := make([]Product, 0, len(items))
	for _, p := range items {
		cp = append(cp, p.clone())
	}
	c.replace(cp)
	return c
}

func (c *Catalog) replace(items []Product) {
	idx := make(map[string]int, len(items))
	for i, p := range items {
		idx[p.ID] = i
	}
	c.items = items
	c.index = idx
}

func (c *Catalog) CostOf(recipe []RecipeLine) float64 {
	return CostOf(c.materials, recipe)
}

// EffectivePrice цена продажи на текущий момент.
func (c *Catalog) EffectivePrice(p Product) float64 {
	cost := c.CostOf(p.Recipe)
	switch {
	case p.ProfitMargin != nil:
		return cost + *p.ProfitMargin
	case p.SalePrice != nil:
		return *p.SalePrice
	default:
		return cost
	}
}

func (c *Catalog) Get(id string) (Product, bool) {
	i, ok := c.index[id]
	if !ok {
		return Product{}, false
	}
	return c.items[i].clone(), true
}

func (c *Catalog) List() []Product {
	out := make([]Product, 0, len(c.items))
	for _, p := range c.items {
		out = append(out, p.clone())
	}
	return out
}

func (c *Catalog) ListPriced() []Priced {
	out := make([]Priced, 0, len(c.items))
	for _, p := range c.items {
		out = append(out, c.price(p.clone()))
	}
	return out
}

func (c *Catalog) price(p Product) Priced {
	return Priced{Product: p, UnitCost: c.CostOf(p.Recipe), EffectivePrice: c.EffectivePrice(p)}
}

// DraftOf черновик для редактирования существующего продукта.
func DraftOf(p Product) Draft {
	d := Draft{Name: p.Name, Recipe: make([]DraftLine, 0, len(p.Recipe))}
	if p.SalePrice != nil {
		d.SalePrice = formatNumber(*p.SalePrice)
	}
	if p.ProfitMargin != nil {
		d.ProfitMargin = formatNumber(*p.ProfitMargin)
	}
	for _, l := range p.Recipe {
		d.Recipe = append(d.Recipe, DraftLine{MaterialID: l.MaterialID, Quantity: formatNumber(l.QuantityPerUnit)})
	}
	return d
}

func formatNumber(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Commit фиксирует черновик. existingID == "": новый продукт в начало каталога,
// иначе черновик вливается в существующую запись с тем же id.
func (c *Catalog) Commit(d Draft, existingID string) (Product, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Product{}, domain.Invalid("name", "required")
	}
	existing := -1
	if existingID != "" {
		i, ok := c.index[existingID]
		if !ok {
			return Product{}, domain.ErrNotFound
		}
		existing = i
	}

	recipe := make([]RecipeLine, 0, len(d.Recipe))
	for _, l := range d.Recipe {
		if strings.TrimSpace(l.MaterialID) == "" || strings.TrimSpace(l.Quantity) == "" {
			continue
		}
		recipe = append(recipe, RecipeLine{
			MaterialID:      strings.TrimSpace(l.MaterialID),
			QuantityPerUnit: domain.NumberOrZero(l.Quantity),
		})
	}

	var margin, price *float64
	if v, ok := domain.ParseNumber(d.ProfitMargin); ok {
		margin = &v
	}
	switch {
	case strings.TrimSpace(d.SalePrice) == "" && margin != nil:
		v := domain.Round2(c.CostOf(recipe) + *margin)
		price = &v
	default:
		if v, ok := domain.ParseNumber(d.SalePrice); ok {
			price = &v
		}
	}

	p := Product{Name: name, Recipe: recipe, ProfitMargin: margin, SalePrice: price}
	if existing >= 0 {
		p.ID = c.items[existing].ID
		next := append([]Product(nil), c.items...)
		next[existing] = p
		c.replace(next)
		return p.clone(), nil
	}

	p.ID = domain.NewID()
	next := make([]Product, 0, len(c.items)+1)
	next = append(next, p)
	next = append(next, c.items...)
	c.replace(next)
	return p.clone(), nil
}

// Remove удаляет продукт. Продажи со ссылкой на него не трогаются.
func (c *Catalog) Remove(id string) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	next := make([]Product, 0, len(c.items)-1)
	next = append(next, c.items[:i]...)
	next = append(next, c.items[i+1:]...)
	c.replace(next)
	return true
}

func (c *Catalog) Len() int { return len(c.items) }
