package products

// RecipeLine сколько материала уходит на единицу продукта.
type RecipeLine struct {
	MaterialID      string  `json:"materialId"`
	QuantityPerUnit float64 `json:"quantityPerUnit"`
}

// Product продаваемая позиция: рецепт + фиксированная наценка или ручная цена.
// Если задана ProfitMargin, цена всегда cost(recipe)+margin, пересчитывается на лету.
// SalePrice без наценки: замороженная ручная цена.
type Product struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Recipe       []RecipeLine `json:"recipe"`
	ProfitMargin *float64     `json:"profitMargin,omitempty"`
	SalePrice    *float64     `json:"salePrice,omitempty"`
}

func (p Product) clone() Product {
	out := p
	out.Recipe = append([]RecipeLine(nil), p.Recipe...)
	if p.ProfitMargin != nil {
		v := *p.ProfitMargin
		out.ProfitMargin = &v
	}
	if p.SalePrice != nil {
		v := *p.SalePrice
		out.SalePrice = &v
	}
	return out
}

// Margin наценка на единицу; без наценки прибыль считается нулевой.
func (p Product) Margin() float64 {
	if p.ProfitMargin == nil {
		return 0
	}
	return *p.ProfitMargin
}

// Priced продукт вместе с живой себестоимостью и ценой.
type Priced struct {
	Product
	UnitCost       float64 `json:"unitCost"`
	EffectivePrice float64 `json:"effectivePrice"`
}

// DraftLine строка рецепта в том виде, как её ввели.
type DraftLine struct {
	MaterialID string `json:"materialId"`
	Quantity   string `json:"quantity"`
}

// Draft редактируемая копия продукта вне каталога. Числа хранятся сырыми строками ввода.
type Draft struct {
	Name         string      `json:"name"`
	SalePrice    string      `json:"salePrice"`
	ProfitMargin string      `json:"profitMargin"`
	Recipe       []DraftLine `json:"recipe"`
}
