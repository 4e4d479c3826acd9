package book

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/Spok95/costbook/internal/domain"
	"github.com/Spok95/costbook/internal/domain/materials"
	"github.com/Spok95/costbook/internal/domain/products"
	"github.com/Spok95/costbook/internal/domain/sales"
)

// Ключи журналов в хранилище.
const (
	KeyMaterials = "materials"
	KeyProducts  = "products"
	KeySales     = "sales"
)

// record одна запись журнала как пришла из JSON. Старые выгрузки используют испанские имена полей,
// поэтому у каждого поля есть список синонимов.
type record map[string]any

func (r record) pick(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r record) str(keys ...string) string {
	v, ok := r.pick(keys...)
	if !ok {
		return ""
	}
	return cast.ToString(v)
}

// id всегда строкой, даже если в хранилище лежит число.
func (r record) id() string {
	if s := strings.TrimSpace(r.str("id")); s != "" {
		return s
	}
	return domain.NewID()
}

func (r record) num(keys ...string) float64 {
	v, ok := r.pick(keys...)
	if !ok {
		return 0
	}
	f := cast.ToFloat64(v)
	if !domain.Usable(f) {
		return 0
	}
	return f
}

func (r record) optNum(keys ...string) *float64 {
	v, ok := r.pick(keys...)
	if !ok {
		return nil
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || !domain.Usable(f) {
		return nil
	}
	return &f
}

// records разбирает массив записей; элементы, не являющиеся объектами, пропускаются.
func records(data []byte) ([]record, error) {
	var arr []any
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, err
	}
	out := make([]record, 0, len(arr))
	for _, e := range arr {
		if m, ok := e.(map[string]any); ok {
			out = append(out, record(m))
		}
	}
	return out, nil
}

func recordsOf(v any) []record {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]record, 0, len(arr))
	for _, e := range arr {
		if m, ok := e.(map[string]any); ok {
			out = append(out, record(m))
		}
	}
	return out
}

func decodeMaterials(data []byte) ([]materials.Material, error) {
	rs, err := records(data)
	if err != nil {
		return nil, fmt.Errorf("decode materials: %w", err)
	}
	out := make([]materials.Material, 0, len(rs))
	for _, r := range rs {
		out = append(out, materials.Material{
			ID:        r.id(),
			Name:      r.str("name", "nombre"),
			Quantity:  r.num("quantity", "cantidad"),
			UnitPrice: r.num("unitPrice", "precio"),
		})
	}
	return out, nil
}

func decodeProducts(data []byte) ([]products.Product, error) {
	rs, err := records(data)
	if err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := make([]products.Product, 0, len(rs))
	for _, r := range rs {
		p := products.Product{
			ID:           r.id(),
			Name:         r.str("name", "nombre"),
			ProfitMargin: r.optNum("profitMargin", "ganancia"),
			SalePrice:    r.optNum("salePrice", "precioVenta"),
			Recipe:       []products.RecipeLine{},
		}
		lines, _ := r.pick("recipe", "receta")
		for _, l := range recordsOf(lines) {
			p.Recipe = append(p.Recipe, products.RecipeLine{
				MaterialID:      l.str("materialId", "insumoId"),
				QuantityPerUnit: l.num("quantityPerUnit", "cantidad"),
			})
		}
		out = append(out, p)
	}
	return out, nil
}

// decodeSales today подставляется, если у продажи нет даты.
func decodeSales(data []byte, today string) ([]sales.Sale, error) {
	rs, err := records(data)
	if err != nil {
		return nil, fmt.Errorf("decode sales: %w", err)
	}
	out := make([]sales.Sale, 0, len(rs))
	for _, r := range rs {
		s := sales.Sale{
			ID:           r.id(),
			ProductID:    r.str("productId"),
			Quantity:     r.num("quantity", "qty"),
			Place:        r.str("place"),
			CustomerName: r.str("customerName", "name"),
			DateISO:      r.str("dateISO"),
			Time:         r.str("time", "hora"),
			ColorTag:     r.str("colorTag", "color"),
			Notes:        r.str("notes", "obs"),
		}
		if s.DateISO == "" {
			s.DateISO = today
		}
		out = append(out, s)
	}
	return out, nil
}

func encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}
