package shortages

import "github.com/Spok95/costbook/internal/domain/materials"

// Item материал в минусе: сколько нужно докупить.
type Item struct {
	MaterialID   string  `json:"materialId"`
	Name         string  `json:"name"`
	AmountNeeded float64 `json:"amountNeeded"`
}

type Source interface {
	List() []materials.Material
}

// Report материалы с отрицательным остатком в порядке склада. Ничего не меняет.
func Report(src Source) []Item {
	return FromMaterials(src.List())
}

func FromMaterials(ms []materials.Material) []Item {
	out := []Item{}
	for _, m := range ms {
		if m.Quantity < 0 {
			out = append(out, Item{MaterialID: m.ID, Name: m.Name, AmountNeeded: -m.Quantity})
		}
	}
	return out
}

// Newly позиции из after, которых не было в before (материал только что ушёл в минус).
func Newly(before, after []Item) []Item {
	seen := make(map[string]struct{}, len(before))
	for _, it := range before {
		seen[it.MaterialID] = struct{}{}
	}
	var out []Item
	for _, it := range after {
		if _, ok := seen[it.MaterialID]; !ok {
			out = append(out, it)
		}
	}
	return out
}
