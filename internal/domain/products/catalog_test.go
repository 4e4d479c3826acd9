package products

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/costbook/internal/domain"
	"github.com/Spok95/costbook/internal/domain/materials"
)

func ptr(v float64) *float64 { return &v }

func testMaterials() *materials.Ledger {
	return materials.NewLedger([]materials.Material{
		{ID: "flour", Name: "flour", Quantity: 10, UnitPrice: 0.5},
		{ID: "sugar", Name: "sugar", Quantity: 5, UnitPrice: 2},
	})
}

func TestCostOf(t *testing.T) {
	ml := testMaterials()

	tests := []struct {
		name   string
		recipe []RecipeLine
		want   float64
	}{
		{name: "empty", recipe: nil, want: 0},
		{name: "single", recipe: []RecipeLine{{MaterialID: "flour", QuantityPerUnit: 2}}, want: 1},
		{name: "several", recipe: []RecipeLine{{"flour", 2}, {"sugar", 0.25}}, want: 1.5},
		{name: "dangling line contributes zero", recipe: []RecipeLine{{"flour", 2}, {"ghost", 100}}, want: 1},
		{name: "duplicate lines add up", recipe: []RecipeLine{{"sugar", 1}, {"sugar", 1}}, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CostOf(ml, tt.recipe), 1e-9)
		})
	}
}

func TestCostOf_Linear(t *testing.T) {
	ml := testMaterials()
	recipe := []RecipeLine{{"flour", 2}, {"sugar", 0.3}, {"ghost", 4}}
	base := CostOf(ml, recipe)

	for _, k := range []float64{0, 0.5, 1, 3, 12.75} {
		scaled := make([]RecipeLine, len(recipe))
		for i, l := range recipe {
			scaled[i] = RecipeLine{MaterialID: l.MaterialID, QuantityPerUnit: l.QuantityPerUnit * k}
		}
		assert.InDelta(t, k*base, CostOf(ml, scaled), 1e-9, "k=%v", k)
	}
}

func TestCostOf_FollowsCurrentPrices(t *testing.T) {
	ml := testMaterials()
	c := NewCatalog(nil, ml)
	p, err := c.Commit(Draft{Name: "bread", ProfitMargin: "1", Recipe: []DraftLine{{"flour", "2"}}}, "")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.CostOf(p.Recipe), 1e-9)

	_, err = ml.Update("flour", materials.FieldUnitPrice, "0.75")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, c.CostOf(p.Recipe), 1e-9)
	assert.InDelta(t, 2.5, c.EffectivePrice(p), 1e-9)

	ml.Remove("flour")
	assert.Equal(t, 0.0, c.CostOf(p.Recipe))
}

func TestCatalog_CommitPricing(t *testing.T) {
	tests := []struct {
		name       string
		draft      Draft
		wantPrice  *float64
		wantMargin *float64
	}{
		{
			name:       "margin derives price",
			draft:      Draft{Name: "bread", ProfitMargin: "1", Recipe: []DraftLine{{"flour", "2"}}},
			wantPrice:  ptr(2),
			wantMargin: ptr(1),
		},
		{
			name:       "derived price rounded to cents",
			draft:      Draft{Name: "cake", ProfitMargin: "0.333", Recipe: []DraftLine{{"sugar", "1.0011"}}},
			wantPrice:  ptr(2.34),
			wantMargin: ptr(0.333),
		},
		{
			name:       "manual price wins when given",
			draft:      Draft{Name: "bread", SalePrice: "5", ProfitMargin: "1", Recipe: []DraftLine{{"flour", "2"}}},
			wantPrice:  ptr(5),
			wantMargin: ptr(1),
		},
		{
			name:      "manual price without margin",
			draft:     Draft{Name: "bread", SalePrice: "3.5"},
			wantPrice: ptr(3.5),
		},
		{
			name:  "neither price nor margin",
			draft: Draft{Name: "bread", Recipe: []DraftLine{{"flour", "2"}}},
		},
		{
			name:  "garbage price and margin",
			draft: Draft{Name: "bread", SalePrice: "abc", ProfitMargin: "xyz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCatalog(nil, testMaterials())
			p, err := c.Commit(tt.draft, "")
			require.NoError(t, err)
			if tt.wantPrice == nil {
				assert.Nil(t, p.SalePrice)
			} else {
				require.NotNil(t, p.SalePrice)
				assert.InDelta(t, *tt.wantPrice, *p.SalePrice, 1e-9)
			}
			if tt.wantMargin == nil {
				assert.Nil(t, p.ProfitMargin)
			} else {
				require.NotNil(t, p.ProfitMargin)
				assert.InDelta(t, *tt.wantMargin, *p.ProfitMargin, 1e-9)
			}
		})
	}
}

func TestCatalog_CommitValidation(t *testing.T) {
	c := NewCatalog(nil, testMaterials())

	_, err := c.Commit(Draft{Name: "   "}, "")
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, c.Len())

	_, err = c.Commit(Draft{Name: "bread"}, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, c.Len())
}

func TestCatalog_CommitFiltersInvalidLines(t *testing.T) {
	c := NewCatalog(nil, testMaterials())
	p, err := c.Commit(Draft{Name: "bread", Recipe: []DraftLine{
		{MaterialID: "flour", Quantity: "2"},
		{MaterialID: "", Quantity: "3"},
		{MaterialID: "sugar", Quantity: ""},
		{MaterialID: "sugar", Quantity: "oops"},
	}}, "")
	require.NoError(t, err)

	assert.Equal(t, []RecipeLine{{"flour", 2}, {"sugar", 0}}, p.Recipe)
}

func TestCatalog_CommitNewPrependsAndEditMerges(t *testing.T) {
	c := NewCatalog(nil, testMaterials())
	first, err := c.Commit(Draft{Name: "bread"}, "")
	require.NoError(t, err)
	second, err := c.Commit(Draft{Name: "cake"}, "")
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	d := DraftOf(first)
	d.Name = "rye bread"
	d.ProfitMargin = "0.5"
	d.Recipe = append(d.Recipe, DraftLine{MaterialID: "flour", Quantity: "1"})
	edited, err := c.Commit(d, first.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, edited.ID)
	assert.Equal(t, 2, c.Len())
	got, ok := c.Get(first.ID)
	require.True(t, ok)
	assert.Equal(t, "rye bread", got.Name)
	require.NotNil(t, got.SalePrice)
	assert.InDelta(t, 1.0, *got.SalePrice, 1e-9)
	// порядок не меняется
	assert.Equal(t, first.ID, c.List()[1].ID)
}

func TestCatalog_GetReturnsCopy(t *testing.T) {
	c := NewCatalog([]Product{{ID: "p1", Name: "bread", Recipe: []RecipeLine{{"flour", 2}}, ProfitMargin: ptr(1)}}, testMaterials())

	p, _ := c.Get("p1")
	p.Recipe[0].QuantityPerUnit = 100
	*p.ProfitMargin = 100

	again, _ := c.Get("p1")
	assert.Equal(t, 2.0, again.Recipe[0].QuantityPerUnit)
	assert.Equal(t, 1.0, *again.ProfitMargin)
}

func TestCatalog_Remove(t *testing.T) {
	c := NewCatalog([]Product{{ID: "p1"}, {ID: "p2"}}, testMaterials())
	assert.True(t, c.Remove("p1"))
	assert.False(t, c.Remove("p1"))
	_, ok := c.Get("p1")
	assert.False(t, ok)
	_, ok = c.Get("p2")
	assert.True(t, ok)
}

func TestCatalog_ListPriced(t *testing.T) {
	c := NewCatalog([]Product{
		{ID: "margin", Recipe: []RecipeLine{{"flour", 2}}, ProfitMargin: ptr(1), SalePrice: ptr(9)},
		{ID: "manual", Recipe: []RecipeLine{{"flour", 2}}, SalePrice: ptr(4)},
		{ID: "bare", Recipe: []RecipeLine{{"sugar", 1}}},
	}, testMaterials())

	priced := c.ListPriced()
	require.Len(t, priced, 3)
	assert.InDelta(t, 1.0, priced[0].UnitCost, 1e-9)
	assert.InDelta(t, 2.0, priced[0].EffectivePrice, 1e-9)
	assert.InDelta(t, 4.0, priced[1].EffectivePrice, 1e-9)
	assert.InDelta(t, 2.0, priced[2].EffectivePrice, 1e-9)
}
