package shortages

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Spok95/costbook/internal/domain/materials"
)

func TestReport(t *testing.T) {
	l := materials.NewLedger([]materials.Material{
		{ID: "m1", Name: "flour", Quantity: -2.5},
		{ID: "m2", Name: "sugar", Quantity: 0},
		{ID: "m3", Name: "salt", Quantity: 3},
		{ID: "m4", Name: "yeast", Quantity: -1},
	})

	got := Report(l)
	assert.Equal(t, []Item{
		{MaterialID: "m1", Name: "flour", AmountNeeded: 2.5},
		{MaterialID: "m4", Name: "yeast", AmountNeeded: 1},
	}, got)

	// отчёт ничего не меняет
	m1, _ := l.Get("m1")
	assert.Equal(t, -2.5, m1.Quantity)
}

func TestReport_Empty(t *testing.T) {
	got := Report(materials.NewLedger(nil))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNewly(t *testing.T) {
	before := []Item{{MaterialID: "m1", AmountNeeded: 1}}
	after := []Item{{MaterialID: "m1", AmountNeeded: 4}, {MaterialID: "m2", AmountNeeded: 2}}

	assert.Equal(t, []Item{{MaterialID: "m2", AmountNeeded: 2}}, Newly(before, after))
	assert.Nil(t, Newly(after, before))
}
