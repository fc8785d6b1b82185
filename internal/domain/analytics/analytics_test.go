package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetcoach/internal/domain/budget"
	"budgetcoach/internal/domain/transaction"
)

func txs(amounts ...float64) []*transaction.Transaction {
	out := make([]*transaction.Transaction, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, &transaction.Transaction{Amount: a})
	}
	return out
}

func sample() []*transaction.Transaction {
	return []*transaction.Transaction{
		{Category: "Food", Amount: -150.50},
		{Category: "Income", Amount: 5000},
		{Category: "Entertainment", Amount: -15.99},
		{Category: "Food", Amount: -45},
	}
}

func TestTotalAndAverage(t *testing.T) {
	list := txs(-150.50, 5000.00, -15.99)

	assert.InDelta(t, 4833.51, Total(list), 1e-9)
	assert.InDelta(t, 1611.17, Average(list), 1e-9)
}

func TestAverage_Empty(t *testing.T) {
	assert.True(t, math.IsNaN(Average(nil)))
	assert.Equal(t, 0.0, Total(nil))
}

func TestByCategory_SumsToTotal(t *testing.T) {
	list := sample()
	by := ByCategory(list)

	require.Len(t, by, 3)
	assert.InDelta(t, -195.50, by["Food"], 1e-9)

	var sum float64
	for _, v := range by {
		sum += v
	}
	assert.InDelta(t, Total(list), sum, 1e-9)
}

func TestPercentUsed(t *testing.T) {
	assert.InDelta(t, 90.0, PercentUsed(450, 500), 1e-9)
	assert.InDelta(t, 120.0, PercentUsed(600, 500), 1e-9)
	assert.True(t, math.IsNaN(PercentUsed(10, 0)))
}

func TestDisplayPercent(t *testing.T) {
	assert.Equal(t, 100.0, DisplayPercent(120))
	assert.Equal(t, 0.0, DisplayPercent(-5))
	assert.Equal(t, 0.0, DisplayPercent(math.NaN()))
	assert.Equal(t, 42.5, DisplayPercent(42.5))
}

func TestBudgetProgress(t *testing.T) {
	tests := []struct {
		name        string
		b           budget.Budget
		wantPercent float64
		wantDisplay float64
		wantOver    bool
	}{
		{"within", budget.Budget{Amount: 500, Spent: 450}, 90, 90, false},
		{"over", budget.Budget{Amount: 500, Spent: 600}, 120, 100, true},
		{"exact", budget.Budget{Amount: 100, Spent: 100}, 100, 100, false},
		{"zero allocation unspent", budget.Budget{Amount: 0, Spent: 0}, 0, 0, false},
		{"zero allocation spent", budget.Budget{Amount: 0, Spent: 5}, 0, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BudgetProgress(&tt.b)
			assert.InDelta(t, tt.wantPercent, p.Percent, 1e-9)
			assert.InDelta(t, tt.wantDisplay, p.DisplayPercent, 1e-9)
			assert.Equal(t, tt.wantOver, p.OverBudget)
			assert.InDelta(t, tt.b.Amount-tt.b.Spent, p.Remaining, 1e-9)
		})
	}
}

func TestTotals(t *testing.T) {
	got := Totals([]*budget.Budget{
		{Amount: 500, Spent: 150.50},
		{Amount: 200, Spent: 45},
		{Amount: 250, Spent: 0},
	})

	assert.InDelta(t, 950, got.Allocated, 1e-9)
	assert.InDelta(t, 195.50, got.Spent, 1e-9)
	assert.InDelta(t, 754.50, got.Remaining, 1e-9)
}

func TestTopCategory(t *testing.T) {
	name, ok := TopCategory(ByCategory(sample()))
	require.True(t, ok)
	assert.Equal(t, "Income", name)

	name, ok = TopCategory(map[string]float64{"Shopping": -10, "Food": -10, "Zoo": -20})
	require.True(t, ok)
	assert.Equal(t, "Food", name)

	_, ok = TopCategory(map[string]float64{})
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	list := sample()
	s := Summarize(list)

	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, Total(list), s.Total, 1e-9)
	assert.InDelta(t, s.Total, s.Average*float64(s.Count), 1e-9)
	assert.Equal(t, ByCategory(list), s.ByCategory)

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Count)
	assert.True(t, math.IsNaN(empty.Average))
}
