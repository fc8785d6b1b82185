package analytics

import (
	"math"

	"budgetcoach/internal/domain/budget"
)

// Progress is the display state of a single budget.
type Progress struct {
	Percent        float64 `json:"percent"`
	DisplayPercent float64 `json:"displayPercent"`
	OverBudget     bool    `json:"overBudget"`
	Remaining      float64 `json:"remaining"`
}

// BudgetProgress computes the progress of b. A zero allocation reports
// 0 percent, and a full bar only when something was spent.
func BudgetProgress(b *budget.Budget) Progress {
	p := Progress{
		Percent:    PercentUsed(b.Spent, b.Amount),
		OverBudget: OverBudget(b),
		Remaining:  b.Amount - b.Spent,
	}

	if math.IsNaN(p.Percent) {
		p.Percent = 0
		if p.OverBudget {
			p.DisplayPercent = 100
		}
		return p
	}

	p.DisplayPercent = DisplayPercent(p.Percent)
	return p
}

// BudgetTotals is the sum over a set of budgets.
type BudgetTotals struct {
	Allocated float64 `json:"allocated"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
}

// Totals sums allocation and spending over budgets.
func Totals(budgets []*budget.Budget) BudgetTotals {
	var t BudgetTotals
	for _, b := range budgets {
		t.Allocated += b.Amount
		t.Spent += b.Spent
	}
	t.Remaining = t.Allocated - t.Spent
	return t
}
