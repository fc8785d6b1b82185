// Package analytics holds the pure aggregation functions behind the
// dashboard, the budget page and the coach.
package analytics

import (
	"math"
	"sort"

	"budgetcoach/internal/domain/budget"
	"budgetcoach/internal/domain/transaction"
)

// Total returns the sum of all amounts.
func Total(txs []*transaction.Transaction) float64 {
	var sum float64
	for _, t := range txs {
		sum += t.Amount
	}
	return sum
}

// ByCategory returns the summed amount per category.
func ByCategory(txs []*transaction.Transaction) map[string]float64 {
	out := make(map[string]float64)
	for _, t := range txs {
		out[t.Category] += t.Amount
	}
	return out
}

// Average returns Total / count. It is NaN for an empty list.
func Average(txs []*transaction.Transaction) float64 {
	if len(txs) == 0 {
		return math.NaN()
	}
	return Total(txs) / float64(len(txs))
}

// PercentUsed returns spent / allocated * 100. It is NaN when allocated is zero.
func PercentUsed(spent, allocated float64) float64 {
	if allocated == 0 {
		return math.NaN()
	}
	return spent / allocated * 100
}

// OverBudget reports whether spent exceeds the allocation.
func OverBudget(b *budget.Budget) bool {
	return b.Spent > b.Amount
}

// DisplayPercent clamps p to [0, 100] for progress bars. NaN maps to 0.
func DisplayPercent(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(100, p))
}

// TopCategory returns the category with the highest summed amount.
// Ties go to the lexically smallest name. ok is false for an empty map.
func TopCategory(byCategory map[string]float64) (name string, ok bool) {
	names := make([]string, 0, len(byCategory))
	for k := range byCategory {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		if !ok || byCategory[k] > byCategory[name] {
			name, ok = k, true
		}
	}
	return name, ok
}

// Snapshot is the aggregate view of a transaction list.
type Snapshot struct {
	Count      int                `json:"count"`
	Total      float64            `json:"total"`
	Average    float64            `json:"average"`
	ByCategory map[string]float64 `json:"byCategory"`
}

// Summarize aggregates txs in one pass. Average is NaN when txs is empty.
func Summarize(txs []*transaction.Transaction) Snapshot {
	s := Snapshot{Count: len(txs), ByCategory: make(map[string]float64)}
	for _, t := range txs {
		s.Total += t.Amount
		s.ByCategory[t.Category] += t.Amount
	}
	s.Average = math.NaN()
	if s.Count > 0 {
		s.Average = s.Total / float64(s.Count)
	}
	return s
}
