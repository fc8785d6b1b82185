package transaction

import (
	"sort"
	"strings"
)

// Sort keys and orders accepted by Arrange.
const (
	SortDate   = "date"
	SortAmount = "amount"
	OrderAsc   = "asc"
	OrderDesc  = "desc"

	// CategoryAll disables the category filter
	CategoryAll = "all"
)

// View describes how a transaction list is filtered and ordered for display.
type View struct {
	Category string
	SortBy   string
	Order    string
}

// Normalize fills defaults (all categories, date, desc) and rejects unknown
// sort keys or orders.
func (v View) Normalize() (View, error) {
	v.Category = strings.TrimSpace(v.Category)
	if v.Category == "" {
		v.Category = CategoryAll
	}

	switch strings.ToLower(v.SortBy) {
	case "", SortDate:
		v.SortBy = SortDate
	case SortAmount:
		v.SortBy = SortAmount
	default:
		return v, ErrInvalidView
	}

	switch strings.ToLower(v.Order) {
	case "", OrderDesc:
		v.Order = OrderDesc
	case OrderAsc:
		v.Order = OrderAsc
	default:
		return v, ErrInvalidView
	}

	return v, nil
}

// Arrange returns a new slice holding the transactions that match the view's
// category, sorted by the view's key. The input slice is not modified.
// Call Normalize first; an unnormalized view sorts by date descending.
func Arrange(list []*Transaction, v View) []*Transaction {
	out := make([]*Transaction, 0, len(list))
	for _, t := range list {
		if v.Category == "" || v.Category == CategoryAll || t.Category == v.Category {
			out = append(out, t)
		}
	}

	asc := v.Order == OrderAsc
	byAmount := v.SortBy == SortAmount

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if byAmount {
			if asc {
				return a.Amount < b.Amount
			}
			return a.Amount > b.Amount
		}
		if asc {
			return a.Date.Before(b.Date)
		}
		return a.Date.After(b.Date)
	})

	return out
}
