package core

import (
	"sort"
	"strings"
)

// Filter holds the optional transaction list criteria. A zero field
// matches everything; set fields combine with AND semantics.
type Filter struct {
	Type     TransactionType // exact label match; empty matches all
	Search   string          // case-insensitive substring over description + category key
	Category string          // category key or resolved display name; "" or "all" matches all
	From     Date            // inclusive lower date bound; zero is unbounded
	To       Date            // inclusive upper date bound; zero is unbounded
}

// IsZero reports whether no criterion is set.
func (f Filter) IsZero() bool {
	return f.Type == "" && f.Search == "" &&
		(f.Category == "" || f.Category == "all") &&
		f.From.IsZero() && f.To.IsZero()
}

// Apply returns the subset of txs matching every supplied criterion.
// The category set resolves display names so users can filter by either
// the raw key or the label shown in the UI.
func (f Filter) Apply(txs []Transaction, cats CategorySet) []Transaction {
	out := make([]Transaction, 0, len(txs))
	search := strings.ToLower(strings.TrimSpace(f.Search))
	for _, tx := range txs {
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if search != "" {
			haystack := strings.ToLower(tx.Description + " " + tx.Category)
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		if f.Category != "" && f.Category != "all" {
			if tx.Category != f.Category && cats.DisplayName(tx.Category) != f.Category {
				continue
			}
		}
		if !f.From.IsZero() && tx.Date.Before(f.From.Time) {
			continue
		}
		if !f.To.IsZero() && tx.Date.After(f.To.Time) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// Stats summarizes a transaction set. The caller decides whether to
// feed it the filtered or the unfiltered list.
type Stats struct {
	Count   int
	Income  Money
	Expense Money
	Net     Money
}

// ComputeStats aggregates count and income/expense totals over txs.
func ComputeStats(txs []Transaction) Stats {
	var s Stats
	s.Count = len(txs)
	for _, tx := range txs {
		if tx.Type.IsIncome() {
			s.Income = s.Income.Add(tx.Amount)
		} else {
			s.Expense = s.Expense.Add(tx.Amount)
		}
	}
	s.Net = s.Income.Sub(s.Expense)
	return s
}

// CategoryAmount is an amount summed per category, with the display
// name resolved for rendering.
type CategoryAmount struct {
	Key         string
	DisplayName string
	Amount      Money
}

// BreakdownLimit is how many categories the dashboard breakdown shows.
const BreakdownLimit = 5

// Breakdown groups txs by category key, sums amounts, and returns at
// most limit entries sorted descending by sum. Ties keep first-seen
// order.
func Breakdown(txs []Transaction, cats CategorySet, limit int) []CategoryAmount {
	sums := make(map[string]int64)
	order := make(map[string]int)
	keys := make([]string, 0)
	for _, tx := range txs {
		key := tx.Category
		if key == "" {
			key = "Unknown"
		}
		if _, seen := sums[key]; !seen {
			order[key] = len(keys)
			keys = append(keys, key)
		}
		sums[key] += tx.Amount.Cents
	}

	sort.SliceStable(keys, func(i, j int) bool {
		if sums[keys[i]] != sums[keys[j]] {
			return sums[keys[i]] > sums[keys[j]]
		}
		return order[keys[i]] < order[keys[j]]
	})

	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	out := make([]CategoryAmount, 0, len(keys))
	for _, key := range keys {
		out = append(out, CategoryAmount{
			Key:         key,
			DisplayName: cats.DisplayName(key),
			Amount:      Money{Cents: sums[key]},
		})
	}
	return out
}
