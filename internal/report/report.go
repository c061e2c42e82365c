// Package report turns a backend monthly report into shareable
// artifacts: a view model with per-category shares plus CSV, plain
// text and XLSX renderings written to the export directory.
package report

import (
	"sort"
	"strconv"

	"moneymate/internal/core"
)

// Percentage renders part as a share of total with two decimals.
// A zero or negative total yields "0.00" rather than a division error.
func Percentage(part, total core.Money) string {
	if total.Cents <= 0 {
		return "0.00"
	}
	return strconv.FormatFloat(float64(part.Cents)/float64(total.Cents)*100, 'f', 2, 64)
}

// Share is one category's slice of a monthly total.
type Share struct {
	Key         string
	DisplayName string
	Amount      core.Money
	Percentage  string
}

// Shares builds the per-category shares of total, largest first.
// Ties sort by category key so the output is stable.
func Shares(byCategory map[string]core.Money, total core.Money, cats core.CategorySet) []Share {
	shares := make([]Share, 0, len(byCategory))
	for key, amount := range byCategory {
		shares = append(shares, Share{
			Key:         key,
			DisplayName: cats.DisplayName(key),
			Amount:      amount,
			Percentage:  Percentage(amount, total),
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount.Cents != shares[j].Amount.Cents {
			return shares[i].Amount.Cents > shares[j].Amount.Cents
		}
		return shares[i].Key < shares[j].Key
	})
	return shares
}

// View is a monthly report prepared for rendering: the raw report plus
// resolved display names and computed shares.
type View struct {
	Month         string
	Report        core.MonthlyReport
	IncomeShares  []Share
	ExpenseShares []Share
}

// NewView resolves category names and share percentages for r.
func NewView(month string, r core.MonthlyReport, cats core.CategorySet) View {
	return View{
		Month:         month,
		Report:        r,
		IncomeShares:  Shares(r.IncomeByCategory, r.TotalIncome, cats),
		ExpenseShares: Shares(r.ExpenseByCategory, r.TotalExpense, cats),
	}
}

// Summary returns the backend summary text with a fallback when the
// backend sent none.
func (v View) Summary() string {
	if v.Report.Summary == "" {
		return "Tidak ada ringkasan tersedia"
	}
	return v.Report.Summary
}
