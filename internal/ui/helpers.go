package ui

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"moneymate/internal/core"
)

// sanitizeInput trims whitespace and strips control characters except
// tab, newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// formatRupiah renders an amount for the screen, e.g. "Rp 1.500.000,00".
func formatRupiah(m core.Money) string {
	return "Rp " + m.FormatRupiah()
}

// signedAmount prefixes the amount with the transaction's sign.
func signedAmount(tx core.Transaction) string {
	if tx.Type.IsIncome() {
		return "+" + formatRupiah(tx.Amount)
	}
	return "-" + formatRupiah(tx.Amount)
}

// formDate parses a date field, defaulting empty input to today.
func formDate(value string, now time.Time) (core.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return core.Date{Time: now}, nil
	}
	return core.ParseDate(value)
}

// currentMonth returns the default month key for the reports page.
func currentMonth(now time.Time) string {
	return now.Format("2006-01")
}

// redirectWithMessage sends a see-other redirect carrying a flash
// message in the query string.
func redirectWithMessage(w http.ResponseWriter, r *http.Request, path, msg string) {
	if msg != "" {
		path += "?msg=" + url.QueryEscape(msg)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError is redirectWithMessage for failures.
func redirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	if msg != "" {
		path += "?err=" + url.QueryEscape(msg)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// filterFromQuery builds a transaction filter from list query params.
func filterFromQuery(q url.Values) core.Filter {
	var f core.Filter
	switch q.Get("type") {
	case "income":
		f.Type = core.TypeIncome
	case "expense":
		f.Type = core.TypeExpense
	}
	f.Search = sanitizeInput(q.Get("search"))
	f.Category = sanitizeInput(q.Get("category"))
	if from, err := core.ParseDate(q.Get("from")); err == nil {
		f.From = from
	}
	if to, err := core.ParseDate(q.Get("to")); err == nil {
		f.To = to
	}
	return f
}
