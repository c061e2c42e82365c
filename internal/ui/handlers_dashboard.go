package ui

import (
	"net/http"
	"sort"

	"golang.org/x/sync/errgroup"

	"moneymate/internal/core"
	"moneymate/internal/log"
)

const recentTransactionLimit = 5

type dashboardData struct {
	Balance          core.Balance
	BalanceText      string
	IncomeText       string
	ExpenseText      string
	TransactionCount int
	Recent           []core.Transaction
	Breakdown        []core.CategoryAmount
	LoadError        string
}

// handleDashboard fetches balance, transactions and categories
// concurrently. The fetches are independent: one failing must not
// cancel the others, so they share the request context but no group
// cancellation. A failing fetch degrades its card instead of blanking
// the whole screen.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		balance core.Balance
		txs     []core.Transaction
		cats    core.CategorySet
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		balance, err = s.backend.GetBalance(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.backend.ListTransactions(ctx)
		return err
	})
	g.Go(func() error {
		cats = s.getCategories(ctx)
		return nil
	})

	data := dashboardData{}
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "dashboard fetch failed",
			log.FieldPage, string(PageDashboard),
			log.FieldError, err.Error())
		data.LoadError = "Sebagian data gagal dimuat"
	}

	data.Balance = balance
	data.BalanceText = formatRupiah(balance.TotalBalance)
	data.IncomeText = formatRupiah(balance.TotalIncome)
	data.ExpenseText = formatRupiah(balance.TotalExpense)
	data.TransactionCount = len(txs)
	data.Recent = recentTransactions(txs, recentTransactionLimit)
	data.Breakdown = core.Breakdown(txs, cats, core.BreakdownLimit)

	s.render(w, r, PageDashboard, data)
}

// recentTransactions returns the newest n transactions by date,
// preserving backend order within a day.
func recentTransactions(txs []core.Transaction, n int) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
