package ui

import (
	"errors"
	"net/http"
	"time"

	"moneymate/internal/activity"
	"moneymate/internal/core"
	"moneymate/internal/log"
)

// ErrTransactionNotFound is returned when an id is absent from the
// backend's list.
var ErrTransactionNotFound = errors.New("transaction not found")

type transactionsData struct {
	Transactions []core.Transaction
	Stats        core.Stats
	StatsIncome  string
	StatsExpense string
	StatsNet     string
	Filter       core.Filter
	FilterType   string
	Categories   core.CategorySet
	Filtered     bool
}

// handleTransactions renders the list with the filter applied. The
// stat cards reflect the filtered view, not the whole ledger.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	txs, err := s.backend.ListTransactions(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "transaction list failed",
			log.FieldOperation, log.OpList,
			log.FieldError, err.Error())
		s.render(w, r, PageTransactions, transactionsData{})
		return
	}
	cats := s.getCategories(ctx)

	filter := filterFromQuery(r.URL.Query())
	filtered := filter.Apply(txs, cats)
	stats := core.ComputeStats(filtered)

	s.render(w, r, PageTransactions, transactionsData{
		Transactions: filtered,
		Stats:        stats,
		StatsIncome:  formatRupiah(stats.Income),
		StatsExpense: formatRupiah(stats.Expense),
		StatsNet:     formatRupiah(stats.Net),
		Filter:       filter,
		FilterType:   r.URL.Query().Get("type"),
		Categories:   cats,
		Filtered:     !filter.IsZero(),
	})
}

type addTransactionData struct {
	Categories core.CategorySet
	Today      string
	Edit       bool
	EditID     string
	Input      core.TransactionInput
	InputKind  string
}

func (s *Server) handleAddTransactionPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, PageAddTransaction, addTransactionData{
		Categories: s.getCategories(r.Context()),
		Today:      time.Now().Format("2006-01-02"),
	})
}

// transactionInputFromForm builds a creation payload from the add/edit
// form.
func (s *Server) transactionInputFromForm(r *http.Request) (core.TransactionInput, error) {
	if err := r.ParseForm(); err != nil {
		return core.TransactionInput{}, err
	}

	in := core.TransactionInput{
		Type:          sanitizeInput(r.Form.Get("type")),
		Description:   sanitizeInput(r.Form.Get("description")),
		Category:      sanitizeInput(r.Form.Get("category")),
		Source:        sanitizeInput(r.Form.Get("source")),
		PaymentMethod: sanitizeInput(r.Form.Get("paymentMethod")),
		Recurring:     r.Form.Get("recurring") == "on",
	}
	if in.Source == "" {
		in.Source = "Manual"
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = "Cash"
	}

	cents, err := core.ParseDecimalToCents(r.Form.Get("amount"))
	if err != nil {
		return in, err
	}
	in.Amount = core.Money{Cents: cents}

	date, err := formDate(r.Form.Get("date"), time.Now())
	if err != nil {
		return in, err
	}
	in.Date = date

	return in, in.Validate()
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in, err := s.transactionInputFromForm(r)
	if err != nil {
		redirectWithError(w, r, PageAddTransaction.Path(), "Data transaksi tidak valid: "+err.Error())
		return
	}

	result, err := s.backend.CreateTransaction(ctx, in)
	if err != nil {
		s.logger.ErrorContext(ctx, "transaction create failed",
			log.FieldOperation, log.OpCreate,
			log.FieldError, err.Error())
		redirectWithError(w, r, PageAddTransaction.Path(), "Gagal menyimpan transaksi")
		return
	}

	s.invalidateReport(in.Date)
	if user := s.sessions.Current(); user != nil {
		s.recorder.Record(ctx, user.ID, activity.TypeTransactionCreated,
			"Added "+in.Type+" "+in.Description)
	}
	s.logger.InfoContext(ctx, "transaction created",
		log.FieldOperation, log.OpCreate,
		log.FieldTransactionID, result.TransactionID,
		log.FieldAmountCents, in.Amount.Cents,
		log.FieldCategory, in.Category)

	redirectWithMessage(w, r, PageTransactions.Path(), "Transaksi berhasil ditambahkan")
}

// findTransaction scans the backend list for an id.
func (s *Server) findTransaction(r *http.Request, id string) (core.Transaction, error) {
	txs, err := s.backend.ListTransactions(r.Context())
	if err != nil {
		return core.Transaction{}, err
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, ErrTransactionNotFound
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	tx, err := s.findTransaction(r, id)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			redirectWithError(w, r, PageTransactions.Path(), "Transaksi tidak ditemukan")
			return
		}
		redirectWithError(w, r, PageTransactions.Path(), "Gagal memuat transaksi")
		return
	}

	if _, err := s.backend.DeleteTransaction(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "transaction delete failed",
			log.FieldOperation, log.OpDelete,
			log.FieldTransactionID, id,
			log.FieldError, err.Error())
		redirectWithError(w, r, PageTransactions.Path(), "Gagal menghapus transaksi")
		return
	}

	s.invalidateReport(tx.Date)
	if user := s.sessions.Current(); user != nil {
		s.recorder.Record(ctx, user.ID, activity.TypeTransactionDeleted,
			"Deleted "+tx.Description)
	}
	s.logger.InfoContext(ctx, "transaction deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldTransactionID, id)

	redirectWithMessage(w, r, PageTransactions.Path(), "Transaksi berhasil dihapus")
}

func (s *Server) handleEditTransactionPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tx, err := s.findTransaction(r, id)
	if err != nil {
		redirectWithError(w, r, PageTransactions.Path(), "Transaksi tidak ditemukan")
		return
	}

	in := tx.InputOf()
	s.render(w, r, PageAddTransaction, addTransactionData{
		Categories: s.getCategories(r.Context()),
		Today:      time.Now().Format("2006-01-02"),
		Edit:       true,
		EditID:     id,
		Input:      in,
		InputKind:  in.Type,
	})
}

// handleEditTransaction replaces a transaction. The backend has no
// update call, so the original is deleted and a new one created; if
// the create fails the original is best-effort restored.
func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	in, err := s.transactionInputFromForm(r)
	if err != nil {
		redirectWithError(w, r, PageTransactions.Path(), "Data transaksi tidak valid: "+err.Error())
		return
	}

	original, err := s.findTransaction(r, id)
	if err != nil {
		redirectWithError(w, r, PageTransactions.Path(), "Transaksi tidak ditemukan")
		return
	}

	if _, err := s.backend.DeleteTransaction(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "edit: delete failed",
			log.FieldOperation, log.OpUpdate,
			log.FieldTransactionID, id,
			log.FieldError, err.Error())
		redirectWithError(w, r, PageTransactions.Path(), "Gagal memperbarui transaksi")
		return
	}

	if _, err := s.backend.CreateTransaction(ctx, in); err != nil {
		s.logger.ErrorContext(ctx, "edit: recreate failed, restoring original",
			log.FieldOperation, log.OpUpdate,
			log.FieldTransactionID, id,
			log.FieldError, err.Error())
		if _, restoreErr := s.backend.CreateTransaction(ctx, original.InputOf()); restoreErr != nil {
			s.logger.ErrorContext(ctx, "edit: restore failed, transaction lost",
				log.FieldOperation, log.OpUpdate,
				log.FieldTransactionID, id,
				log.FieldError, restoreErr.Error())
		}
		redirectWithError(w, r, PageTransactions.Path(), "Gagal memperbarui transaksi")
		return
	}

	s.invalidateReport(original.Date)
	s.invalidateReport(in.Date)
	if user := s.sessions.Current(); user != nil {
		s.recorder.Record(ctx, user.ID, activity.TypeTransactionUpdated,
			"Updated "+in.Description)
	}
	s.logger.InfoContext(ctx, "transaction updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldTransactionID, id)

	redirectWithMessage(w, r, PageTransactions.Path(), "Transaksi berhasil diperbarui")
}
