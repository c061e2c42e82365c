package ui

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"moneymate/internal/activity"
	"moneymate/internal/api"
	"moneymate/internal/core"
	"moneymate/internal/log"
	"moneymate/internal/report"
)

type stubSessions struct {
	user *core.User
}

func (s *stubSessions) Current() *core.User { return s.user }
func (s *stubSessions) Save(u core.User) error {
	s.user = &u
	return nil
}
func (s *stubSessions) Clear() error {
	s.user = nil
	return nil
}

// stubBackend implements Backend in memory and records calls.
type stubBackend struct {
	sessions *stubSessions

	txs     []core.Transaction
	balance core.Balance
	cats    core.CategorySet
	reports map[string]core.MonthlyReport

	created    []core.TransactionInput
	deleted    []string
	createErr  error
	deleteErr  error
	listErr    error
	balanceErr error
	loginErr   error
	nextID     int
	reportErrs map[string]error
}

func newStubBackend(sessions *stubSessions) *stubBackend {
	return &stubBackend{
		sessions: sessions,
		cats: core.CategorySet{
			Income:  []core.Category{{Name: "GAJI", DisplayName: "Salary"}},
			Expense: []core.Category{{Name: "MAKAN", DisplayName: "Food"}, {Name: "TRANSPORT", DisplayName: "Transport"}},
		},
		reports:    map[string]core.MonthlyReport{},
		reportErrs: map[string]error{},
	}
}

func (b *stubBackend) ListTransactions(context.Context) ([]core.Transaction, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	return b.txs, nil
}

func (b *stubBackend) CreateTransaction(_ context.Context, in core.TransactionInput) (api.CreateResult, error) {
	if b.createErr != nil {
		return api.CreateResult{}, b.createErr
	}
	b.created = append(b.created, in)
	b.nextID++
	label := core.TypeExpense
	if in.Type == core.KindIncome {
		label = core.TypeIncome
	}
	id := "TX" + strings.Repeat("0", 2) + string(rune('0'+b.nextID))
	b.txs = append(b.txs, core.Transaction{
		ID: id, Type: label, Amount: in.Amount, Description: in.Description,
		Date: in.Date, Category: in.Category, Source: in.Source,
		PaymentMethod: in.PaymentMethod, Recurring: in.Recurring,
	})
	return api.CreateResult{Success: true, TransactionID: id}, nil
}

func (b *stubBackend) DeleteTransaction(_ context.Context, id string) (api.DeleteResult, error) {
	if b.deleteErr != nil {
		return api.DeleteResult{}, b.deleteErr
	}
	for i, tx := range b.txs {
		if tx.ID == id {
			b.txs = append(b.txs[:i], b.txs[i+1:]...)
			b.deleted = append(b.deleted, id)
			return api.DeleteResult{Success: true}, nil
		}
	}
	return api.DeleteResult{}, &api.RequestError{Status: http.StatusNotFound, Message: "transaction not found"}
}

func (b *stubBackend) GetBalance(context.Context) (core.Balance, error) {
	if b.balanceErr != nil {
		return core.Balance{}, b.balanceErr
	}
	return b.balance, nil
}

func (b *stubBackend) GetCategories(context.Context) (core.CategorySet, error) {
	return b.cats, nil
}

func (b *stubBackend) GetMonthlyReport(_ context.Context, month string) (core.MonthlyReport, error) {
	if err := b.reportErrs[month]; err != nil {
		return core.MonthlyReport{}, err
	}
	r, ok := b.reports[month]
	if !ok {
		return core.MonthlyReport{Month: month}, nil
	}
	return r, nil
}

func (b *stubBackend) Login(_ context.Context, username, _ string) (core.User, error) {
	if b.loginErr != nil {
		return core.User{}, b.loginErr
	}
	user := core.User{ID: "U1", Username: username, Email: username + "@example.com"}
	_ = b.sessions.Save(user)
	return user, nil
}

func (b *stubBackend) Register(_ context.Context, in core.RegisterInput) (core.User, error) {
	user := core.User{ID: "U2", Username: in.Username, Email: in.Email, InitialBalance: in.InitialBalance}
	_ = b.sessions.Save(user)
	return user, nil
}

type testApp struct {
	server   *Server
	backend  *stubBackend
	sessions *stubSessions
	store    *activity.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	sessions := &stubSessions{}
	backend := newStubBackend(sessions)

	store, err := activity.NewStore(filepath.Join(t.TempDir(), "activity.db"))
	if err != nil {
		t.Fatalf("activity store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := log.New(slog.LevelError, log.ComponentUI)
	recorder := activity.NewRecorder(store, nil, logger)
	exporter := report.NewExporter(t.TempDir(), logger)

	s := NewServer(":0", backend, sessions, recorder, exporter, logger)
	t.Cleanup(func() {
		s.rateLimiter.stop()
		s.janitor.Stop()
	})
	return &testApp{server: s, backend: backend, sessions: sessions, store: store}
}

func (a *testApp) signIn() {
	a.sessions.user = &core.User{ID: "U1", Username: "budi", Email: "budi@example.com"}
}

func (a *testApp) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(w, req)
	return w
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		if w := app.get(t, path); w.Code != http.StatusOK {
			t.Errorf("%s = %d", path, w.Code)
		}
	}
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/", "/dashboard", "/transactions", "/reports", "/activity-logs", "/profile"} {
		w := app.get(t, path)
		if w.Code != http.StatusSeeOther {
			t.Errorf("%s = %d, want redirect", path, w.Code)
			continue
		}
		if loc := w.Header().Get("Location"); loc != "/login" {
			t.Errorf("%s redirects to %q", path, loc)
		}
	}
}

func TestLoginSignsInAndRedirects(t *testing.T) {
	app := newTestApp(t)
	w := app.postForm(t, "/login", url.Values{"username": {"budi"}, "password": {"secret"}})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/dashboard" {
		t.Fatalf("code %d, location %q", w.Code, w.Header().Get("Location"))
	}
	if app.sessions.Current() == nil {
		t.Fatalf("session not established")
	}

	// The sign-in lands in the activity trail.
	entries, err := app.store.ListRecent(context.Background(), "U1", 10)
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != activity.TypeLogin {
		t.Fatalf("activity = %+v", entries)
	}
}

func TestLoginFailureRendersError(t *testing.T) {
	app := newTestApp(t)
	app.backend.loginErr = errors.New("bad credentials")
	w := app.postForm(t, "/login", url.Values{"username": {"budi"}, "password": {"wrong"}})
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Login gagal") {
		t.Fatalf("error message missing:\n%s", w.Body.String())
	}
	if app.sessions.Current() != nil {
		t.Fatalf("session must not be established")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	w := app.postForm(t, "/logout", url.Values{})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Fatalf("code %d, location %q", w.Code, w.Header().Get("Location"))
	}
	if app.sessions.Current() != nil {
		t.Fatalf("session should be cleared")
	}
}

func TestLogoutDropsCachedState(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	app.server.categories = app.backend.cats
	app.server.catFetched = time.Now()
	app.server.reportCache.Put(report.View{Month: "2025-03"})

	w := app.postForm(t, "/logout", url.Values{})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("code = %d", w.Code)
	}
	if !app.server.categories.IsEmpty() || !app.server.catFetched.IsZero() {
		t.Errorf("category catalog survived logout")
	}
	if _, ok := app.server.reportCache.Get("2025-03"); ok {
		t.Errorf("report cache survived logout")
	}
}

func TestDashboardRendersCards(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	app.backend.balance = core.Balance{
		TotalBalance: core.Money{Cents: 150000000},
		TotalIncome:  core.Money{Cents: 200000000},
		TotalExpense: core.Money{Cents: 50000000},
	}
	app.backend.txs = []core.Transaction{
		{ID: "TX1", Type: core.TypeIncome, Amount: core.Money{Cents: 200000000}, Description: "gaji", Date: core.NewDate(2025, 3, 1), Category: "GAJI"},
		{ID: "TX2", Type: core.TypeExpense, Amount: core.Money{Cents: 50000000}, Description: "makan siang", Date: core.NewDate(2025, 3, 2), Category: "MAKAN"},
	}

	w := app.get(t, "/dashboard")
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Rp 1.500.000,00", "gaji", "makan siang", "Food"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

// slowListBackend delays ListTransactions and records whether the
// request context was cancelled while it waited.
type slowListBackend struct {
	*stubBackend
	delay  time.Duration
	ctxErr error
}

func (b *slowListBackend) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	time.Sleep(b.delay)
	b.ctxErr = ctx.Err()
	return b.stubBackend.ListTransactions(ctx)
}

func TestDashboardSurvivesBalanceFailure(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	app.backend.balanceErr = errors.New("balance service down")
	app.backend.txs = []core.Transaction{
		{ID: "TX1", Type: core.TypeExpense, Amount: core.Money{Cents: 2500000}, Description: "makan siang", Date: core.NewDate(2025, 3, 2), Category: "MAKAN"},
	}
	// The balance fetch fails immediately; the transaction list is
	// still in flight and must run to completion.
	slow := &slowListBackend{stubBackend: app.backend, delay: 50 * time.Millisecond}
	app.server.backend = slow

	w := app.get(t, "/dashboard")
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if slow.ctxErr != nil {
		t.Fatalf("list fetch was cancelled: %v", slow.ctxErr)
	}
	body := w.Body.String()
	if !strings.Contains(body, "makan siang") {
		t.Errorf("transaction list missing despite balance failure")
	}
	if !strings.Contains(body, "Sebagian data gagal dimuat") {
		t.Errorf("degraded banner missing")
	}
}

func TestDashboardBreakdownIncludesIncome(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	app.backend.txs = []core.Transaction{
		{ID: "TX1", Type: core.TypeIncome, Amount: core.Money{Cents: 500000000}, Description: "gaji", Date: core.NewDate(2025, 3, 1), Category: "GAJI"},
		{ID: "TX2", Type: core.TypeExpense, Amount: core.Money{Cents: 2000000}, Description: "makan", Date: core.NewDate(2025, 3, 2), Category: "MAKAN"},
	}

	w := app.get(t, "/dashboard")
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	body := w.Body.String()
	// The breakdown covers both directions, not just spending.
	for _, want := range []string{"Salary", "Food"} {
		if !strings.Contains(body, want) {
			t.Errorf("breakdown missing %q", want)
		}
	}
}

func TestTransactionsStatsReflectFilter(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	app.backend.txs = []core.Transaction{
		{ID: "TX1", Type: core.TypeIncome, Amount: core.Money{Cents: 100000000}, Description: "gaji", Date: core.NewDate(2025, 3, 1), Category: "GAJI"},
		{ID: "TX2", Type: core.TypeExpense, Amount: core.Money{Cents: 2000000}, Description: "makan", Date: core.NewDate(2025, 3, 2), Category: "MAKAN"},
	}

	w := app.get(t, "/transactions?type=expense")
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "gaji") {
		t.Errorf("income row should be filtered out")
	}
	if !strings.Contains(body, "makan") {
		t.Errorf("expense row missing")
	}
	// The stat cards count only the filtered rows.
	if !strings.Contains(body, "difilter") {
		t.Errorf("filtered marker missing")
	}
}

func TestCreateTransaction(t *testing.T) {
	app := newTestApp(t)
	app.signIn()

	w := app.postForm(t, "/transactions", url.Values{
		"type":        {"income"},
		"amount":      {"1000000"},
		"description": {"gaji bulanan"},
		"date":        {"2025-03-01"},
		"category":    {"GAJI"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("code = %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Location"), "/transactions") {
		t.Fatalf("location = %q", w.Header().Get("Location"))
	}
	if len(app.backend.created) != 1 {
		t.Fatalf("created %d transactions", len(app.backend.created))
	}
	in := app.backend.created[0]
	if in.Type != core.KindIncome || in.Amount.Cents != 100000000 || in.Description != "gaji bulanan" {
		t.Fatalf("input = %+v", in)
	}
	// Omitted source and payment method get defaults.
	if in.Source != "Manual" || in.PaymentMethod != "Cash" {
		t.Fatalf("defaults not applied: %+v", in)
	}
}

func TestCreateTransactionRejectsBadAmount(t *testing.T) {
	app := newTestApp(t)
	app.signIn()

	w := app.postForm(t, "/transactions", url.Values{
		"type":        {"income"},
		"amount":      {"-5"},
		"description": {"x"},
		"date":        {"2025-03-01"},
		"category":    {"GAJI"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("code = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Location"), "err=") {
		t.Fatalf("expected error redirect, got %q", w.Header().Get("Location"))
	}
	if len(app.backend.created) != 0 {
		t.Fatalf("nothing should be created")
	}
}

func TestDeleteTransaction(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	app.backend.txs = []core.Transaction{
		{ID: "TX1", Type: core.TypeExpense, Amount: core.Money{Cents: 100}, Description: "makan", Date: core.NewDate(2025, 3, 2), Category: "MAKAN"},
	}

	w := app.postForm(t, "/transactions/TX1/delete", url.Values{})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("code = %d", w.Code)
	}
	if len(app.backend.deleted) != 1 || app.backend.deleted[0] != "TX1" {
		t.Fatalf("deleted = %v", app.backend.deleted)
	}
}

func TestDeleteMissingTransaction(t *testing.T) {
	app := newTestApp(t)
	app.signIn()

	w := app.postForm(t, "/transactions/NOPE/delete", url.Values{})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("code = %d", w.Code)
	}
	loc := w.Header().Get("Location")
	if !strings.Contains(loc, "err=") {
		t.Fatalf("expected error redirect, got %q", loc)
	}
}

func TestEditTransactionReplaces(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	app.backend.txs = []core.Transaction{
		{ID: "TX1", Type: core.TypeExpense, Amount: core.Money{Cents: 2000000}, Description: "makan", Date: core.NewDate(2025, 3, 2), Category: "MAKAN", Source: "Manual", PaymentMethod: "Cash"},
	}

	w := app.postForm(t, "/transactions/TX1/edit", url.Values{
		"type":        {"expense"},
		"amount":      {"30000"},
		"description": {"makan malam"},
		"date":        {"2025-03-03"},
		"category":    {"MAKAN"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("code = %d", w.Code)
	}
	if len(app.backend.deleted) != 1 || app.backend.deleted[0] != "TX1" {
		t.Fatalf("original not deleted: %v", app.backend.deleted)
	}
	if len(app.backend.created) != 1 || app.backend.created[0].Description != "makan malam" {
		t.Fatalf("replacement not created: %+v", app.backend.created)
	}
}

func TestEditRestoresOriginalWhenRecreateFails(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	original := core.Transaction{
		ID: "TX1", Type: core.TypeExpense, Amount: core.Money{Cents: 2000000},
		Description: "makan", Date: core.NewDate(2025, 3, 2), Category: "MAKAN",
		Source: "Manual", PaymentMethod: "Cash",
	}
	app.backend.txs = []core.Transaction{original}

	// Fail the first create (the replacement), allow the second (the restore).
	calls := 0
	app.backend.createErr = nil
	failingBackend := &editFailBackend{stubBackend: app.backend, failFirst: &calls}
	app.server.backend = failingBackend

	w := app.postForm(t, "/transactions/TX1/edit", url.Values{
		"type":        {"expense"},
		"amount":      {"30000"},
		"description": {"makan malam"},
		"date":        {"2025-03-03"},
		"category":    {"MAKAN"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("code = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Location"), "err=") {
		t.Fatalf("expected error redirect")
	}
	// The restore recreated the original's data.
	if len(app.backend.created) != 1 || app.backend.created[0].Description != "makan" {
		t.Fatalf("restore not attempted: %+v", app.backend.created)
	}
}

// editFailBackend fails the first CreateTransaction call and delegates
// the rest.
type editFailBackend struct {
	*stubBackend
	failFirst *int
}

func (b *editFailBackend) CreateTransaction(ctx context.Context, in core.TransactionInput) (api.CreateResult, error) {
	*b.failFirst++
	if *b.failFirst == 1 {
		return api.CreateResult{}, errors.New("backend rejected")
	}
	return b.stubBackend.CreateTransaction(ctx, in)
}

func TestReportsPageRendersShares(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	app.backend.reports["2025-03"] = core.MonthlyReport{
		Month:            "2025-03",
		TotalIncome:      core.Money{Cents: 100000000},
		TotalExpense:     core.Money{Cents: 0},
		Balance:          core.Money{Cents: 100000000},
		IncomeByCategory: map[string]core.Money{"GAJI": {Cents: 100000000}},
		Summary:          "Bulan yang baik",
	}

	w := app.get(t, "/reports?month=2025-03")
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	body := w.Body.String()
	// A single income category owns the full share.
	for _, want := range []string{"Salary", "100.00%", "Bulan yang baik"} {
		if !strings.Contains(body, want) {
			t.Errorf("reports missing %q", want)
		}
	}
}

func TestReportsInvalidMonth(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	w := app.get(t, "/reports?month=bogus")
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Format bulan tidak valid") {
		t.Fatalf("validation message missing")
	}
}

func TestReportUsesCacheAfterFirstFetch(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	app.backend.reports["2025-03"] = core.MonthlyReport{
		Month:       "2025-03",
		TotalIncome: core.Money{Cents: 100000},
	}

	if w := app.get(t, "/reports?month=2025-03"); w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	// Make the backend fail; the cached view must still serve.
	app.backend.reportErrs["2025-03"] = errors.New("backend down")
	w := app.get(t, "/reports?month=2025-03")
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "Gagal memuat laporan") {
		t.Fatalf("cache not used")
	}
}

func TestReportExportCSV(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	app.backend.reports["2025-03"] = core.MonthlyReport{
		Month:            "2025-03",
		TotalIncome:      core.Money{Cents: 100000000},
		IncomeByCategory: map[string]core.Money{"GAJI": {Cents: 100000000}},
	}

	w := app.get(t, "/reports/export?month=2025-03&format=csv")
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type = %q", ct)
	}
	disp := w.Header().Get("Content-Disposition")
	if !strings.Contains(disp, "MoneyMate_Report_2025-03_") || !strings.Contains(disp, ".csv") {
		t.Fatalf("disposition = %q", disp)
	}
	if !strings.Contains(w.Body.String(), "Salary,1000000,100.00%") {
		t.Fatalf("csv body wrong:\n%s", w.Body.String())
	}
}

func TestReportExportUnknownFormat(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	w := app.get(t, "/reports/export?month=2025-03&format=pdf")
	if w.Code != http.StatusSeeOther {
		t.Fatalf("code = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Location"), "err=") {
		t.Fatalf("expected error redirect")
	}
}

func TestActivityPageListsTrail(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	_, err := app.store.Insert(context.Background(), activity.Entry{
		UserID: "U1", Type: activity.TypeTransactionCreated, Description: "Added income gaji",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	w := app.get(t, "/activity-logs")
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Added income gaji") {
		t.Fatalf("trail entry missing")
	}
}

func TestProfilePage(t *testing.T) {
	app := newTestApp(t)
	app.sessions.user = &core.User{
		ID: "U1", Username: "budi", Email: "budi@example.com",
		InitialBalance: core.Money{Cents: 50000000},
	}

	w := app.get(t, "/profile")
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"budi", "budi@example.com", "Rp 500.000,00"} {
		if !strings.Contains(body, want) {
			t.Errorf("profile missing %q", want)
		}
	}
}

func TestIndexRedirectsSignedInUser(t *testing.T) {
	app := newTestApp(t)
	app.signIn()
	w := app.get(t, "/")
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/dashboard" {
		t.Fatalf("code %d, location %q", w.Code, w.Header().Get("Location"))
	}
}
