package ui

import (
	"net/http"
	"strconv"
	"time"

	"moneymate/internal/activity"
	"moneymate/internal/core"
	"moneymate/internal/log"
	"moneymate/internal/report"
)

type reportsData struct {
	Month       string
	Generated   bool
	View        report.View
	IncomeText  string
	ExpenseText string
	BalanceText string
	Summary     string
	LoadError   string
}

// handleReports renders the report screen; with a month parameter it
// generates (or serves the cached) monthly report.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	month := r.URL.Query().Get("month")

	data := reportsData{Month: month}
	if month == "" {
		data.Month = currentMonth(time.Now())
		s.render(w, r, PageReports, data)
		return
	}
	if err := core.ValidateMonth(month); err != nil {
		data.LoadError = "Format bulan tidak valid, gunakan YYYY-MM"
		s.render(w, r, PageReports, data)
		return
	}

	view, err := s.reportView(r, month)
	if err != nil {
		s.logger.ErrorContext(ctx, "report fetch failed",
			log.FieldMonth, month,
			log.FieldError, err.Error())
		data.LoadError = "Gagal memuat laporan"
		s.render(w, r, PageReports, data)
		return
	}

	data.Generated = true
	data.View = view
	data.IncomeText = formatRupiah(view.Report.TotalIncome)
	data.ExpenseText = formatRupiah(view.Report.TotalExpense)
	data.BalanceText = formatRupiah(view.Report.Balance)
	data.Summary = view.Summary()
	s.render(w, r, PageReports, data)
}

// reportView returns the month's prepared view, cached per month.
func (s *Server) reportView(r *http.Request, month string) (report.View, error) {
	if view, ok := s.reportCache.Get(month); ok {
		return view, nil
	}
	raw, err := s.backend.GetMonthlyReport(r.Context(), month)
	if err != nil {
		return report.View{}, err
	}
	view := report.NewView(month, raw, s.getCategories(r.Context()))
	s.reportCache.Put(view)
	return view, nil
}

// handleReportExport streams a report download and keeps a copy in the
// export directory.
func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	month := r.URL.Query().Get("month")
	if err := core.ValidateMonth(month); err != nil {
		redirectWithError(w, r, PageReports.Path(), "Format bulan tidak valid")
		return
	}
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		redirectWithError(w, r, PageReports.Path()+"?month="+month, "Format export tidak dikenal")
		return
	}

	view, err := s.reportView(r, month)
	if err != nil {
		s.logger.ErrorContext(ctx, "export: report fetch failed",
			log.FieldMonth, month,
			log.FieldError, err.Error())
		redirectWithError(w, r, PageReports.Path()+"?month="+month, "Gagal memuat laporan")
		return
	}

	name, data, err := s.exporter.Export(view, format, time.Now())
	if err != nil {
		s.logger.ErrorContext(ctx, "export failed",
			log.FieldMonth, month,
			log.FieldExportFormat, string(format),
			log.FieldError, err.Error())
		redirectWithError(w, r, PageReports.Path()+"?month="+month, "Export gagal")
		return
	}

	if user := s.sessions.Current(); user != nil {
		s.recorder.Record(ctx, user.ID, activity.TypeReportExported,
			"Exported "+month+" report as "+string(format))
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}
