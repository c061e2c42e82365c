package ui

import (
	"net/http"

	"moneymate/internal/activity"
	"moneymate/internal/log"
)

const activityPageLimit = 50

type activityRow struct {
	Type        string
	Description string
	When        string
}

type activityData struct {
	Entries   []activityRow
	LoadError string
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.sessions.Current()

	var data activityData
	entries, err := s.recorder.Recent(ctx, user.ID, activityPageLimit)
	if err != nil {
		s.logger.ErrorContext(ctx, "activity list failed",
			log.FieldUserID, user.ID,
			log.FieldError, err.Error())
		data.LoadError = "Gagal memuat activity logs"
	}
	for _, e := range entries {
		data.Entries = append(data.Entries, activityRow{
			Type:        activityLabel(e.Type),
			Description: e.Description,
			When:        e.CreatedAt.Local().Format("02/01/2006 15:04"),
		})
	}

	s.render(w, r, PageActivity, data)
}

func activityLabel(t string) string {
	switch t {
	case activity.TypeTransactionCreated:
		return "Transaksi Ditambah"
	case activity.TypeTransactionDeleted:
		return "Transaksi Dihapus"
	case activity.TypeTransactionUpdated:
		return "Transaksi Diperbarui"
	case activity.TypeReportExported:
		return "Laporan Diexport"
	case activity.TypeLogin:
		return "Login"
	case activity.TypeLogout:
		return "Logout"
	case activity.TypeRegister:
		return "Registrasi"
	default:
		return t
	}
}
