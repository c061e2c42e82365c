package ui

import (
	"net/http"

	"moneymate/internal/core"
	"moneymate/internal/log"
)

type profileData struct {
	User            core.User
	InitialBalance  string
	TotalActivities int64
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user := s.sessions.Current()

	data := profileData{
		User:           *user,
		InitialBalance: formatRupiah(user.InitialBalance),
	}
	if count, err := s.recorder.Count(r.Context(), user.ID); err == nil {
		data.TotalActivities = count
	} else {
		s.logger.WarnContext(r.Context(), "activity count failed",
			log.FieldUserID, user.ID,
			log.FieldError, err.Error())
	}

	s.render(w, r, PageProfile, data)
}
