package ui

import (
	"net/http"

	"moneymate/internal/core"
	"moneymate/internal/log"
)

// pageData is the envelope handed to every page template.
type pageData struct {
	Page    Page
	Title   string
	User    *core.User
	Nav     []Page
	Message string
	Error   string
	Data    any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, page Page, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "templates not loaded", log.FieldPage, string(page))
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	pd := pageData{
		Page:    page,
		Title:   page.Title(),
		User:    s.sessions.Current(),
		Nav:     NavPages,
		Message: r.URL.Query().Get("msg"),
		Error:   r.URL.Query().Get("err"),
		Data:    data,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, page.Template(), pd); err != nil {
		s.logger.ErrorContext(r.Context(), "template execution failed",
			log.FieldPage, string(page),
			log.FieldError, err.Error())
		http.Error(w, "rendering failed", http.StatusInternalServerError)
	}
}

// renderAuth renders the login/register screen, which has no nav.
func (s *Server) renderAuth(w http.ResponseWriter, r *http.Request, tmpl string, data any) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, tmpl, data); err != nil {
		s.logger.ErrorContext(r.Context(), "template execution failed",
			"template", tmpl,
			log.FieldError, err.Error())
		http.Error(w, "rendering failed", http.StatusInternalServerError)
	}
}
