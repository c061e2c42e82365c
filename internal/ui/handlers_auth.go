package ui

import (
	"net/http"

	"moneymate/internal/activity"
	"moneymate/internal/core"
	"moneymate/internal/log"
)

type authPageData struct {
	Error    string
	Username string
	Email    string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Current() != nil {
		http.Redirect(w, r, PageDashboard.Path(), http.StatusSeeOther)
		return
	}
	s.renderAuth(w, r, "login.html", authPageData{Error: r.URL.Query().Get("err")})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/login", "Permintaan tidak valid")
		return
	}
	username := sanitizeInput(r.Form.Get("username"))
	password := r.Form.Get("password")
	if username == "" || password == "" {
		s.renderAuth(w, r, "login.html", authPageData{
			Error:    "Username dan password harus diisi",
			Username: username,
		})
		return
	}

	user, err := s.backend.Login(r.Context(), username, password)
	if err != nil {
		s.logger.WarnContext(r.Context(), "login failed",
			log.FieldOperation, log.OpLogin,
			log.FieldError, err.Error())
		s.renderAuth(w, r, "login.html", authPageData{
			Error:    "Login gagal: periksa username dan password",
			Username: username,
		})
		return
	}

	s.recorder.Record(r.Context(), user.ID, activity.TypeLogin, "Signed in as "+user.Username)
	s.logger.InfoContext(r.Context(), "user signed in",
		log.FieldOperation, log.OpLogin,
		log.FieldUserID, user.ID)
	http.Redirect(w, r, PageDashboard.Path(), http.StatusSeeOther)
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Current() != nil {
		http.Redirect(w, r, PageDashboard.Path(), http.StatusSeeOther)
		return
	}
	s.renderAuth(w, r, "register.html", authPageData{Error: r.URL.Query().Get("err")})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/register", "Permintaan tidak valid")
		return
	}

	in := core.RegisterInput{
		Username: sanitizeInput(r.Form.Get("username")),
		Email:    sanitizeInput(r.Form.Get("email")),
		Password: r.Form.Get("password"),
	}
	if v := r.Form.Get("initialBalance"); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			s.renderAuth(w, r, "register.html", authPageData{
				Error:    "Saldo awal tidak valid",
				Username: in.Username,
				Email:    in.Email,
			})
			return
		}
		in.InitialBalance = core.Money{Cents: cents}
	}
	if err := in.Validate(); err != nil {
		s.renderAuth(w, r, "register.html", authPageData{
			Error:    err.Error(),
			Username: in.Username,
			Email:    in.Email,
		})
		return
	}

	user, err := s.backend.Register(r.Context(), in)
	if err != nil {
		s.logger.WarnContext(r.Context(), "registration failed",
			log.FieldOperation, log.OpRegister,
			log.FieldError, err.Error())
		s.renderAuth(w, r, "register.html", authPageData{
			Error:    "Registrasi gagal: " + err.Error(),
			Username: in.Username,
			Email:    in.Email,
		})
		return
	}

	s.recorder.Record(r.Context(), user.ID, activity.TypeRegister, "Registered account "+user.Username)
	s.logger.InfoContext(r.Context(), "user registered",
		log.FieldOperation, log.OpRegister,
		log.FieldUserID, user.ID)
	http.Redirect(w, r, PageDashboard.Path(), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if user := s.sessions.Current(); user != nil {
		s.recorder.Record(r.Context(), user.ID, activity.TypeLogout, "Signed out")
		s.logger.InfoContext(r.Context(), "user signed out",
			log.FieldOperation, log.OpLogout,
			log.FieldUserID, user.ID)
	}
	if err := s.sessions.Clear(); err != nil {
		s.logger.WarnContext(r.Context(), "session clear failed", log.FieldError, err.Error())
	}
	s.clearCaches()
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
