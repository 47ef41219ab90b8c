package http

import (
	"errors"
	"net/http"

	"pktracker/internal/auth"
	"pktracker/internal/core"
	applog "pktracker/internal/log"
	mwauth "pktracker/internal/middleware/auth"
)

type authPage struct {
	Username string
	Next     string
}

func (s *Server) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := mwauth.FromContext(r.Context()); ok {
		http.Redirect(w, r, expensesPath, http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "signup.html", "Sign up", authPage{})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if !ParseFormOrFail(w, r) {
		return
	}
	username := sanitizeInput(r.PostForm.Get("username"))
	user, err := s.backend.Auth.Register(r.Context(), username, r.PostForm.Get("password1"), r.PostForm.Get("password2"))
	if err != nil {
		if isValidationError(err) {
			s.render(w, r, http.StatusUnprocessableEntity, "signup.html", "Sign up", authPage{Username: username}, formError(err))
			return
		}
		s.serverError(w, r, applog.OpSignup, err)
		return
	}

	applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).
		InfoContext(r.Context(), "User signed up", applog.FieldUserID, int64(user.ID), applog.FieldUsername, user.Username)
	s.startSession(w, r, user, expensesPath)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"), expensesPath)
	if _, ok := mwauth.FromContext(r.Context()); ok {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", "Log in", authPage{Next: next})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !ParseFormOrFail(w, r) {
		return
	}
	username := sanitizeInput(r.PostForm.Get("username"))
	next := safeNext(r.PostForm.Get("next"), expensesPath)

	user, err := s.backend.Auth.Authenticate(r.Context(), username, r.PostForm.Get("password"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).
				WarnContext(r.Context(), "Login failed", applog.FieldUsername, username)
			s.render(w, r, http.StatusUnprocessableEntity, "login.html", "Log in", authPage{Username: username, Next: next}, formError(err))
			return
		}
		s.serverError(w, r, applog.OpLogin, err)
		return
	}
	s.startSession(w, r, user, next)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	mwauth.ClearCookie(w, s.secureCookies)
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user core.User, next string) {
	token, err := s.backend.Sessions.Generate(user)
	if err != nil {
		s.serverError(w, r, applog.OpLogin, err)
		return
	}
	mwauth.SetCookie(w, token, s.backend.Sessions.TTL(), s.secureCookies)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// isValidationError reports whether err is a user-correctable input error.
func isValidationError(err error) bool {
	for _, target := range []error{
		auth.ErrWeakPassword, auth.ErrPasswordMismatch, auth.ErrInvalidUsername, auth.ErrUsernameTaken,
		core.ErrEmptyUsername, core.ErrEmptyTitle, core.ErrTitleTooLong, core.ErrEmptySource,
		core.ErrInvalidAmount, core.ErrInvalidCategory, core.ErrInvalidGroup, core.ErrEmptyGroupName,
		core.ErrNegativeLimit, core.ErrPayerNotMember, core.ErrInvalidDay, core.ErrInvalidMonth,
		core.ErrGroupNameTooLong, errInvalidDate, errInvalidPayer,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
