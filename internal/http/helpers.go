package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"

	"pktracker/internal/auth"
	"pktracker/internal/core"
	"pktracker/internal/services"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// safeNext returns next when it is a local absolute path, otherwise
// fallback. Protocol-relative and absolute URLs are rejected.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return next
}

// formError turns a validation error into a message for the form.
func formError(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Enter an amount greater than zero."
	case errors.Is(err, core.ErrNegativeLimit):
		return "The budget limit cannot be negative."
	case errors.Is(err, core.ErrInvalidCategory):
		return "Choose a category from the list."
	case errors.Is(err, core.ErrInvalidGroup):
		return "Choose a group type from the list."
	case errors.Is(err, core.ErrPayerNotMember):
		return "The payer must be a member of this group."
	case errors.Is(err, services.ErrUnknownUser):
		return "No user with that username."
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Please enter a correct username and password."
	}
	return capitalize(err.Error()) + "."
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}
