package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/shopspring/decimal"

	"pktracker/internal/core"
	applog "pktracker/internal/log"
	mwauth "pktracker/internal/middleware/auth"
)

// templateSet holds one parsed tree per page, each sharing the layout and
// partials.
type templateSet struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"rupees": rupees,
	"pct":    func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"money":  func(d decimal.Decimal) string { return d.StringFixed(2) },
}

func loadTemplates(fsys fs.FS) (*templateSet, error) {
	base, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout templates: %w", err)
	}

	files, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("list page templates: %w", err)
	}

	set := &templateSet{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", file, err)
		}
		if _, err := t.ParseFS(fsys, file); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", file, err)
		}
		set.pages[path.Base(file)] = t
	}
	return set, nil
}

// rupees formats whole, floating and decimal amounts with the rupee sign.
func rupees(v any) string {
	switch n := v.(type) {
	case int64:
		return fmt.Sprintf("₹%d", n)
	case int:
		return fmt.Sprintf("₹%d", n)
	case float64:
		return core.FormatRupees(n)
	case decimal.Decimal:
		return "₹" + n.StringFixed(2)
	default:
		return fmt.Sprint(v)
	}
}

// view is the data every page receives; page-specific values live in Data.
type view struct {
	Title  string
	User   mwauth.Identity
	Authed bool
	Errors []string
	Data   any
}

// render executes page into a buffer so a template error still yields a
// clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any, errs ...string) {
	t, ok := s.templates.pages[page]
	if !ok {
		s.logger.ErrorContext(r.Context(), "Unknown template", "template", page)
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	id, authed := mwauth.FromContext(r.Context())
	v := view{Title: title, User: id, Authed: authed, Errors: errs, Data: data}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			applog.NewFields().WithOperation(applog.OpRender).WithError(err).ToSlice()...)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
