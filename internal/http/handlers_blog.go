package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pktracker/internal/core"
	applog "pktracker/internal/log"
)

type blogPage struct {
	Category string
	Posts    []core.Blog
}

// handleBlogList shows the seeded posts of one category. Unknown
// categories render an empty list.
func (s *Server) handleBlogList(w http.ResponseWriter, r *http.Request) {
	category := sanitizeInput(chi.URLParam(r, "category"))
	posts, err := s.backend.Blogs.ByCategory(r.Context(), category)
	if err != nil {
		s.serverError(w, r, applog.OpList, err)
		return
	}
	s.render(w, r, http.StatusOK, "blog_list.html", "Blog", blogPage{Category: category, Posts: posts})
}
