package http

import (
	"errors"
	"net/http"
	"strconv"

	"pktracker/internal/core"
	applog "pktracker/internal/log"
	mwauth "pktracker/internal/middleware/auth"
	"pktracker/internal/services"
)

var errInvalidPayer = errors.New("choose who paid")

func (s *Server) handleGroupList(w http.ResponseWriter, r *http.Request) {
	groups, err := s.backend.Groups.List(r.Context(), mwauth.UserID(r.Context()))
	if err != nil {
		s.serverError(w, r, applog.OpList, err)
		return
	}
	s.render(w, r, http.StatusOK, "group_list.html", "Groups", groups)
}

type createGroupPage struct {
	Name  string
	Type  string
	Types []core.GroupType
}

func (s *Server) handleCreateGroupForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "create_group.html", "New group",
		createGroupPage{Type: string(core.Roommates), Types: core.GroupTypes()})
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	if !ParseFormOrFail(w, r) {
		return
	}
	ctx := r.Context()
	name := sanitizeInput(r.PostForm.Get("name"))
	groupType := sanitizeInput(r.PostForm.Get("group_type"))

	g, err := s.backend.Groups.Create(ctx, mwauth.UserID(ctx), name, groupType)
	if err != nil {
		if isValidationError(err) {
			s.render(w, r, http.StatusUnprocessableEntity, "create_group.html", "New group",
				createGroupPage{Name: name, Type: groupType, Types: core.GroupTypes()}, formError(err))
			return
		}
		s.serverError(w, r, applog.OpCreate, err)
		return
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentGroup).
		InfoContext(ctx, "Group created", applog.FieldGroupID, g.ID, applog.FieldUserID, int64(g.CreatorID))
	http.Redirect(w, r, groupPath(g.ID), http.StatusSeeOther)
}

type groupDetailPage struct {
	services.GroupDetail
	Names map[core.UserID]string

	// Submitted values kept when a form is rejected.
	Title    string
	Amount   string
	PaidBy   core.UserID
	Username string
}

func (s *Server) handleGroupDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, groupsPath, http.StatusSeeOther)
		return
	}
	userID := mwauth.UserID(r.Context())
	d, err := s.backend.Groups.Detail(r.Context(), id, userID)
	if err != nil {
		s.redirectIfNotFound(w, r, groupsPath, applog.OpRead, err)
		return
	}
	s.render(w, r, http.StatusOK, "group_detail.html", d.Group.Name,
		groupDetailPage{GroupDetail: d, Names: d.Usernames(), PaidBy: userID})
}

// handleGroupDetailPost adds a member when add_member is submitted, and a
// shared expense otherwise.
func (s *Server) handleGroupDetailPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, groupsPath, http.StatusSeeOther)
		return
	}
	if !ParseFormOrFail(w, r) {
		return
	}
	ctx := r.Context()
	userID := mwauth.UserID(ctx)
	page := groupDetailPage{PaidBy: userID}

	var err error
	if r.PostForm.Has("add_member") {
		page.Username = sanitizeInput(r.PostForm.Get("username"))
		err = s.backend.Groups.AddMember(ctx, id, userID, page.Username)
	} else {
		page.Title = sanitizeInput(r.PostForm.Get("title"))
		page.Amount = sanitizeInput(r.PostForm.Get("amount"))
		var paidBy int64
		paidBy, err = strconv.ParseInt(r.PostForm.Get("paid_by"), 10, 64)
		if err != nil {
			err = errInvalidPayer
		} else {
			page.PaidBy = core.UserID(paidBy)
			_, err = s.backend.Groups.AddExpense(ctx, id, userID, page.Title, page.Amount, page.PaidBy)
		}
	}
	if err == nil {
		http.Redirect(w, r, groupPath(id), http.StatusSeeOther)
		return
	}

	if !isValidationError(err) && !errors.Is(err, services.ErrUnknownUser) {
		s.redirectIfNotFound(w, r, groupsPath, applog.OpUpdate, err)
		return
	}
	d, loadErr := s.backend.Groups.Detail(ctx, id, userID)
	if loadErr != nil {
		s.redirectIfNotFound(w, r, groupsPath, applog.OpRead, loadErr)
		return
	}
	page.GroupDetail = d
	page.Names = d.Usernames()
	s.render(w, r, http.StatusUnprocessableEntity, "group_detail.html", d.Group.Name, page, formError(err))
}

func groupPath(id int64) string {
	return groupsPath + strconv.FormatInt(id, 10) + "/"
}
