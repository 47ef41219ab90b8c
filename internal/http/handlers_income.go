package http

import (
	"net/http"

	applog "pktracker/internal/log"
	mwauth "pktracker/internal/middleware/auth"
)

func (s *Server) addIncome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := ParseIncomeForm(r.PostForm)

	i, err := form.Income(mwauth.UserID(ctx))
	if err == nil {
		i, err = s.backend.Store.CreateIncome(ctx, i)
	}
	if err != nil {
		if !isValidationError(err) {
			s.serverError(w, r, applog.OpCreate, err)
			return
		}
		s.renderExpenseListWithErrors(w, r, func(p *expenseListPage) { p.IncomeForm = form }, err)
		return
	}

	applog.FromContext(ctx).InfoContext(ctx, "Income recorded",
		applog.FieldIncomeID, i.ID,
		applog.FieldUserID, int64(i.UserID),
		applog.FieldAmount, i.Amount)
	http.Redirect(w, r, expensesPath, http.StatusSeeOther)
}

// handleDeleteIncome removes an owned income. Unknown or foreign ids
// redirect like a successful delete.
func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, expensesPath, http.StatusSeeOther)
		return
	}
	if err := s.backend.Store.DeleteIncome(r.Context(), mwauth.UserID(r.Context()), id); err != nil {
		s.redirectIfNotFound(w, r, expensesPath, applog.OpDelete, err)
		return
	}
	http.Redirect(w, r, expensesPath, http.StatusSeeOther)
}
