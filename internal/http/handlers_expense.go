package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"pktracker/internal/core"
	applog "pktracker/internal/log"
	mwauth "pktracker/internal/middleware/auth"
	"pktracker/internal/storage"
)

type expenseListPage struct {
	ExpenseForm ExpenseForm
	IncomeForm  IncomeForm
	Categories  []core.Category

	Search   string
	Expenses []core.Expense
	Incomes  []core.Income

	TotalSpent  int64
	TotalIncome float64
	Savings     float64
	// IncomeUsage is TotalSpent as a share of TotalIncome.
	IncomeUsage core.Usage

	Budget      core.Budget
	MonthSpent  int64
	BudgetUsage core.Usage
}

// ExpenseFields adapts the page for the shared expense_fields partial.
func (p expenseListPage) ExpenseFields() editExpensePage {
	return editExpensePage{Form: p.ExpenseForm, Categories: p.Categories}
}

// loadExpenseList fetches expenses, incomes and the budget concurrently and
// derives the page totals. Totals follow the search filter; the budget
// usage always covers the whole current month.
func (s *Server) loadExpenseList(ctx context.Context, userID core.UserID, search string) (expenseListPage, error) {
	var (
		all, filtered []core.Expense
		incomes       []core.Income
		budget        core.Budget
	)
	store := s.backend.Store

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		all, err = store.ListExpenses(gctx, userID, storage.ExpenseFilter{Order: storage.NewestFirst})
		return err
	})
	if search != "" {
		g.Go(func() (err error) {
			filtered, err = store.ListExpenses(gctx, userID, storage.ExpenseFilter{Search: search, Order: storage.NewestFirst})
			return err
		})
	}
	g.Go(func() (err error) {
		incomes, err = store.ListIncomes(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		budget, err = store.GetOrCreateBudget(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return expenseListPage{}, err
	}

	if search == "" {
		filtered = all
	}
	now := s.now()
	p := expenseListPage{
		ExpenseForm: NewExpenseForm(now),
		IncomeForm:  NewIncomeForm(now),
		Categories:  core.Categories(),
		Search:      search,
		Expenses:    filtered,
		Incomes:     incomes,
		TotalSpent:  core.SumExpenses(filtered),
		TotalIncome: core.SumIncomes(incomes),
		Budget:      budget,
		MonthSpent:  core.MonthSpend(all, now),
	}
	p.Savings = p.TotalIncome - float64(p.TotalSpent)
	p.IncomeUsage = core.NewUsage(float64(p.TotalSpent), p.TotalIncome)
	p.BudgetUsage = core.NewUsage(float64(p.MonthSpent), float64(budget.Limit))
	return p, nil
}

func (s *Server) handleExpenseList(w http.ResponseWriter, r *http.Request) {
	search := sanitizeInput(r.URL.Query().Get("search"))
	page, err := s.loadExpenseList(r.Context(), mwauth.UserID(r.Context()), search)
	if err != nil {
		s.serverError(w, r, applog.OpList, err)
		return
	}
	s.render(w, r, http.StatusOK, "expense_list.html", "Expenses", page)
}

// handleExpenseListPost dispatches on the submit button: add_expense or
// add_income.
func (s *Server) handleExpenseListPost(w http.ResponseWriter, r *http.Request) {
	if !ParseFormOrFail(w, r) {
		return
	}
	switch {
	case r.PostForm.Has("add_expense"):
		s.addExpense(w, r)
	case r.PostForm.Has("add_income"):
		s.addIncome(w, r)
	default:
		http.Redirect(w, r, expensesPath, http.StatusSeeOther)
	}
}

func (s *Server) addExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := mwauth.UserID(ctx)
	form := ParseExpenseForm(r.PostForm)

	e, err := form.Expense(userID)
	if err == nil {
		_, err = s.backend.Expenses.Create(ctx, e)
	}
	if err != nil {
		if !isValidationError(err) {
			s.serverError(w, r, applog.OpCreate, err)
			return
		}
		s.renderExpenseListWithErrors(w, r, func(p *expenseListPage) { p.ExpenseForm = form }, err)
		return
	}
	http.Redirect(w, r, expensesPath, http.StatusSeeOther)
}

// renderExpenseListWithErrors re-renders the list page with 422 after
// applying keep, which restores the rejected form.
func (s *Server) renderExpenseListWithErrors(w http.ResponseWriter, r *http.Request, keep func(*expenseListPage), err error) {
	page, loadErr := s.loadExpenseList(r.Context(), mwauth.UserID(r.Context()), "")
	if loadErr != nil {
		s.serverError(w, r, applog.OpList, loadErr)
		return
	}
	keep(&page)
	s.render(w, r, http.StatusUnprocessableEntity, "expense_list.html", "Expenses", page, formError(err))
}

type editExpensePage struct {
	ID         int64
	Form       ExpenseForm
	Categories []core.Category
}

func (s *Server) handleEditExpenseForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, expensesPath, http.StatusSeeOther)
		return
	}
	e, err := s.backend.Store.GetExpense(r.Context(), mwauth.UserID(r.Context()), id)
	if err != nil {
		s.redirectIfNotFound(w, r, expensesPath, applog.OpRead, err)
		return
	}
	s.render(w, r, http.StatusOK, "edit_expense.html", "Edit expense",
		editExpensePage{ID: id, Form: ExpenseFormFrom(e), Categories: core.Categories()})
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, expensesPath, http.StatusSeeOther)
		return
	}
	if !ParseFormOrFail(w, r) {
		return
	}
	ctx := r.Context()
	form := ParseExpenseForm(r.PostForm)

	e, err := form.Expense(mwauth.UserID(ctx))
	if err == nil {
		e.ID = id
		err = s.backend.Expenses.Update(ctx, e)
	}
	if err != nil {
		if isValidationError(err) {
			s.render(w, r, http.StatusUnprocessableEntity, "edit_expense.html", "Edit expense",
				editExpensePage{ID: id, Form: form, Categories: core.Categories()}, formError(err))
			return
		}
		s.redirectIfNotFound(w, r, expensesPath, applog.OpUpdate, err)
		return
	}
	http.Redirect(w, r, expensesPath, http.StatusSeeOther)
}

func (s *Server) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, expensesPath, http.StatusSeeOther)
		return
	}
	e, err := s.backend.Store.GetExpense(r.Context(), mwauth.UserID(r.Context()), id)
	if err != nil {
		s.redirectIfNotFound(w, r, expensesPath, applog.OpRead, err)
		return
	}
	s.render(w, r, http.StatusOK, "delete_confirmation.html", "Delete expense", e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, expensesPath, http.StatusSeeOther)
		return
	}
	if err := s.backend.Expenses.Delete(r.Context(), mwauth.UserID(r.Context()), id); err != nil {
		s.redirectIfNotFound(w, r, expensesPath, applog.OpDelete, err)
		return
	}
	http.Redirect(w, r, expensesPath, http.StatusSeeOther)
}

type budgetPage struct {
	Limit string
}

func (s *Server) handleBudgetForm(w http.ResponseWriter, r *http.Request) {
	b, err := s.backend.Store.GetOrCreateBudget(r.Context(), mwauth.UserID(r.Context()))
	if err != nil {
		s.serverError(w, r, applog.OpRead, err)
		return
	}
	s.render(w, r, http.StatusOK, "set_budget.html", "Set budget", budgetPage{Limit: strconv.FormatInt(b.Limit, 10)})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if !ParseFormOrFail(w, r) {
		return
	}
	ctx := r.Context()
	raw := sanitizeInput(r.PostForm.Get("limit"))
	limit, err := core.ParseLimit(raw)
	if err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "set_budget.html", "Set budget", budgetPage{Limit: raw}, formError(err))
		return
	}
	b := core.Budget{UserID: mwauth.UserID(ctx), Limit: limit}
	if err := s.backend.Store.SetBudget(ctx, b); err != nil {
		s.serverError(w, r, applog.OpUpdate, err)
		return
	}
	applog.FromContext(ctx).InfoContext(ctx, "Budget updated", applog.FieldUserID, int64(b.UserID), "limit", b.Limit)
	http.Redirect(w, r, expensesPath, http.StatusSeeOther)
}

// redirectIfNotFound sends missing or foreign records back to target and
// treats anything else as a server error.
func (s *Server) redirectIfNotFound(w http.ResponseWriter, r *http.Request, target, op string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	s.serverError(w, r, op, err)
}
