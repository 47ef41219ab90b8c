// Package http provides HTTP server and handler implementations.
//
// This file implements the form types shared by the create and edit pages.
// Each form keeps the raw submitted strings so a rejected submission can be
// rendered back unchanged, and converts itself into a domain value.

package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pktracker/internal/core"
)

var errInvalidDate = errors.New("enter a valid date")

// ExpenseForm holds the submitted fields of the expense form.
type ExpenseForm struct {
	Title    string
	Amount   string
	Category string
	Date     string
}

// NewExpenseForm returns an empty form defaulting to Food and today.
func NewExpenseForm(now time.Time) ExpenseForm {
	return ExpenseForm{Category: string(core.Food), Date: core.DateOf(now).String()}
}

// ExpenseFormFrom pre-fills the form with an existing expense.
func ExpenseFormFrom(e core.Expense) ExpenseForm {
	return ExpenseForm{
		Title:    e.Title,
		Amount:   strconv.FormatInt(e.Amount, 10),
		Category: string(e.Category),
		Date:     e.Date.String(),
	}
}

// ParseExpenseForm reads the expense fields from form values.
func ParseExpenseForm(form url.Values) ExpenseForm {
	return ExpenseForm{
		Title:    sanitizeInput(form.Get("title")),
		Amount:   sanitizeInput(form.Get("amount")),
		Category: sanitizeInput(form.Get("category")),
		Date:     sanitizeInput(form.Get("date")),
	}
}

// Expense converts the form into a validated expense owned by userID.
func (f ExpenseForm) Expense(userID core.UserID) (core.Expense, error) {
	amount, err := core.ParseWholeAmount(f.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	category, err := core.ParseCategory(f.Category)
	if err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(f.Date)
	if err != nil {
		return core.Expense{}, errInvalidDate
	}
	e := core.Expense{UserID: userID, Title: f.Title, Amount: amount, Category: category, Date: date}
	return e, e.Validate()
}

// IncomeForm holds the submitted fields of the income form.
type IncomeForm struct {
	Source string
	Amount string
	Date   string
}

func NewIncomeForm(now time.Time) IncomeForm {
	return IncomeForm{Date: core.DateOf(now).String()}
}

func ParseIncomeForm(form url.Values) IncomeForm {
	return IncomeForm{
		Source: sanitizeInput(form.Get("source")),
		Amount: sanitizeInput(form.Get("amount")),
		Date:   sanitizeInput(form.Get("date")),
	}
}

// Income converts the form into a validated income owned by userID.
func (f IncomeForm) Income(userID core.UserID) (core.Income, error) {
	amount, err := core.ParseFloatAmount(f.Amount)
	if err != nil {
		return core.Income{}, err
	}
	date, err := core.ParseDate(f.Date)
	if err != nil {
		return core.Income{}, errInvalidDate
	}
	i := core.Income{UserID: userID, Source: f.Source, Amount: amount, Date: date}
	return i, i.Validate()
}

// ParseFormOrFail parses the request form and writes a 400 on failure.
// It reports whether the handler may continue.
func ParseFormOrFail(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return false
	}
	return true
}
