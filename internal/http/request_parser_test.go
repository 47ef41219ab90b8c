package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"pktracker/internal/core"
)

func TestExpenseForm(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		want    core.Expense
		wantErr error
	}{
		{
			name: "valid",
			form: url.Values{"title": {"  Lunch "}, "amount": {"250"}, "category": {"Food"}, "date": {"2024-03-01"}},
			want: core.Expense{UserID: 7, Title: "Lunch", Amount: 250, Category: core.Food, Date: core.NewDate(2024, 3, 1)},
		},
		{
			name:    "fractional amount",
			form:    url.Values{"title": {"Lunch"}, "amount": {"2.50"}, "category": {"Food"}, "date": {"2024-03-01"}},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "unknown category",
			form:    url.Values{"title": {"Lunch"}, "amount": {"2"}, "category": {"Pets"}, "date": {"2024-03-01"}},
			wantErr: core.ErrInvalidCategory,
		},
		{
			name:    "bad date",
			form:    url.Values{"title": {"Lunch"}, "amount": {"2"}, "category": {"Food"}, "date": {"01/03/2024"}},
			wantErr: errInvalidDate,
		},
		{
			name:    "empty title",
			form:    url.Values{"title": {"   "}, "amount": {"2"}, "category": {"Food"}, "date": {"2024-03-01"}},
			wantErr: core.ErrEmptyTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpenseForm(tt.form).Expense(7)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expense() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expense() error = %v", err)
			}
			if got.Title != tt.want.Title || got.Amount != tt.want.Amount || got.Category != tt.want.Category ||
				!got.Date.Equal(tt.want.Date.Time) || got.UserID != tt.want.UserID {
				t.Errorf("Expense() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExpenseFormRoundTrip(t *testing.T) {
	e := core.Expense{Title: "Rent", Amount: 12000, Category: core.Bills, Date: core.NewDate(2024, 1, 5)}
	f := ExpenseFormFrom(e)
	if f.Amount != "12000" || f.Date != "2024-01-05" || f.Category != "Bills" {
		t.Errorf("ExpenseFormFrom() = %+v", f)
	}

	blank := NewExpenseForm(time.Date(2024, 6, 9, 22, 0, 0, 0, time.UTC))
	if blank.Category != "Food" || blank.Date != "2024-06-09" {
		t.Errorf("NewExpenseForm() = %+v", blank)
	}
}

func TestIncomeForm(t *testing.T) {
	got, err := ParseIncomeForm(url.Values{"source": {"Salary"}, "amount": {"45000.50"}, "date": {"2024-03-01"}}).Income(3)
	if err != nil {
		t.Fatalf("Income() error = %v", err)
	}
	if got.Source != "Salary" || got.Amount != 45000.50 || got.UserID != 3 {
		t.Errorf("Income() = %+v", got)
	}

	if _, err := ParseIncomeForm(url.Values{"source": {""}, "amount": {"1"}, "date": {"2024-03-01"}}).Income(3); !errors.Is(err, core.ErrEmptySource) {
		t.Errorf("empty source error = %v", err)
	}
	if _, err := ParseIncomeForm(url.Values{"source": {"x"}, "amount": {"-4"}, "date": {"2024-03-01"}}).Income(3); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative amount error = %v", err)
	}
}

func TestParseFormOrFail(t *testing.T) {
	body := "field=value"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	if !ParseFormOrFail(rr, req) {
		t.Fatalf("expected valid form to parse, got %d", rr.Code)
	}
	if req.Form.Get("field") != "value" {
		t.Error("Form was not parsed correctly")
	}

	bad := httptest.NewRequest(http.MethodPost, "/test?%zz", nil)
	rr = httptest.NewRecorder()
	if ParseFormOrFail(rr, bad) || rr.Code != http.StatusBadRequest {
		t.Errorf("malformed query should fail with 400, got %d", rr.Code)
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/groups/3/", "/groups/3/"},
		{"", "/expenses/"},
		{"https://evil.example/", "/expenses/"},
		{"//evil.example/", "/expenses/"},
		{"/\\evil.example", "/expenses/"},
		{"groups/", "/expenses/"},
	}
	for _, tt := range tests {
		if got := safeNext(tt.next, "/expenses/"); got != tt.want {
			t.Errorf("safeNext(%q) = %q, want %q", tt.next, got, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\x00b\tc  "); got != "ab\tc" {
		t.Errorf("sanitizeInput() = %q", got)
	}
}
