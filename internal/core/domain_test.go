package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2025-03-09 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2025-03-09" {
		t.Fatalf("expected 2025-03-09, got %s", d)
	}
	if _, err := ParseDate("09/03/2025"); err == nil {
		t.Fatalf("expected error for non ISO date")
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		if err != nil || got != c {
			t.Fatalf("%q expected ok, got %q (err=%v)", c, got, err)
		}
	}
	for _, in := range []string{"", "food", "Groceries", "EMI"} {
		if _, err := ParseCategory(in); !errors.Is(err, ErrInvalidCategory) {
			t.Fatalf("%q expected ErrInvalidCategory, got %v", in, err)
		}
	}
}

func TestParseGroupType(t *testing.T) {
	if g, err := ParseGroupType("Roommates"); err != nil || g != Roommates {
		t.Fatalf("expected Roommates, got %q (err=%v)", g, err)
	}
	if _, err := ParseGroupType("Club"); !errors.Is(err, ErrInvalidGroup) {
		t.Fatalf("expected ErrInvalidGroup, got %v", err)
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{Title: "Lunch", Amount: 250, Category: Food, Date: NewDate(2025, 1, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		e   Expense
		err error
	}{
		{Expense{Title: "", Amount: 1, Category: Food, Date: NewDate(2025, 1, 1)}, ErrEmptyTitle},
		{Expense{Title: "   ", Amount: 1, Category: Food, Date: NewDate(2025, 1, 1)}, ErrEmptyTitle},
		{Expense{Title: strings.Repeat("x", 101), Amount: 1, Category: Food, Date: NewDate(2025, 1, 1)}, ErrTitleTooLong},
		{Expense{Title: "a", Amount: 0, Category: Food, Date: NewDate(2025, 1, 1)}, ErrInvalidAmount},
		{Expense{Title: "a", Amount: -5, Category: Food, Date: NewDate(2025, 1, 1)}, ErrInvalidAmount},
		{Expense{Title: "a", Amount: 1, Category: "Pets", Date: NewDate(2025, 1, 1)}, ErrInvalidCategory},
	}
	for i, tc := range bads {
		if err := tc.e.Validate(); !errors.Is(err, tc.err) {
			t.Fatalf("case %d expected %v, got %v", i, tc.err, err)
		}
	}
	if err := (Expense{Title: "a", Amount: 1, Category: Food}).Validate(); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestIncomeValidate(t *testing.T) {
	if err := (Income{Source: "Salary", Amount: 1000.5, Date: NewDate(2025, 1, 1)}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Income{Source: "", Amount: 1, Date: NewDate(2025, 1, 1)}).Validate(); !errors.Is(err, ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource, got %v", err)
	}
	if err := (Income{Source: "x", Amount: 0, Date: NewDate(2025, 1, 1)}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestBudgetValidate(t *testing.T) {
	if err := (Budget{Limit: 0}).Validate(); err != nil {
		t.Fatalf("zero limit must be valid, got %v", err)
	}
	if err := (Budget{Limit: -1}).Validate(); !errors.Is(err, ErrNegativeLimit) {
		t.Fatalf("expected ErrNegativeLimit, got %v", err)
	}
}

func TestGroupExpenseValidate(t *testing.T) {
	g := ExpenseGroup{
		Name:    "Flat 4B",
		Type:    Roommates,
		Members: []User{{ID: 1, Username: "asha"}, {ID: 2, Username: "ravi"}},
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("group expected ok, got %v", err)
	}

	ok := GroupExpense{Title: "Rent", Amount: decimal.RequireFromString("1200.50"), PaidBy: 2}
	if err := ok.Validate(g); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	outsider := ok
	outsider.PaidBy = 3
	if err := outsider.Validate(g); !errors.Is(err, ErrPayerNotMember) {
		t.Fatalf("expected ErrPayerNotMember, got %v", err)
	}

	zero := ok
	zero.Amount = decimal.Zero
	if err := zero.Validate(g); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestGroupValidate(t *testing.T) {
	if err := (ExpenseGroup{Name: " ", Type: Family}).Validate(); !errors.Is(err, ErrEmptyGroupName) {
		t.Fatalf("expected ErrEmptyGroupName, got %v", err)
	}
	if err := (ExpenseGroup{Name: "x", Type: "Club"}).Validate(); !errors.Is(err, ErrInvalidGroup) {
		t.Fatalf("expected ErrInvalidGroup, got %v", err)
	}
}
