package core

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSettleEqualSplit(t *testing.T) {
	expenses := []GroupExpense{
		{Title: "Groceries", Amount: dec("100"), PaidBy: 1},
		{Title: "Internet", Amount: dec("50"), PaidBy: 2},
	}
	s := Settle(expenses, []UserID{1, 2})

	if !s.Total.Equal(dec("150")) || !s.Share.Equal(dec("75")) {
		t.Fatalf("expected total 150 share 75, got %s %s", s.Total, s.Share)
	}
	want := []struct {
		id      UserID
		paid    string
		balance string
	}{
		{1, "100", "25"},
		{2, "50", "-25"},
	}
	if len(s.Balances) != len(want) {
		t.Fatalf("expected %d balances, got %d", len(want), len(s.Balances))
	}
	for i, w := range want {
		b := s.Balances[i]
		if b.UserID != w.id || !b.Paid.Equal(dec(w.paid)) || !b.Balance.Equal(dec(w.balance)) {
			t.Fatalf("member %d: expected paid %s balance %s, got %s %s", w.id, w.paid, w.balance, b.Paid, b.Balance)
		}
	}
}

func TestSettleZeroMembers(t *testing.T) {
	s := Settle([]GroupExpense{{Amount: dec("80"), PaidBy: 1}}, nil)
	if len(s.Balances) != 0 {
		t.Fatalf("expected no balances, got %d", len(s.Balances))
	}
	if !s.Share.Equal(dec("80")) {
		t.Fatalf("expected share to equal total, got %s", s.Share)
	}

	empty := Settle(nil, nil)
	if !empty.Total.IsZero() || !empty.Share.IsZero() {
		t.Fatalf("expected zero totals, got %s %s", empty.Total, empty.Share)
	}
}

func TestSettleMemberWithoutExpenses(t *testing.T) {
	s := Settle([]GroupExpense{{Amount: dec("90"), PaidBy: 1}}, []UserID{1, 2, 3})
	if !s.Balances[2].Paid.IsZero() {
		t.Fatalf("expected zero paid, got %s", s.Balances[2].Paid)
	}
	if !s.Balances[2].Balance.Equal(dec("-30")) {
		t.Fatalf("expected -30, got %s", s.Balances[2].Balance)
	}
	sum := decimal.Zero
	for _, b := range s.Balances {
		sum = sum.Add(b.Balance)
	}
	if !sum.IsZero() {
		t.Fatalf("balances must sum to zero, got %s", sum)
	}
}

func TestTransfers(t *testing.T) {
	s := Settle([]GroupExpense{{Amount: dec("100"), PaidBy: 1}}, []UserID{1, 2, 3})
	got := Transfers(s)
	if len(got) != 2 {
		t.Fatalf("expected 2 transfers, got %d: %+v", len(got), got)
	}
	for _, tr := range got {
		if tr.To != 1 || !tr.Amount.Equal(dec("33.33")) {
			t.Fatalf("unexpected transfer %+v", tr)
		}
	}

	settled := Settle([]GroupExpense{{Amount: dec("10"), PaidBy: 1}, {Amount: dec("10"), PaidBy: 2}}, []UserID{1, 2})
	if tr := Transfers(settled); len(tr) != 0 {
		t.Fatalf("expected no transfers for a settled group, got %+v", tr)
	}
}

func TestForecast(t *testing.T) {
	now := time.Date(2025, 6, 30, 18, 0, 0, 0, time.UTC)
	expenses := []Expense{
		{Amount: 300, Category: Food, Date: NewDate(2025, 6, 1)},        // first day of window
		{Amount: 150, Category: Bills, Date: NewDate(2025, 6, 30)},      // today
		{Amount: 999, Category: Investment, Date: NewDate(2025, 6, 15)}, // excluded category
		{Amount: 500, Category: Food, Date: NewDate(2025, 5, 31)},       // outside window
	}
	r := Forecast(expenses, 2000, now)

	if r.TotalSpent != 450 {
		t.Fatalf("expected total 450, got %d", r.TotalSpent)
	}
	if r.DailyAverage != 15 {
		t.Fatalf("expected daily average 15, got %v", r.DailyAverage)
	}
	if r.PredictedMonthly != float64(r.TotalSpent) {
		t.Fatalf("predicted monthly must equal total spent, got %v", r.PredictedMonthly)
	}
	if r.PotentialSavings != 1550 {
		t.Fatalf("expected savings 1550, got %v", r.PotentialSavings)
	}
	if !reflect.DeepEqual(r.Breakdown.Categories, []Category{Food, Bills}) {
		t.Fatalf("unexpected breakdown %+v", r.Breakdown)
	}
	if r.WindowStart.String() != "2025-06-01" || r.WindowEnd.String() != "2025-06-30" {
		t.Fatalf("unexpected window %s..%s", r.WindowStart, r.WindowEnd)
	}
}

func TestAggregateByCategoryFirstSeenOrder(t *testing.T) {
	expenses := []Expense{
		{Amount: 10, Category: Travel},
		{Amount: 5, Category: Food},
		{Amount: 7, Category: Travel},
		{Amount: 3, Category: Others},
	}
	first := AggregateByCategory(expenses)
	second := AggregateByCategory(expenses)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation must be stable: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(first.Labels(), []string{"Travel", "Food", "Others"}) {
		t.Fatalf("unexpected labels %v", first.Labels())
	}
	if !reflect.DeepEqual(first.Amounts, []int64{17, 5, 3}) {
		t.Fatalf("unexpected amounts %v", first.Amounts)
	}
	if first.Total() != 25 {
		t.Fatalf("expected total 25, got %d", first.Total())
	}
}

func TestNewUsage(t *testing.T) {
	cases := []struct {
		name       string
		spent, den float64
		real, disp float64
		over       bool
	}{
		{"no expenses", 0, 5000, 0, 0, false},
		{"half", 2500, 5000, 50, 50, false},
		{"exactly full", 5000, 5000, 100, 100, false},
		{"over", 7500, 5000, 150, 100, true},
		{"zero denominator", 100, 0, 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := NewUsage(tc.spent, tc.den)
			if u.Real != tc.real || u.Display != tc.disp || u.Over != tc.over {
				t.Fatalf("expected %v/%v/%v, got %+v", tc.real, tc.disp, tc.over, u)
			}
		})
	}
	if got := NewUsage(7500, 5000).OverBy(); got != 50 {
		t.Fatalf("expected over by 50, got %v", got)
	}
}

func TestMonthSpend(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	expenses := []Expense{
		{Amount: 100, Date: NewDate(2025, 6, 1)},
		{Amount: 50, Date: NewDate(2025, 6, 30)},
		{Amount: 70, Date: NewDate(2025, 5, 31)},
		{Amount: 20, Date: NewDate(2024, 6, 10)},
	}
	if got := MonthSpend(expenses, now); got != 150 {
		t.Fatalf("expected 150, got %d", got)
	}
}

func TestCalendarEvents(t *testing.T) {
	events := CalendarEvents(
		[]Expense{{ID: 7, Title: "Taxi", Amount: 120, Date: NewDate(2025, 2, 3)}},
		[]Income{
			{ID: 3, Source: "Salary", Amount: 5000.5, Date: NewDate(2025, 2, 1)},
			{ID: 4, Source: "Bonus", Amount: 500, Date: NewDate(2025, 2, 2)},
		},
	)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	e := events[0]
	if e.Type != "expense" || e.Title != "🔻 Taxi: ₹120" || e.Start != "2025-02-03" || e.BackgroundColor != "#f64f59" {
		t.Fatalf("unexpected expense event %+v", e)
	}
	i := events[1]
	if i.Type != "income" || i.Title != "🔹 Salary: ₹5000.5" || i.BorderColor != "#28a745" || i.TextColor != "#fff" {
		t.Fatalf("unexpected income event %+v", i)
	}
	if got := events[2].Title; got != "🔹 Bonus: ₹500.0" {
		t.Errorf("whole income title = %q, want %q", got, "🔹 Bonus: ₹500.0")
	}
}

func TestWriteExpensesCSV(t *testing.T) {
	expenses := []Expense{
		{ID: 1, Title: "Coffee, large", Category: Food, Amount: 90, Date: NewDate(2025, 1, 2)},
		{ID: 2, Title: "Metro", Category: Travel, Amount: 40, Date: NewDate(2025, 1, 3)},
	}
	var buf bytes.Buffer
	if err := WriteExpensesCSV(&buf, expenses); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"Title,Category,Amount,Date",
		`"Coffee, large",Food,90,2025-01-02`,
		"Metro,Travel,40,2025-01-03",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}
