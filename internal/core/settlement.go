package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MemberBalance is one member's position after an equal split.
// A positive Balance means the group owes the member.
type MemberBalance struct {
	UserID  UserID
	Paid    decimal.Decimal
	Balance decimal.Decimal
}

type Settlement struct {
	Total    decimal.Decimal
	Share    decimal.Decimal
	Balances []MemberBalance
}

// Transfer is a suggested payment from a debtor to a creditor.
type Transfer struct {
	From   UserID
	To     UserID
	Amount decimal.Decimal
}

// Settle splits the total of expenses equally across members and returns
// each member's paid amount and balance in the order members were given.
// With no members the share equals the total and no balances are returned.
func Settle(expenses []GroupExpense, members []UserID) Settlement {
	total := decimal.Zero
	paid := make(map[UserID]decimal.Decimal, len(members))
	for _, e := range expenses {
		total = total.Add(e.Amount)
		paid[e.PaidBy] = paid[e.PaidBy].Add(e.Amount)
	}

	s := Settlement{Total: total, Share: total}
	if len(members) == 0 {
		return s
	}
	// Unrounded so balances sum to zero; round only when displaying.
	s.Share = total.Div(decimal.NewFromInt(int64(len(members))))

	s.Balances = make([]MemberBalance, 0, len(members))
	for _, m := range members {
		p := paid[m]
		s.Balances = append(s.Balances, MemberBalance{
			UserID:  m,
			Paid:    p,
			Balance: p.Sub(s.Share),
		})
	}
	return s
}

var settleEpsilon = decimal.New(1, -2)

// Transfers turns balances into a short list of payments, repeatedly
// matching the largest debtor with the largest creditor. Amounts are
// rounded to two places and remainders under 0.01 are dropped.
func Transfers(s Settlement) []Transfer {
	type entry struct {
		id  UserID
		amt decimal.Decimal
	}
	var debtors, creditors []entry
	for _, b := range s.Balances {
		switch {
		case b.Balance.GreaterThan(settleEpsilon):
			creditors = append(creditors, entry{b.UserID, b.Balance})
		case b.Balance.LessThan(settleEpsilon.Neg()):
			debtors = append(debtors, entry{b.UserID, b.Balance.Neg()})
		}
	}
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].amt.GreaterThan(debtors[j].amt) })
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].amt.GreaterThan(creditors[j].amt) })

	var out []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amt := decimal.Min(debtors[i].amt, creditors[j].amt)
		if rounded := amt.Round(2); rounded.GreaterThanOrEqual(settleEpsilon) {
			out = append(out, Transfer{From: debtors[i].id, To: creditors[j].id, Amount: rounded})
		}
		debtors[i].amt = debtors[i].amt.Sub(amt)
		creditors[j].amt = creditors[j].amt.Sub(amt)
		if debtors[i].amt.LessThan(settleEpsilon) {
			i++
		}
		if creditors[j].amt.LessThan(settleEpsilon) {
			j++
		}
	}
	return out
}
