package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Food          Category = "Food"
	Travel        Category = "Travel"
	Entertainment Category = "Entertainment"
	EMILoans      Category = "EMI/Loans"
	Shopping      Category = "Shopping"
	Bills         Category = "Bills"
	Investment    Category = "Investment"
	Others        Category = "Others"
)

const (
	Roommates GroupType = "Roommates"
	Couples   GroupType = "Couples"
	Family    GroupType = "Family"
	Office    GroupType = "Office"
	Friends   GroupType = "Friends"
)

const (
	MaxTitleLength    = 100
	MaxUsernameLength = 150
	MaxGroupName      = 100
)

type (
	UserID int64

	// Category is the closed set of expense categories.
	Category string

	// GroupType is the closed set of shared-expense group kinds.
	GroupType string

	Date struct {
		time.Time
	}

	User struct {
		ID           UserID
		Username     string
		PasswordHash string
		CreatedAt    time.Time
	}

	Expense struct {
		ID       int64
		UserID   UserID
		Title    string
		Amount   int64
		Category Category
		Date     Date
	}

	Income struct {
		ID     int64
		UserID UserID
		Source string
		Amount float64
		Date   Date
	}

	Budget struct {
		UserID UserID
		Limit  int64
	}

	ExpenseGroup struct {
		ID        int64
		Name      string
		Type      GroupType
		CreatorID UserID
		CreatedAt time.Time
		Members   []User
	}

	GroupExpense struct {
		ID      int64
		GroupID int64
		Title   string
		Amount  decimal.Decimal
		PaidBy  UserID
		Date    Date
	}

	Blog struct {
		ID        int64
		Category  string
		Title     string
		Content   string
		ImageURL  string
		CreatedAt time.Time
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyTitle       = errors.New("empty title")
	ErrTitleTooLong     = errors.New("title too long (max 100 characters)")
	ErrEmptySource      = errors.New("empty income source")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidGroup     = errors.New("invalid group type")
	ErrEmptyGroupName   = errors.New("empty group name")
	ErrGroupNameTooLong = errors.New("group name too long (max 100 characters)")
	ErrNegativeLimit    = errors.New("budget limit cannot be negative")
	ErrPayerNotMember   = errors.New("payer must be a member of the group")
	ErrEmptyUsername    = errors.New("empty username")
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{Food, Travel, Entertainment, EMILoans, Shopping, Bills, Investment, Others}
}

// GroupTypes lists every group type in display order.
func GroupTypes() []GroupType {
	return []GroupType{Roommates, Couples, Family, Office, Friends}
}

func (c Category) String() string { return string(c) }

func (c Category) Valid() bool {
	for _, v := range Categories() {
		if c == v {
			return true
		}
	}
	return false
}

// ParseCategory maps a form value onto the closed category set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

func (g GroupType) String() string { return string(g) }

func (g GroupType) Valid() bool {
	for _, v := range GroupTypes() {
		if g == v {
			return true
		}
	}
	return false
}

func ParseGroupType(s string) (GroupType, error) {
	g := GroupType(strings.TrimSpace(s))
	if !g.Valid() {
		return "", ErrInvalidGroup
	}
	return g, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

const DateLayout = "2006-01-02"

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func (e Expense) Validate() error {
	if err := validateTitle(e.Title); err != nil {
		return err
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	return e.Date.Validate()
}

func (i Income) Validate() error {
	if strings.TrimSpace(i.Source) == "" {
		return ErrEmptySource
	}
	if utf8.RuneCountInString(i.Source) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if i.Amount <= 0 {
		return ErrInvalidAmount
	}
	return i.Date.Validate()
}

func (b Budget) Validate() error {
	if b.Limit < 0 {
		return ErrNegativeLimit
	}
	return nil
}

func (g ExpenseGroup) Validate() error {
	name := strings.TrimSpace(g.Name)
	if name == "" {
		return ErrEmptyGroupName
	}
	if utf8.RuneCountInString(name) > MaxGroupName {
		return ErrGroupNameTooLong
	}
	if !g.Type.Valid() {
		return ErrInvalidGroup
	}
	return nil
}

// IsMember reports whether id belongs to the group's member set.
func (g ExpenseGroup) IsMember(id UserID) bool {
	for _, m := range g.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// MemberIDs returns the member ids in the group's member order.
func (g ExpenseGroup) MemberIDs() []UserID {
	ids := make([]UserID, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// Validate checks the expense against the group it is being added to.
func (e GroupExpense) Validate(g ExpenseGroup) error {
	if err := validateTitle(e.Title); err != nil {
		return err
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !g.IsMember(e.PaidBy) {
		return ErrPayerNotMember
	}
	return nil
}
