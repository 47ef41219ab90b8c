package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pktracker/internal/core"
	applog "pktracker/internal/log"
	"pktracker/internal/storage"
)

// ErrUnknownUser is returned when adding a member by a username that does
// not exist.
var ErrUnknownUser = errors.New("no user with that username")

// GroupStore is the storage subset used by GroupService.
type GroupStore interface {
	CreateGroup(ctx context.Context, g core.ExpenseGroup) (core.ExpenseGroup, error)
	GetGroupForMember(ctx context.Context, groupID int64, userID core.UserID) (core.ExpenseGroup, error)
	ListGroupsForUser(ctx context.Context, userID core.UserID) ([]core.ExpenseGroup, error)
	AddMember(ctx context.Context, groupID int64, userID core.UserID) error
	CreateGroupExpense(ctx context.Context, e core.GroupExpense) (core.GroupExpense, error)
	ListGroupExpenses(ctx context.Context, groupID int64) ([]core.GroupExpense, error)
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
}

// GroupDetail is everything the group page shows.
type GroupDetail struct {
	Group      core.ExpenseGroup
	Expenses   []core.GroupExpense
	Settlement core.Settlement
	Transfers  []core.Transfer
}

// Usernames maps member ids to usernames for display.
func (d GroupDetail) Usernames() map[core.UserID]string {
	out := make(map[core.UserID]string, len(d.Group.Members))
	for _, m := range d.Group.Members {
		out[m.ID] = m.Username
	}
	return out
}

// GroupService manages shared-expense groups. Every read and write is
// scoped to groups the acting user belongs to.
type GroupService struct {
	store  GroupStore
	logger *applog.Logger
}

func NewGroupService(store GroupStore, logger *applog.Logger) *GroupService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &GroupService{store: store, logger: logger.WithComponent(applog.ComponentGroup)}
}

// Create makes a new group with creator as its first member.
func (s *GroupService) Create(ctx context.Context, creator core.UserID, name, groupType string) (core.ExpenseGroup, error) {
	gt, err := core.ParseGroupType(groupType)
	if err != nil {
		return core.ExpenseGroup{}, err
	}
	g := core.ExpenseGroup{Name: strings.TrimSpace(name), Type: gt, CreatorID: creator}
	if err := g.Validate(); err != nil {
		return core.ExpenseGroup{}, err
	}
	return s.store.CreateGroup(ctx, g)
}

// List returns the groups userID is a member of.
func (s *GroupService) List(ctx context.Context, userID core.UserID) ([]core.ExpenseGroup, error) {
	return s.store.ListGroupsForUser(ctx, userID)
}

// Detail loads a group, its expenses and the equal-split settlement.
// storage.ErrNotFound is returned when userID is not a member.
func (s *GroupService) Detail(ctx context.Context, groupID int64, userID core.UserID) (GroupDetail, error) {
	g, err := s.store.GetGroupForMember(ctx, groupID, userID)
	if err != nil {
		return GroupDetail{}, err
	}
	expenses, err := s.store.ListGroupExpenses(ctx, groupID)
	if err != nil {
		return GroupDetail{}, err
	}
	settlement := core.Settle(expenses, g.MemberIDs())
	return GroupDetail{
		Group:      g,
		Expenses:   expenses,
		Settlement: settlement,
		Transfers:  core.Transfers(settlement),
	}, nil
}

// AddExpense records a shared expense paid by paidBy. The payer must be a
// member of the group.
func (s *GroupService) AddExpense(ctx context.Context, groupID int64, actor core.UserID, title, amount string, paidBy core.UserID) (core.GroupExpense, error) {
	g, err := s.store.GetGroupForMember(ctx, groupID, actor)
	if err != nil {
		return core.GroupExpense{}, err
	}
	amt, err := core.ParseDecimalAmount(amount)
	if err != nil {
		return core.GroupExpense{}, err
	}
	e := core.GroupExpense{GroupID: g.ID, Title: strings.TrimSpace(title), Amount: amt, PaidBy: paidBy}
	if err := e.Validate(g); err != nil {
		return core.GroupExpense{}, err
	}
	created, err := s.store.CreateGroupExpense(ctx, e)
	if err != nil {
		return core.GroupExpense{}, err
	}
	s.logger.InfoContext(ctx, "Group expense added",
		applog.FieldGroupID, g.ID,
		applog.FieldAmount, created.Amount.StringFixed(2),
		"paid_by", int64(paidBy))
	return created, nil
}

// AddMember adds the user named username to the group. Adding an existing
// member is a no-op.
func (s *GroupService) AddMember(ctx context.Context, groupID int64, actor core.UserID, username string) error {
	g, err := s.store.GetGroupForMember(ctx, groupID, actor)
	if err != nil {
		return err
	}
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUnknownUser
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if err := s.store.AddMember(ctx, g.ID, u.ID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Group member added", applog.FieldGroupID, g.ID, applog.FieldUsername, u.Username)
	return nil
}
