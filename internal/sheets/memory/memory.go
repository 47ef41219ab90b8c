// Package memory is an in-process LedgerWriter used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	ports "pktracker/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	events []ports.EventRow
	alerts []ports.AlertRow
	// Err, when set, is returned by every append.
	Err error
}

var _ ports.LedgerWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// AppendEvent stores the row and returns a synthetic row reference.
func (s *Store) AppendEvent(_ context.Context, row ports.EventRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	s.events = append(s.events, row)
	return fmt.Sprintf("mem:ledger:%d", len(s.events)), nil
}

// AppendAlert stores the row and returns a synthetic row reference.
func (s *Store) AppendAlert(_ context.Context, row ports.AlertRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	s.alerts = append(s.alerts, row)
	return fmt.Sprintf("mem:alerts:%d", len(s.alerts)), nil
}

// Events returns a copy of the appended ledger rows.
func (s *Store) Events() []ports.EventRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.EventRow(nil), s.events...)
}

// Alerts returns a copy of the appended alert rows.
func (s *Store) Alerts() []ports.AlertRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.AlertRow(nil), s.alerts...)
}
