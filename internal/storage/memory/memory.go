// Package memory provides an in-process implementation of storage.Store used
// for development and tests.
//
// Transactions are serialized by a single-slot semaphore. A transaction works
// on a private copy of the expense and split tables and swaps it in on
// Commit, so readers only ever see committed state.
package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/namansharma3007/Equi-share/internal/models"
	"github.com/namansharma3007/Equi-share/internal/storage"
)

var _ storage.Store = (*Store)(nil)

var errTxDone = errors.New("memory: transaction already finished")

type tables struct {
	expenses map[string]models.Expense
	splits   map[string]models.Split
}

func (t tables) clone() tables {
	return tables{expenses: maps.Clone(t.expenses), splits: maps.Clone(t.splits)}
}

type group struct {
	info    models.Group
	members map[string]struct{}
}

// Store is guarded by an RWMutex for concurrent reads; writers also hold
// the transaction slot.
type Store struct {
	mu     sync.RWMutex
	data   tables
	groups map[string]*group
	users  map[string]models.User
	slot   chan struct{}
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		data: tables{
			expenses: make(map[string]models.Expense),
			splits:   make(map[string]models.Split),
		},
		groups: make(map[string]*group),
		users:  make(map[string]models.User),
		slot:   make(chan struct{}, 1),
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// BeginTx waits for the transaction slot or for ctx to end.
func (s *Store) BeginTx(ctx context.Context) (storage.Txn, error) {
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to begin transaction: %w", ctx.Err())
	}
	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()
	return &txn{store: s, work: work}, nil
}

// ListExpensesForUser returns committed expenses the user paid or owes on.
func (s *Store) ListExpensesForUser(_ context.Context, userID string) ([]*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	involved := make(map[string]struct{})
	for _, e := range s.data.expenses {
		if e.PaidByUserID == userID {
			involved[e.ID] = struct{}{}
		}
	}
	for _, sp := range s.data.splits {
		if sp.UserID == userID {
			involved[sp.ExpenseID] = struct{}{}
		}
	}
	return s.collect(func(e models.Expense) bool {
		_, ok := involved[e.ID]
		return ok
	}), nil
}

// ListExpensesByGroup returns a group's committed expenses, newest first.
func (s *Store) ListExpensesByGroup(_ context.Context, groupID string) ([]*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(e models.Expense) bool { return e.GroupID == groupID }), nil
}

// collect must be called with mu held.
func (s *Store) collect(keep func(models.Expense) bool) []*models.Expense {
	var out []*models.Expense
	for _, e := range s.data.expenses {
		if !keep(e) {
			continue
		}
		e.Splits = splitsOf(s.data.splits, e.ID, false)
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func splitsOf(splits map[string]models.Split, expenseID string, unclearedOnly bool) []models.Split {
	var out []models.Split
	for _, sp := range splits {
		if sp.ExpenseID != expenseID || (unclearedOnly && sp.Cleared) {
			continue
		}
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// txn stages writes in work until Commit.
type txn struct {
	store *Store
	work  tables
	done  bool
}

func (t *txn) check(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	return ctx.Err()
}

func (t *txn) InsertExpense(ctx context.Context, e *models.Expense) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	if _, ok := t.work.expenses[e.ID]; ok {
		return fmt.Errorf("expense %s: %w", e.ID, storage.ErrConflict)
	}
	if _, ok := t.store.groupInfo(e.GroupID); !ok {
		return fmt.Errorf("group %s: %w", e.GroupID, storage.ErrNotFound)
	}
	stored := *e
	stored.Splits = nil
	t.work.expenses[e.ID] = stored
	return nil
}

func (t *txn) InsertSplits(ctx context.Context, splits []models.Split) error {
	for _, sp := range splits {
		if err := t.check(ctx); err != nil {
			return err
		}
		if _, ok := t.work.expenses[sp.ExpenseID]; !ok {
			return fmt.Errorf("expense %s: %w", sp.ExpenseID, storage.ErrNotFound)
		}
		if _, ok := t.work.splits[sp.ID]; ok {
			return fmt.Errorf("split %s: %w", sp.ID, storage.ErrConflict)
		}
		for _, existing := range t.work.splits {
			if existing.ExpenseID == sp.ExpenseID && existing.UserID == sp.UserID {
				return fmt.Errorf("split for %s on expense %s: %w", sp.UserID, sp.ExpenseID, storage.ErrConflict)
			}
		}
		t.work.splits[sp.ID] = sp
	}
	return nil
}

// GetExpense needs no lock of its own: the transaction slot is exclusive.
func (t *txn) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	if err := t.check(ctx); err != nil {
		return nil, err
	}
	e, ok := t.work.expenses[expenseID]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return &e, nil
}

func (t *txn) GetSplit(ctx context.Context, splitID string) (*models.Split, error) {
	if err := t.check(ctx); err != nil {
		return nil, err
	}
	sp, ok := t.work.splits[splitID]
	if !ok {
		return nil, fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
	}
	return &sp, nil
}

func (t *txn) ListSplits(ctx context.Context, expenseID string) ([]models.Split, error) {
	if err := t.check(ctx); err != nil {
		return nil, err
	}
	return splitsOf(t.work.splits, expenseID, false), nil
}

func (t *txn) ListUnclearedSplits(ctx context.Context, expenseID string) ([]models.Split, error) {
	if err := t.check(ctx); err != nil {
		return nil, err
	}
	return splitsOf(t.work.splits, expenseID, true), nil
}

func (t *txn) UpdateSplitCleared(ctx context.Context, splitID string) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	sp, ok := t.work.splits[splitID]
	if !ok {
		return fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
	}
	sp.Cleared = true
	t.work.splits[splitID] = sp
	return nil
}

func (t *txn) UpdateExpenseCleared(ctx context.Context, expenseID string) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	e, ok := t.work.expenses[expenseID]
	if !ok {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	e.Cleared = true
	t.work.expenses[expenseID] = e
	return nil
}

func (t *txn) DeleteExpenseCascade(ctx context.Context, expenseID string) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	if _, ok := t.work.expenses[expenseID]; !ok {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	delete(t.work.expenses, expenseID)
	for id, sp := range t.work.splits {
		if sp.ExpenseID == expenseID {
			delete(t.work.splits, id)
		}
	}
	return nil
}

func (t *txn) Commit(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	t.done = true
	defer t.release()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	t.store.mu.Lock()
	t.store.data = t.work
	t.store.mu.Unlock()
	return nil
}

// Rollback after Commit is a no-op.
func (t *txn) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.release()
	return nil
}

func (t *txn) release() {
	t.work = tables{}
	<-t.store.slot
}

// --- Groups ---

func (s *Store) groupInfo(groupID string) (models.Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok {
		return models.Group{}, false
	}
	return g.info, true
}

// CreateGroup stores the group and its initial members.
func (s *Store) CreateGroup(_ context.Context, g *models.Group) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[g.ID]; ok {
		return fmt.Errorf("group %s: %w", g.ID, storage.ErrConflict)
	}
	rec := &group{info: *g, members: make(map[string]struct{}, len(g.Members))}
	rec.info.Members = nil
	for _, m := range g.Members {
		rec.members[m] = struct{}{}
	}
	s.groups[g.ID] = rec
	return nil
}

func (s *Store) AddGroupMember(_ context.Context, groupID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if _, ok := g.members[userID]; ok {
		return fmt.Errorf("user %s already in group %s: %w", userID, groupID, storage.ErrConflict)
	}
	g.members[userID] = struct{}{}
	return nil
}

func (s *Store) ListGroupMembers(_ context.Context, groupID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil, nil
	}
	members := make([]string, 0, len(g.members))
	for m := range g.members {
		members = append(members, m)
	}
	sort.Strings(members)
	return members, nil
}

func (s *Store) GroupExists(_ context.Context, groupID string) (bool, error) {
	_, ok := s.groupInfo(groupID)
	return ok, nil
}

func (s *Store) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok {
		return false, nil
	}
	_, member := g.members[userID]
	return member, nil
}

func (s *Store) GroupAdmin(_ context.Context, groupID string) (string, error) {
	info, ok := s.groupInfo(groupID)
	if !ok {
		return "", fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return info.AdminUserID, nil
}

// --- Users ---

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("failed to create user: %w", storage.ErrConflict)
		}
	}
	if _, ok := s.users[u.ID]; ok {
		return fmt.Errorf("failed to create user: %w", storage.ErrConflict)
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
