// Package postgres provides a pgx-backed implementation of storage.Store.
//
// The schema is applied on Open. Amounts are stored as BIGINT minor units.
// Expenses read inside a transaction are locked with SELECT ... FOR UPDATE,
// which serializes concurrent clearances of the same expense.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/namansharma3007/Equi-share/internal/models"
	"github.com/namansharma3007/Equi-share/internal/money"
	"github.com/namansharma3007/Equi-share/internal/storage"
)

var _ storage.Store = (*Store)(nil)

const schema = `
create table if not exists users (
    id text primary key,
    email text not null unique,
    display_name text not null,
    password_hash text not null,
    created_at bigint not null,
    updated_at bigint not null
);

create table if not exists groups (
    id text primary key,
    name text not null,
    description text not null default '',
    admin_user_id text not null,
    created_at bigint not null
);

create table if not exists group_members (
    group_id text not null references groups(id) on delete cascade,
    user_id text not null,
    primary key (group_id, user_id)
);

create table if not exists expenses (
    id text primary key,
    group_id text not null references groups(id) on delete cascade,
    name text not null,
    amount_minor bigint not null check (amount_minor > 0),
    paid_by_user_id text not null,
    creator_user_id text not null,
    cleared boolean not null default false,
    created_at timestamptz not null
);

create table if not exists splits (
    id text primary key,
    expense_id text not null references expenses(id) on delete cascade,
    group_id text not null,
    user_id text not null,
    amount_owed_minor bigint not null check (amount_owed_minor >= 0),
    cleared boolean not null default false,
    unique (expense_id, user_id)
);

create index if not exists idx_expenses_group_id on expenses(group_id);
create index if not exists idx_expenses_paid_by on expenses(paid_by_user_id);
create index if not exists idx_splits_user_id on splits(user_id);
`

// Store holds a pgx connection pool. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string and
// applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- Expenses ---

func (s *Store) BeginTx(ctx context.Context) (storage.Txn, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &txn{tx: tx}, nil
}

const joinedExpenseColumns = `e.id, e.group_id, e.name, e.amount_minor, e.paid_by_user_id, e.creator_user_id, e.cleared, e.created_at,
	s.id, s.user_id, s.amount_owed_minor, s.cleared`

func (s *Store) ListExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	rows, err := s.pool.Query(ctx, `
		select `+joinedExpenseColumns+`
		from expenses e
		join splits s on s.expense_id = e.id
		where e.paid_by_user_id = $1
		   or e.id in (select expense_id from splits where user_id = $1)
		order by e.created_at desc, e.id, s.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses for user: %w", err)
	}
	return scanExpensesWithSplits(rows)
}

func (s *Store) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.pool.Query(ctx, `
		select `+joinedExpenseColumns+`
		from expenses e
		join splits s on s.expense_id = e.id
		where e.group_id = $1
		order by e.created_at desc, e.id, s.id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	return scanExpensesWithSplits(rows)
}

func scanExpensesWithSplits(rows pgx.Rows) ([]*models.Expense, error) {
	defer rows.Close()
	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		var (
			e            models.Expense
			sp           models.Split
			amount, owed int64
		)
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Name, &amount, &e.PaidByUserID, &e.CreatorUserID, &e.Cleared, &e.CreatedAt,
			&sp.ID, &sp.UserID, &owed, &sp.Cleared); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense, ok := byID[e.ID]
		if !ok {
			e.Amount = money.FromMinor(amount)
			e.CreatedAt = e.CreatedAt.UTC()
			expense = &e
			byID[e.ID] = expense
			expenses = append(expenses, expense)
		}
		sp.ExpenseID = expense.ID
		sp.GroupID = expense.GroupID
		sp.AmountOwed = money.FromMinor(owed)
		expense.Splits = append(expense.Splits, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

type txn struct {
	tx pgx.Tx
}

func (t *txn) InsertExpense(ctx context.Context, e *models.Expense) error {
	_, err := t.tx.Exec(ctx, `
		insert into expenses (id, group_id, name, amount_minor, paid_by_user_id, creator_user_id, cleared, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.GroupID, e.Name, e.Amount.Minor(), e.PaidByUserID, e.CreatorUserID, e.Cleared, e.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to insert expense: %w", storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// InsertSplits sends all rows in one batch.
func (t *txn) InsertSplits(ctx context.Context, splits []models.Split) error {
	batch := &pgx.Batch{}
	for _, sp := range splits {
		batch.Queue(`
			insert into splits (id, expense_id, group_id, user_id, amount_owed_minor, cleared)
			values ($1, $2, $3, $4, $5, $6)
		`, sp.ID, sp.ExpenseID, sp.GroupID, sp.UserID, sp.AmountOwed.Minor(), sp.Cleared)
	}
	br := t.tx.SendBatch(ctx, batch)
	for _, sp := range splits {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			if isUniqueViolation(err) {
				return fmt.Errorf("failed to insert split for %s: %w", sp.UserID, storage.ErrConflict)
			}
			return fmt.Errorf("failed to insert split for %s: %w", sp.UserID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert splits: %w", err)
	}
	return nil
}

func (t *txn) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	var (
		e      models.Expense
		amount int64
	)
	err := t.tx.QueryRow(ctx, `
		select id, group_id, name, amount_minor, paid_by_user_id, creator_user_id, cleared, created_at
		from expenses
		where id = $1
		for update
	`, expenseID).Scan(&e.ID, &e.GroupID, &e.Name, &amount, &e.PaidByUserID, &e.CreatorUserID, &e.Cleared, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	e.Amount = money.FromMinor(amount)
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func (t *txn) GetSplit(ctx context.Context, splitID string) (*models.Split, error) {
	var (
		sp   models.Split
		owed int64
	)
	err := t.tx.QueryRow(ctx, `
		select id, expense_id, group_id, user_id, amount_owed_minor, cleared
		from splits where id = $1
	`, splitID).Scan(&sp.ID, &sp.ExpenseID, &sp.GroupID, &sp.UserID, &owed, &sp.Cleared)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	sp.AmountOwed = money.FromMinor(owed)
	return &sp, nil
}

func (t *txn) ListSplits(ctx context.Context, expenseID string) ([]models.Split, error) {
	return t.querySplits(ctx, `
		select id, expense_id, group_id, user_id, amount_owed_minor, cleared
		from splits where expense_id = $1 order by id
	`, expenseID)
}

func (t *txn) ListUnclearedSplits(ctx context.Context, expenseID string) ([]models.Split, error) {
	return t.querySplits(ctx, `
		select id, expense_id, group_id, user_id, amount_owed_minor, cleared
		from splits where expense_id = $1 and not cleared order by id
	`, expenseID)
}

func (t *txn) querySplits(ctx context.Context, query string, args ...any) ([]models.Split, error) {
	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var (
			sp   models.Split
			owed int64
		)
		if err := rows.Scan(&sp.ID, &sp.ExpenseID, &sp.GroupID, &sp.UserID, &owed, &sp.Cleared); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		sp.AmountOwed = money.FromMinor(owed)
		splits = append(splits, sp)
	}
	return splits, rows.Err()
}

func (t *txn) UpdateSplitCleared(ctx context.Context, splitID string) error {
	return t.execOne(ctx, "split "+splitID, `update splits set cleared = true where id = $1`, splitID)
}

func (t *txn) UpdateExpenseCleared(ctx context.Context, expenseID string) error {
	return t.execOne(ctx, "expense "+expenseID, `update expenses set cleared = true where id = $1`, expenseID)
}

func (t *txn) DeleteExpenseCascade(ctx context.Context, expenseID string) error {
	return t.execOne(ctx, "expense "+expenseID, `delete from expenses where id = $1`, expenseID)
}

func (t *txn) execOne(ctx context.Context, what, query string, args ...any) error {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", what, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}

func (t *txn) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *txn) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

// --- Groups ---

func (s *Store) CreateGroup(ctx context.Context, g *models.Group) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		insert into groups (id, name, description, admin_user_id, created_at)
		values ($1, $2, $3, $4, $5)
	`, g.ID, g.Name, g.Description, g.AdminUserID, g.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to insert group: %w", storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	for _, member := range g.Members {
		if _, err := tx.Exec(ctx, `
			insert into group_members (group_id, user_id) values ($1, $2)
			on conflict do nothing
		`, g.ID, member); err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) AddGroupMember(ctx context.Context, groupID, userID string) error {
	exists, err := s.GroupExists(ctx, groupID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	_, err = s.pool.Exec(ctx, `insert into group_members (group_id, user_id) values ($1, $2)`, groupID, userID)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s already in group %s: %w", userID, groupID, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

func (s *Store) ListGroupMembers(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `select user_id from group_members where group_id = $1 order by user_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	members, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan group members: %w", err)
	}
	return members, nil
}

func (s *Store) GroupExists(ctx context.Context, groupID string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `select exists(select 1 from groups where id = $1)`, groupID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check group existence: %w", err)
	}
	return exists, nil
}

func (s *Store) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var member bool
	err := s.pool.QueryRow(ctx,
		`select exists(select 1 from group_members where group_id = $1 and user_id = $2)`,
		groupID, userID,
	).Scan(&member)
	if err != nil {
		return false, fmt.Errorf("failed to check group membership: %w", err)
	}
	return member, nil
}

func (s *Store) GroupAdmin(ctx context.Context, groupID string) (string, error) {
	var admin string
	err := s.pool.QueryRow(ctx, `select admin_user_id from groups where id = $1`, groupID).Scan(&admin)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get group admin: %w", err)
	}
	return admin, nil
}

// --- Users ---

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.pool.Exec(ctx, `
		insert into users (id, email, display_name, password_hash, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Email, u.DisplayName, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to create user: %w", storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `where email = $1`, email)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, `where id = $1`, id)
}

func (s *Store) getUser(ctx context.Context, where, value string) (*models.User, error) {
	u := &models.User{}
	err := s.pool.QueryRow(ctx,
		`select id, email, display_name, password_hash, created_at, updated_at from users `+where,
		value,
	).Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}
