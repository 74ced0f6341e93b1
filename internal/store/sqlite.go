package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pocketrithm/internal/core"

	_ "modernc.org/sqlite"
)

// SQLite is the local backend: self-hosted deployments and the read side of
// the sync worker. Schema is managed by the embedded migrations.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func marshalEmotions(emotions []string) (string, error) {
	if emotions == nil {
		emotions = []string{}
	}
	b, err := json.Marshal(emotions)
	if err != nil {
		return "", fmt.Errorf("marshal emotions: %w", err)
	}
	return string(b), nil
}

func unmarshalEmotions(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var emotions []string
	if err := json.Unmarshal([]byte(raw), &emotions); err != nil {
		return nil, fmt.Errorf("unmarshal emotions: %w", err)
	}
	return emotions, nil
}

func parseTimestamp(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Expenses

func (s *SQLite) CreateExpense(ctx context.Context, e *core.Expense) error {
	e.GenerateID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	emotions, err := marshalEmotions(e.Emotions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, amount, category, type, emotions, reason, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Amount, e.Category, string(e.Type), emotions, e.Reason,
		e.Date.String(), e.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return classify(fmt.Errorf("create expense: %w", err))
	}
	return nil
}

func (s *SQLite) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount, category, type, emotions, reason, date, created_at
		 FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, fmt.Errorf("expense %s: %w", id, ErrNotFound)
		}
		return core.Expense{}, classify(fmt.Errorf("get expense: %w", err))
	}
	return e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e         core.Expense
		typ       string
		emotions  string
		date      string
		createdAt string
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &typ, &emotions, &e.Reason, &date, &createdAt); err != nil {
		return core.Expense{}, err
	}
	e.Type = core.ExpenseType(typ)
	parsed, err := unmarshalEmotions(emotions)
	if err != nil {
		return core.Expense{}, err
	}
	e.Emotions = parsed
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date: %w", err)
	}
	e.Date = d
	e.CreatedAt = parseTimestamp(createdAt)
	return e, nil
}

func (s *SQLite) ListExpenses(ctx context.Context, userID string, f EntryFilter) ([]core.Expense, error) {
	query := `SELECT id, user_id, amount, category, type, emotions, reason, date, created_at
	          FROM expenses WHERE user_id = ?`
	args := []any{userID}
	if f.From != nil {
		query += " AND date >= ?"
		args = append(args, f.From.String())
	}
	if f.To != nil {
		query += " AND date <= ?"
		args = append(args, f.To.String())
	}
	if f.Type != "" {
		query += " AND type = ?"
		args = append(args, string(f.Type))
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("list expenses: %w", err))
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return filterByEmotion(out, f.Emotion), nil
}

func (s *SQLite) UpdateExpense(ctx context.Context, e *core.Expense) error {
	emotions, err := marshalEmotions(e.Emotions)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, category = ?, type = ?, emotions = ?, reason = ?, date = ?
		 WHERE id = ? AND user_id = ?`,
		e.Amount, e.Category, string(e.Type), emotions, e.Reason, e.Date.String(), e.ID, e.UserID)
	if err != nil {
		return classify(fmt.Errorf("update expense: %w", err))
	}
	return requireRow(res, "expense", e.ID)
}

func (s *SQLite) DeleteExpense(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return classify(fmt.Errorf("delete expense: %w", err))
	}
	return requireRow(res, "expense", id)
}

func requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	return nil
}

// Incomes

func (s *SQLite) CreateIncome(ctx context.Context, i *core.Income) error {
	i.GenerateID()
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO incomes (id, user_id, amount, source, memo, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.UserID, i.Amount, i.Source, i.Memo, i.Date.String(), i.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return classify(fmt.Errorf("create income: %w", err))
	}
	return nil
}

func scanIncome(row rowScanner) (core.Income, error) {
	var (
		i         core.Income
		date      string
		createdAt string
	)
	if err := row.Scan(&i.ID, &i.UserID, &i.Amount, &i.Source, &i.Memo, &date, &createdAt); err != nil {
		return core.Income{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Income{}, fmt.Errorf("parse income date: %w", err)
	}
	i.Date = d
	i.CreatedAt = parseTimestamp(createdAt)
	return i, nil
}

func (s *SQLite) GetIncome(ctx context.Context, userID, id string) (core.Income, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount, source, memo, date, created_at
		 FROM incomes WHERE id = ? AND user_id = ?`, id, userID)
	i, err := scanIncome(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Income{}, fmt.Errorf("income %s: %w", id, ErrNotFound)
		}
		return core.Income{}, classify(fmt.Errorf("get income: %w", err))
	}
	return i, nil
}

func (s *SQLite) ListIncomes(ctx context.Context, userID string, f EntryFilter) ([]core.Income, error) {
	query := `SELECT id, user_id, amount, source, memo, date, created_at
	          FROM incomes WHERE user_id = ?`
	args := []any{userID}
	if f.From != nil {
		query += " AND date >= ?"
		args = append(args, f.From.String())
	}
	if f.To != nil {
		query += " AND date <= ?"
		args = append(args, f.To.String())
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("list incomes: %w", err))
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		i, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incomes: %w", err)
	}
	return out, nil
}

func (s *SQLite) UpdateIncome(ctx context.Context, i *core.Income) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE incomes SET amount = ?, source = ?, memo = ?, date = ?
		 WHERE id = ? AND user_id = ?`,
		i.Amount, i.Source, i.Memo, i.Date.String(), i.ID, i.UserID)
	if err != nil {
		return classify(fmt.Errorf("update income: %w", err))
	}
	return requireRow(res, "income", i.ID)
}

func (s *SQLite) DeleteIncome(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM incomes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return classify(fmt.Errorf("delete income: %w", err))
	}
	return requireRow(res, "income", id)
}

// Categories

func (s *SQLite) CreateCategory(ctx context.Context, c *core.Category) error {
	c.GenerateID()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_categories (id, user_id, name, type, icon, color, order_index, is_default, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, string(c.Kind), c.Icon, c.Color, c.OrderIndex, boolToInt(c.IsDefault),
		c.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return classify(fmt.Errorf("create category: %w", err))
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLite) ListCategories(ctx context.Context, userID string, kind core.CategoryKind) ([]core.Category, error) {
	query := `SELECT id, user_id, name, type, icon, color, order_index, is_default, created_at
	          FROM user_categories WHERE user_id = ?`
	args := []any{userID}
	if kind != "" {
		query += " AND type = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY order_index ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("list categories: %w", err))
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c         core.Category
			kindStr   string
			isDefault int
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &kindStr, &c.Icon, &c.Color, &c.OrderIndex, &isDefault, &createdAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.CategoryKind(kindStr)
		c.IsDefault = isDefault != 0
		c.CreatedAt = parseTimestamp(createdAt)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (s *SQLite) UpdateCategory(ctx context.Context, c *core.Category) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_categories SET name = ?, icon = ?, color = ?, order_index = ?
		 WHERE id = ? AND user_id = ?`,
		c.Name, c.Icon, c.Color, c.OrderIndex, c.ID, c.UserID)
	if err != nil {
		return classify(fmt.Errorf("update category: %w", err))
	}
	return requireRow(res, "category", c.ID)
}

func (s *SQLite) DeleteCategory(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return classify(fmt.Errorf("delete category: %w", err))
	}
	return requireRow(res, "category", id)
}

func (s *SQLite) ReorderCategories(ctx context.Context, userID string, kind core.CategoryKind, orderedIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback()

	for idx, id := range orderedIDs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE user_categories SET order_index = ? WHERE id = ? AND user_id = ? AND type = ?`,
			idx, id, userID, string(kind)); err != nil {
			return classify(fmt.Errorf("reorder category %s: %w", id, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

// Profile

func (s *SQLite) GetProfile(ctx context.Context, userID string) (core.Profile, error) {
	var (
		p      core.Profile
		budget sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, monthly_budget, signup_source, signup_reason
		 FROM profiles WHERE id = ?`, userID).
		Scan(&p.ID, &p.Name, &budget, &p.SignupSource, &p.SignupReason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Profile{}, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
		}
		return core.Profile{}, classify(fmt.Errorf("get profile: %w", err))
	}
	if budget.Valid {
		p.MonthlyBudget = &budget.Int64
	}
	return p, nil
}

func (s *SQLite) UpsertProfile(ctx context.Context, p *core.Profile) error {
	var budget any
	if p.MonthlyBudget != nil {
		budget = *p.MonthlyBudget
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, name, monthly_budget, signup_source, signup_reason)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name,
		   monthly_budget = excluded.monthly_budget,
		   signup_source = excluded.signup_source,
		   signup_reason = excluded.signup_reason`,
		p.ID, p.Name, budget, p.SignupSource, p.SignupReason)
	if err != nil {
		return classify(fmt.Errorf("upsert profile: %w", err))
	}
	return nil
}

func (s *SQLite) DeleteProfile(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, userID)
	if err != nil {
		return classify(fmt.Errorf("delete profile: %w", err))
	}
	return nil
}

// Budgets

func (s *SQLite) GetMonthlyBudget(ctx context.Context, userID string, month core.Period) (core.MonthlyBudget, error) {
	var b core.MonthlyBudget
	var monthStr string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, month, total_budget FROM monthly_budgets WHERE user_id = ? AND month = ?`,
		userID, string(month)).
		Scan(&b.UserID, &monthStr, &b.TotalBudget)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.MonthlyBudget{}, fmt.Errorf("monthly budget %s: %w", month, ErrNotFound)
		}
		return core.MonthlyBudget{}, classify(fmt.Errorf("get monthly budget: %w", err))
	}
	b.Month = core.Period(monthStr)
	return b, nil
}

func (s *SQLite) UpsertMonthlyBudget(ctx context.Context, b *core.MonthlyBudget) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO monthly_budgets (user_id, month, total_budget) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, month) DO UPDATE SET total_budget = excluded.total_budget`,
		b.UserID, string(b.Month), b.TotalBudget)
	if err != nil {
		return classify(fmt.Errorf("upsert monthly budget: %w", err))
	}
	return nil
}

func (s *SQLite) DeleteMonthlyBudget(ctx context.Context, userID string, month core.Period) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM monthly_budgets WHERE user_id = ? AND month = ?`, userID, string(month))
	if err != nil {
		return classify(fmt.Errorf("delete monthly budget: %w", err))
	}
	return nil
}

func (s *SQLite) ListCategoryBudgets(ctx context.Context, userID string, month core.Period) ([]core.CategoryMonthlyBudget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, category_id, month, budget FROM category_monthly_budgets
		 WHERE user_id = ? AND month = ?`, userID, string(month))
	if err != nil {
		return nil, classify(fmt.Errorf("list category budgets: %w", err))
	}
	defer rows.Close()

	var out []core.CategoryMonthlyBudget
	for rows.Next() {
		var b core.CategoryMonthlyBudget
		var monthStr string
		if err := rows.Scan(&b.UserID, &b.CategoryID, &monthStr, &b.Budget); err != nil {
			return nil, fmt.Errorf("scan category budget: %w", err)
		}
		b.Month = core.Period(monthStr)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category budgets: %w", err)
	}
	return out, nil
}

func (s *SQLite) UpsertCategoryBudget(ctx context.Context, b *core.CategoryMonthlyBudget) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO category_monthly_budgets (user_id, category_id, month, budget) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, category_id, month) DO UPDATE SET budget = excluded.budget`,
		b.UserID, b.CategoryID, string(b.Month), b.Budget)
	if err != nil {
		return classify(fmt.Errorf("upsert category budget: %w", err))
	}
	return nil
}

// Account purges

func (s *SQLite) DeleteAllExpenses(ctx context.Context, userID string) error {
	return s.purgeTable(ctx, "expenses", userID)
}

func (s *SQLite) DeleteAllIncomes(ctx context.Context, userID string) error {
	return s.purgeTable(ctx, "incomes", userID)
}

func (s *SQLite) DeleteAllCategories(ctx context.Context, userID string) error {
	return s.purgeTable(ctx, "user_categories", userID)
}

func (s *SQLite) DeleteAllMonthlyBudgets(ctx context.Context, userID string) error {
	return s.purgeTable(ctx, "monthly_budgets", userID)
}

func (s *SQLite) DeleteAllCategoryBudgets(ctx context.Context, userID string) error {
	return s.purgeTable(ctx, "category_monthly_budgets", userID)
}

func (s *SQLite) purgeTable(ctx context.Context, table, userID string) error {
	if strings.ContainsAny(table, " ;") {
		return fmt.Errorf("invalid table name %q", table)
	}
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE user_id = ?`, table), userID)
	if err != nil {
		return classify(fmt.Errorf("purge %s: %w", table, err))
	}
	return nil
}
