// Package crud implements a generic PostgreSQL repository over an explicit
// table-to-struct mapping. Entities stay plain structs; the Mapper says how
// their fields line up with columns.
package crud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/dbx"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Mapper describes how entity T is stored.
//
// The primary key column is always "id" (BIGSERIAL); an entity whose ID is
// zero has not been persisted yet.
type Mapper[T any] struct {
	// Table is the table name.
	Table string
	// Columns are the writable columns, excluding id.
	Columns []string
	// Generated are server-computed columns read back after every write.
	Generated []string
	// OnUpdate are raw assignments appended to UPDATE, e.g. "updated_at = now()".
	OnUpdate []string

	// ID returns a pointer to the entity's id field.
	ID func(*T) *int64
	// Values returns the entity's values in Columns order.
	Values func(*T) []any
	// Fields returns scan targets for id, Columns and Generated, in that order.
	Fields func(*T) []any
}

func (m Mapper[T]) selectList() string {
	cols := make([]string, 0, 1+len(m.Columns)+len(m.Generated))
	cols = append(cols, "id")
	cols = append(cols, m.Columns...)
	cols = append(cols, m.Generated...)
	return strings.Join(cols, ", ")
}

func (m Mapper[T]) generatedTargets(e *T) []any {
	return m.Fields(e)[1+len(m.Columns):]
}

// Base is a repository of T bound to one DBTX (a *sql.DB, *sql.Conn or *sql.Tx).
type Base[T any] struct {
	db dbx.DBTX
	m  Mapper[T]
}

// New returns a Base bound to db.
func New[T any](db dbx.DBTX, m Mapper[T]) *Base[T] {
	return &Base[T]{db: db, m: m}
}

// DB returns the handle the repository runs against.
func (b *Base[T]) DB() dbx.DBTX {
	return b.db
}

// GetByID returns the entity with the given id or common.ErrorNotFound.
func (b *Base[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	return b.SelectOne(ctx, "WHERE id = $1", id)
}

// GetAll returns every row ordered by id.
func (b *Base[T]) GetAll(ctx context.Context) ([]*T, error) {
	return b.Select(ctx, "ORDER BY id")
}

// Save inserts e when its id is zero and updates it otherwise. Generated
// columns (and the id on insert) are written back into e. Updating a missing
// row yields common.ErrorNotFound; a unique violation yields
// common.ErrorAlreadyExists.
func (b *Base[T]) Save(ctx context.Context, e *T) (*T, error) {
	if *b.m.ID(e) == 0 {
		return b.insert(ctx, e)
	}
	return b.update(ctx, e)
}

func (b *Base[T]) insert(ctx context.Context, e *T) (*T, error) {
	placeholders := make([]string, len(b.m.Columns))
	for i := range placeholders {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}

	returning := append([]string{"id"}, b.m.Generated...)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		b.m.Table,
		strings.Join(b.m.Columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(returning, ", "),
	)

	targets := append([]any{b.m.ID(e)}, b.m.generatedTargets(e)...)
	if err := b.db.QueryRowContext(ctx, query, b.m.Values(e)...).Scan(targets...); err != nil {
		return nil, wrapError(err)
	}
	return e, nil
}

func (b *Base[T]) update(ctx context.Context, e *T) (*T, error) {
	sets := make([]string, 0, len(b.m.Columns)+len(b.m.OnUpdate))
	for i, c := range b.m.Columns {
		sets = append(sets, c+" = $"+strconv.Itoa(i+1))
	}
	sets = append(sets, b.m.OnUpdate...)

	returning := "id"
	targets := []any{b.m.ID(e)}
	if len(b.m.Generated) > 0 {
		returning = strings.Join(b.m.Generated, ", ")
		targets = b.m.generatedTargets(e)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		b.m.Table,
		strings.Join(sets, ", "),
		len(b.m.Columns)+1,
		returning,
	)

	args := append(b.m.Values(e), *b.m.ID(e))
	if err := b.db.QueryRowContext(ctx, query, args...).Scan(targets...); err != nil {
		return nil, wrapError(err)
	}
	return e, nil
}

// SaveAll saves each entity in order and stops at the first error.
func (b *Base[T]) SaveAll(ctx context.Context, es []*T) ([]*T, error) {
	for _, e := range es {
		if _, err := b.Save(ctx, e); err != nil {
			return nil, err
		}
	}
	return es, nil
}

// DeleteByID removes the row with the given id. A missing row is reported as
// common.ErrorNotFound.
func (b *Base[T]) DeleteByID(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 RETURNING id", b.m.Table)

	var deleted int64
	if err := b.db.QueryRowContext(ctx, query, id).Scan(&deleted); err != nil {
		return wrapError(err)
	}
	return nil
}

// DeleteAll removes every row and reports how many were deleted.
func (b *Base[T]) DeleteAll(ctx context.Context) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s", b.m.Table)

	res, err := b.db.ExecContext(ctx, query)
	if err != nil {
		return 0, wrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapError(err)
	}
	return n, nil
}

// Select returns rows matching the trailing clause (WHERE/ORDER BY...).
func (b *Base[T]) Select(ctx context.Context, clause string, args ...any) ([]*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s %s", b.m.selectList(), b.m.Table, clause)

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	result := make([]*T, 0)
	for rows.Next() {
		e := new(T)
		if err := rows.Scan(b.m.Fields(e)...); err != nil {
			return nil, wrapError(err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// SelectOne returns the single row matching clause or common.ErrorNotFound.
func (b *Base[T]) SelectOne(ctx context.Context, clause string, args ...any) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s %s", b.m.selectList(), b.m.Table, clause)

	e := new(T)
	if err := b.db.QueryRowContext(ctx, query, args...).Scan(b.m.Fields(e)...); err != nil {
		return nil, wrapError(err)
	}
	return e, nil
}

func wrapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, pgErr.ConstraintName)
	}
	return fmt.Errorf("db error: %w", err)
}
