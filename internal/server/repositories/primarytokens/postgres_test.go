package primarytokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestFindByToken_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,\s*token,\s*name,\s*created_at\s+FROM\s+primary_tokens\s+WHERE\s+token\s*=\s*\$1\s*$`
	now := time.Now().UTC()
	mock.ExpectQuery(q).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "token", "name", "created_at"}).AddRow(int64(1), "abc", "ci", now))

	got, err := repo.FindByToken(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, &models.PrimaryToken{ID: 1, Token: "abc", Name: "ci", CreatedAt: now}, got)
}

func TestFindByToken_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+primary_tokens\s+WHERE\s+token`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByToken(context.Background(), "nope")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestSave_Insert(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+primary_tokens\s*\(token,\s*name\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+id,\s*created_at\s*$`
	mock.ExpectQuery(q).
		WithArgs("abc", "ci").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), time.Now()))

	p, err := repo.Save(context.Background(), &models.PrimaryToken{Token: "abc", Name: "ci"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
