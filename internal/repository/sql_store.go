package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"formcraft/internal/domain"
	"formcraft/internal/util"
)

// documentRow is the row layout shared by every collection table.
type documentRow struct {
	ID        string    `db:"id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r documentRow) toDocument() *domain.Document {
	return &domain.Document{
		ID:        r.ID,
		Body:      json.RawMessage(r.Body),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

// tables maps collections onto their tables. Table names never come from
// request input.
var tables = map[domain.Collection]string{
	domain.CollectionForms:     "forms",
	domain.CollectionResponses: "responses",
}

// SQLStore implements domain.DocumentStore on a relational database. Each
// document is one row, so every write is a single statement.
type SQLStore struct {
	db  DBTX
	now func() time.Time
}

// NewSQLStore creates a store on an open connection pool or transaction.
func NewSQLStore(db DBTX) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func tableFor(collection domain.Collection) (string, error) {
	table, ok := tables[collection]
	if !ok {
		return "", domain.NewInternalError(fmt.Sprintf("unknown collection %q", collection), nil)
	}
	return table, nil
}

func (s *SQLStore) Insert(ctx context.Context, collection domain.Collection, body json.RawMessage) (*domain.Document, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	row := documentRow{
		ID:        util.NewULID(),
		Body:      string(body),
		CreatedAt: now,
		UpdatedAt: now,
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, body, created_at, updated_at)
	VALUES (:id, :body, :created_at, :updated_at)`, table)

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return nil, sqlError(fmt.Sprintf("insert into %s", table), collection, row.ID, err)
	}
	return row.toDocument(), nil
}

func (s *SQLStore) FindByID(ctx context.Context, collection domain.Collection, id string) (*domain.Document, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT
		id "id",
		body "body",
		created_at "created_at",
		updated_at "updated_at"
	FROM %s
	WHERE id = ?`, table)

	var row documentRow
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(query), id); err != nil {
		return nil, sqlError(fmt.Sprintf("select from %s", table), collection, id, err)
	}
	return row.toDocument(), nil
}

func (s *SQLStore) Replace(ctx context.Context, collection domain.Collection, id string, body json.RawMessage) (*domain.Document, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`UPDATE %s SET body = :body, updated_at = :updated_at WHERE id = :id`, table)
	args := map[string]any{
		"id":         id,
		"body":       string(body),
		"updated_at": s.now().UTC().Truncate(time.Microsecond),
	}
	result, err := s.db.NamedExecContext(ctx, query, args)
	if err != nil {
		return nil, sqlError(fmt.Sprintf("update %s", table), collection, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, sqlError(fmt.Sprintf("update %s", table), collection, id, err)
	}
	if affected == 0 {
		return nil, notFound(collection, id)
	}
	return s.FindByID(ctx, collection, id)
}

// sqlError maps driver errors onto the domain error kinds.
func sqlError(op string, collection domain.Collection, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(collection, id)
	}
	if cerr := contextError(op, err); cerr != nil {
		return cerr
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return domain.NewStorageUnavailableError(fmt.Sprintf("%s: database unreachable", op), err)
	}
	return domain.NewInternalError(fmt.Sprintf("failed to %s", op), err)
}
