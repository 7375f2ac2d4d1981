package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tablestore/internal/table/model"
	"tablestore/pkg/logger"
	"tablestore/pkg/metrics"
)

var (
	ErrNotFound  = errors.New("table not found")
	ErrForbidden = errors.New("table is owned by another user")
)

type TableRepository struct {
	DB      *sql.DB
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func NewTableRepository(db *sql.DB, m *metrics.Metrics) *TableRepository {
	return &TableRepository{DB: db, Metrics: m, Now: time.Now}
}

func (r *TableRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.TableSummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, COALESCE(title, ''), updated_at FROM tables WHERE owner = $1`, ownerID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list tables for user %s: %v", ownerID, err)
		r.observe("list", err)
		return nil, err
	}
	defer rows.Close()

	tables := []model.TableSummary{}
	for rows.Next() {
		var t model.TableSummary
		var updatedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.Title, &updatedAt); err != nil {
			logger.Sugar.Errorf("Failed to scan table row for user %s: %v", ownerID, err)
			r.observe("list", err)
			return nil, err
		}
		t.UpdatedAt = timePtr(updatedAt)
		tables = append(tables, t)
	}
	err = rows.Err()
	r.observe("list", err)
	return tables, err
}

func (r *TableRepository) Get(ctx context.Context, id string) (*model.Table, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT owner, COALESCE(title, ''), main_data, template, updated_at FROM tables WHERE id = $1`, id)
	t, err := scanTable(row, id)
	if errors.Is(err, sql.ErrNoRows) {
		r.observe("get", nil)
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get table %s: %v", id, err)
	}
	r.observe("get", err)
	return t, err
}

// Upsert creates the table owned by ownerID if the id is unseen, otherwise
// applies the non-empty patch fields when ownerID is the stored owner. Both
// cases are one statement, so concurrent first writes cannot both win.
func (r *TableRepository) Upsert(ctx context.Context, id, ownerID string, patch model.TablePatch) (*model.Table, error) {
	var title sql.NullString
	if patch.Title != "" {
		title = sql.NullString{String: patch.Title, Valid: true}
	}

	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO tables (id, owner, title, main_data, template, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = COALESCE(EXCLUDED.title, tables.title),
			main_data = COALESCE(EXCLUDED.main_data, tables.main_data),
			template = COALESCE(EXCLUDED.template, tables.template),
			updated_at = EXCLUDED.updated_at
		WHERE tables.owner = EXCLUDED.owner
		RETURNING owner, COALESCE(title, ''), main_data, template, updated_at`,
		id, ownerID, title, patch.MainData, patch.Template, r.Now().UTC())

	t, err := scanTable(row, id)
	if errors.Is(err, sql.ErrNoRows) {
		r.observe("upsert", nil)
		return nil, ErrForbidden
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to upsert table %s: %v", id, err)
	}
	r.observe("upsert", err)
	return t, err
}

// Delete removes the table when ownerID owns it and returns the removed row.
func (r *TableRepository) Delete(ctx context.Context, id, ownerID string) (*model.Table, error) {
	row := r.DB.QueryRowContext(ctx, `
		DELETE FROM tables WHERE id = $1 AND owner = $2
		RETURNING owner, COALESCE(title, ''), main_data, template, updated_at`, id, ownerID)

	t, err := scanTable(row, id)
	if err == nil {
		r.observe("delete", nil)
		return t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Sugar.Errorf("Failed to delete table %s: %v", id, err)
		r.observe("delete", err)
		return nil, err
	}

	// Nothing deleted: tell a missing row apart from someone else's row.
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tables WHERE id = $1)`, id).Scan(&exists); err != nil {
		logger.Sugar.Errorf("Failed to check table %s: %v", id, err)
		r.observe("delete", err)
		return nil, err
	}
	r.observe("delete", nil)
	if exists {
		return nil, ErrForbidden
	}
	return nil, ErrNotFound
}

func (r *TableRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM tables WHERE owner = $1`, ownerID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete tables of user %s: %v", ownerID, err)
		r.observe("delete_by_owner", err)
		return 0, err
	}
	n, err := result.RowsAffected()
	r.observe("delete_by_owner", err)
	return n, err
}

func (r *TableRepository) observe(op string, err error) {
	if r.Metrics != nil {
		r.Metrics.RecordStoreOperation(op, err)
	}
}

func scanTable(row *sql.Row, id string) (*model.Table, error) {
	t := model.Table{ID: id}
	var updatedAt sql.NullTime
	if err := row.Scan(&t.Owner, &t.Title, &t.MainData, &t.Template, &updatedAt); err != nil {
		return nil, err
	}
	t.UpdatedAt = timePtr(updatedAt)
	return &t, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
