package postgres

import (
	"context"

	"github.com/frahmantamala/warehouse-management/internal/activity"
	activityDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/activity"
	"github.com/jmoiron/sqlx"
)

const (
	insertEntryQuery = `INSERT INTO activity_log (id, occurred_at, username, action, entity, entity_id, store_id, details)
VALUES (:id, :occurred_at, :username, :action, :entity, :entity_id, :store_id, :details)`

	selectEntriesQuery = `SELECT id, occurred_at, username, action, entity, entity_id, store_id, details FROM activity_log`
)

// ActivityRepository writes the append-only activity_log table with plain SQL.
type ActivityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) activity.RepositoryAPI {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Insert(ctx context.Context, e *activityDatamodel.Entry) error {
	_, err := r.db.NamedExecContext(ctx, insertEntryQuery, e)
	return err
}

func (r *ActivityRepository) List(ctx context.Context, storeID string, limit int) ([]*activityDatamodel.Entry, error) {
	var rows []*activityDatamodel.Entry
	var err error
	if storeID == "" {
		err = r.db.SelectContext(ctx, &rows, selectEntriesQuery+` ORDER BY occurred_at DESC LIMIT $1`, limit)
	} else {
		err = r.db.SelectContext(ctx, &rows, selectEntriesQuery+` WHERE store_id = $1 ORDER BY occurred_at DESC LIMIT $2`, storeID, limit)
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ActivityRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activity_log`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
