package activity

import "time"

// Entry is an activity_log row, read and written with sqlx.
type Entry struct {
	ID         string    `db:"id"`
	OccurredAt time.Time `db:"occurred_at"`
	Username   string    `db:"username"`
	Action     string    `db:"action"`
	Entity     string    `db:"entity"`
	EntityID   string    `db:"entity_id"`
	StoreID    string    `db:"store_id"`
	Details    string    `db:"details"`
}
