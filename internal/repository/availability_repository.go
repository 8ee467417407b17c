package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vitrinshop/vitrin/internal/model"
)

// AvailabilityRepo stores per-resource weekly recurring schedules.  Rules
// are soft-state: editing a day deactivates the old rows and inserts new
// ones, never deleting, so bookings made under an earlier schedule keep
// their historical context.
type AvailabilityRepo struct {
	db *sql.DB
}

// NewAvailabilityRepo returns a new AvailabilityRepo bound to the given database.
func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

const ruleColumns = `id, resource_id, weekday, start_local, end_local, slot_duration_minutes, is_break, is_active, created_at`

func scanRules(rows *sql.Rows) ([]model.AvailabilityRule, error) {
	defer rows.Close()
	rules := make([]model.AvailabilityRule, 0)
	for rows.Next() {
		var r model.AvailabilityRule
		if err := rows.Scan(&r.ID, &r.ResourceID, &r.Weekday, &r.StartLocal, &r.EndLocal,
			&r.SlotDurationMinutes, &r.IsBreak, &r.IsActive, &r.CreatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// ActiveByResourceWeekday returns the active rules (open window plus
// breaks) for one resource and weekday.  Slot generation reads through
// this; rows come back break-last so the open rule is found first.
func (r *AvailabilityRepo) ActiveByResourceWeekday(ctx context.Context, resourceID uint64, weekday int) ([]model.AvailabilityRule, error) {
	const q = `SELECT ` + ruleColumns + ` FROM availability_rules
	           WHERE resource_id = ? AND weekday = ? AND is_active = 1
	           ORDER BY is_break, start_local`
	rows, err := r.db.QueryContext(ctx, q, resourceID, weekday)
	if err != nil {
		return nil, err
	}
	return scanRules(rows)
}

// ActiveByResource returns all active rules for a resource across the
// week, ordered by weekday.  Used by the seller's schedule view.
func (r *AvailabilityRepo) ActiveByResource(ctx context.Context, resourceID uint64) ([]model.AvailabilityRule, error) {
	const q = `SELECT ` + ruleColumns + ` FROM availability_rules
	           WHERE resource_id = ? AND is_active = 1
	           ORDER BY weekday, is_break, start_local`
	rows, err := r.db.QueryContext(ctx, q, resourceID)
	if err != nil {
		return nil, err
	}
	return scanRules(rows)
}

// ActiveOpenRuleTx reads the active non-break rule for a weekday inside a
// transaction.  Break insertion validates containment against it.
func (r *AvailabilityRepo) ActiveOpenRuleTx(ctx context.Context, tx *sql.Tx, resourceID uint64, weekday int) (*model.AvailabilityRule, error) {
	const q = `SELECT ` + ruleColumns + ` FROM availability_rules
	           WHERE resource_id = ? AND weekday = ? AND is_break = 0 AND is_active = 1
	           LIMIT 1`
	var rule model.AvailabilityRule
	err := tx.QueryRowContext(ctx, q, resourceID, weekday).Scan(
		&rule.ID, &rule.ResourceID, &rule.Weekday, &rule.StartLocal, &rule.EndLocal,
		&rule.SlotDurationMinutes, &rule.IsBreak, &rule.IsActive, &rule.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// DeactivateDayTx deactivates every active rule (open window and breaks)
// for one resource and weekday.  Replacing a day's window invalidates its
// breaks along with it, so both go together.
func (r *AvailabilityRepo) DeactivateDayTx(ctx context.Context, tx *sql.Tx, resourceID uint64, weekday int) error {
	const q = `UPDATE availability_rules SET is_active = 0
	           WHERE resource_id = ? AND weekday = ? AND is_active = 1`
	_, err := tx.ExecContext(ctx, q, resourceID, weekday)
	return err
}

// InsertTx inserts a rule row and populates its generated ID.
func (r *AvailabilityRepo) InsertTx(ctx context.Context, tx *sql.Tx, rule *model.AvailabilityRule) error {
	const q = `INSERT INTO availability_rules
	           (resource_id, weekday, start_local, end_local, slot_duration_minutes, is_break, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, 1)`
	res, err := tx.ExecContext(ctx, q, rule.ResourceID, rule.Weekday, rule.StartLocal,
		rule.EndLocal, rule.SlotDurationMinutes, rule.IsBreak)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rule.ID = uint64(id)
	rule.IsActive = true
	return nil
}
