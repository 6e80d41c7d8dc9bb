package repository

import (
	"context"
	"database/sql"

	"github.com/tracewell/venuetrace/internal/model"
)

// CheckInRepo persists venue check-ins.  Rows are append-only and always
// owned by the session's authenticated username.
type CheckInRepo struct{ DB *sql.DB }

func NewCheckInRepo(db *sql.DB) *CheckInRepo { return &CheckInRepo{DB: db} }

// Insert records a check-in for username.  The owner value comes from the
// session snapshot; handlers must never pass client-supplied identity here.
func (r *CheckInRepo) Insert(ctx context.Context, code, date, timeOfDay, username string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO check_ins (check_in_code, date_, time_, username) VALUES (?,?,?,?)",
		code, date, timeOfDay, username)
	return err
}

// ListByUsername returns the user's check-ins newest first.
func (r *CheckInRepo) ListByUsername(ctx context.Context, username string) ([]model.CheckIn, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,check_in_code,date_,time_,username FROM check_ins WHERE username=? ORDER BY date_ DESC, time_ DESC",
		username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CheckIn
	for rows.Next() {
		var ci model.CheckIn
		if err := rows.Scan(&ci.ID, &ci.Code, &ci.Date, &ci.Time, &ci.Username); err != nil {
			return nil, err
		}
		out = append(out, ci)
	}
	return out, rows.Err()
}
