package repository

import (
	"context"
	"database/sql"

	"github.com/tracewell/venuetrace/internal/model"
)

// MarkerRepo persists hotspot map markers.
type MarkerRepo struct{ DB *sql.DB }

func NewMarkerRepo(db *sql.DB) *MarkerRepo { return &MarkerRepo{DB: db} }

// Insert stores a marker and returns its ID.
func (r *MarkerRepo) Insert(ctx context.Context, longitude, latitude float64) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO map_markers (longitude, latitude) VALUES (?,?)",
		longitude, latitude)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListAll returns every marker, newest first.
func (r *MarkerRepo) ListAll(ctx context.Context) ([]model.MapMarker, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,longitude,latitude FROM map_markers ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MapMarker
	for rows.Next() {
		var m model.MapMarker
		if err := rows.Scan(&m.ID, &m.Longitude, &m.Latitude); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
