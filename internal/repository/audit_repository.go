package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
)

// AuditRecord is one row of the floor_audit table: a single
// allocation command that was issued against the upstream API.
// Rows are written by the queue consumer, never by request handlers,
// so a broker outage delays the audit trail without losing commands.
type AuditRecord struct {
	ID           uint64    // floor_audit.id
	EventID      string    // floor_audit.event_id (uuid, unique)
	Command      string    // floor_audit.command
	OccupantType string    // floor_audit.occupant_type
	OccupantID   uint64    // floor_audit.occupant_id
	SeatIDs      []uint64  // floor_audit.seat_ids (comma separated)
	FloorDate    string    // floor_audit.floor_date
	Staff        string    // floor_audit.staff
	IssuedAt     time.Time // floor_audit.issued_at
	CreatedAt    time.Time // floor_audit.created_at
}

// AuditRepo provides access to the floor_audit table.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo bound to the provided database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// encodeSeatIDs flattens seat ids into the comma-separated column
// form.  The audit table is a log, not a relation; nothing joins on
// these values.
func encodeSeatIDs(ids []uint64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(id, 10))
	}
	return strings.Join(parts, ",")
}

func decodeSeatIDs(s string) []uint64 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		if n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64); err == nil {
			ids = append(ids, n)
		}
	}
	return ids
}

// Insert appends one audit record.  Duplicate event ids are ignored
// so a redelivered queue message never produces a second row.
func (r *AuditRepo) Insert(ctx context.Context, rec AuditRecord) error {
	const q = `INSERT IGNORE INTO floor_audit
	           (event_id, command, occupant_type, occupant_id, seat_ids, floor_date, staff, issued_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		rec.EventID, rec.Command, rec.OccupantType, rec.OccupantID,
		encodeSeatIDs(rec.SeatIDs), rec.FloorDate, rec.Staff,
		rec.IssuedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	return err
}

// GetByEventID fetches a single audit record.  Returns ErrNotFound
// when no row matches.
func (r *AuditRepo) GetByEventID(ctx context.Context, eventID string) (*AuditRecord, error) {
	const q = `SELECT id, event_id, command, occupant_type, occupant_id, seat_ids, floor_date, staff, issued_at, created_at
	           FROM floor_audit WHERE event_id = ?`
	var rec AuditRecord
	var seatIDs string
	err := r.db.QueryRowContext(ctx, q, eventID).Scan(
		&rec.ID, &rec.EventID, &rec.Command, &rec.OccupantType, &rec.OccupantID,
		&seatIDs, &rec.FloorDate, &rec.Staff, &rec.IssuedAt, &rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.SeatIDs = decodeSeatIDs(seatIDs)
	return &rec, nil
}

// ListByDate returns the audit trail for one floor date, newest
// first, capped at limit rows.
func (r *AuditRepo) ListByDate(ctx context.Context, floorDate string, limit int) ([]AuditRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `SELECT id, event_id, command, occupant_type, occupant_id, seat_ids, floor_date, staff, issued_at, created_at
	           FROM floor_audit WHERE floor_date = ? ORDER BY issued_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, floorDate, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AuditRecord
	for rows.Next() {
		var rec AuditRecord
		var seatIDs string
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Command, &rec.OccupantType, &rec.OccupantID,
			&seatIDs, &rec.FloorDate, &rec.Staff, &rec.IssuedAt, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.SeatIDs = decodeSeatIDs(seatIDs)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
