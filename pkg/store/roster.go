package store

import (
	"context"
	"fmt"
)

// InsertRoster writes a roster header plus its driver and assignment rows in
// one transaction, so a partially-written roster can never be observed.
func (s *Store) InsertRoster(ctx context.Context, roster RosterRecord, drivers []DriverRecord, assignments []AssignmentRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin roster transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO rosters (id, year, month, cycle_n, driver_count, shift_count, total_hours, seed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, roster.ID, roster.Year, roster.Month, roster.CycleN, roster.DriverCount, roster.ShiftCount, roster.TotalHours, int64(roster.Seed), roster.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert roster: %w", err)
	}

	for _, d := range drivers {
		_, err = tx.Exec(ctx, `
			INSERT INTO roster_drivers (id, roster_id, driver_number, cycle_n, work_start_date, total_minutes, total_shifts, days_worked)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, d.ID, d.RosterID, d.DriverNumber, d.CycleN, d.WorkStartDate, d.TotalMinutes, d.TotalShifts, d.DaysWorked)
		if err != nil {
			return fmt.Errorf("failed to insert driver %d: %w", d.DriverNumber, err)
		}
	}

	for _, a := range assignments {
		_, err = tx.Exec(ctx, `
			INSERT INTO roster_assignments (id, roster_id, driver_number, service_id, shift_number, vehicle, shift_date, start_minute, duration_minutes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, a.ID, a.RosterID, a.DriverNumber, a.ServiceID, a.ShiftNumber, a.Vehicle, a.ShiftDate, a.StartMinute, a.DurationMinutes)
		if err != nil {
			return fmt.Errorf("failed to insert assignment for driver %d on %s: %w", a.DriverNumber, a.ShiftDate.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit roster: %w", err)
	}
	return nil
}

// ListRosters returns roster headers for (year, month), newest first.
func (s *Store) ListRosters(ctx context.Context, year, month int) ([]RosterRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, year, month, cycle_n, driver_count, shift_count, total_hours, seed, created_at
		FROM rosters
		WHERE year = $1 AND month = $2
		ORDER BY created_at DESC
	`, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query rosters: %w", err)
	}
	defer rows.Close()

	var out []RosterRecord
	for rows.Next() {
		var r RosterRecord
		var seed int64
		if err := rows.Scan(&r.ID, &r.Year, &r.Month, &r.CycleN, &r.DriverCount, &r.ShiftCount, &r.TotalHours, &seed, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan roster: %w", err)
		}
		r.Seed = uint64(seed)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetAssignments returns every assignment row of one roster, ordered by
// date, driver, and start minute.
func (s *Store) GetAssignments(ctx context.Context, rosterID string) ([]AssignmentRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, roster_id, driver_number, service_id, shift_number, vehicle, shift_date, start_minute, duration_minutes
		FROM roster_assignments
		WHERE roster_id = $1
		ORDER BY shift_date, driver_number, start_minute
	`, rosterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var out []AssignmentRecord
	for rows.Next() {
		var a AssignmentRecord
		if err := rows.Scan(&a.ID, &a.RosterID, &a.DriverNumber, &a.ServiceID, &a.ShiftNumber, &a.Vehicle, &a.ShiftDate, &a.StartMinute, &a.DurationMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
