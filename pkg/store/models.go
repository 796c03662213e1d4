package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/faena-transit/rosterizer/pkg/rosterdomain"
)

// RosterRecord is one solved month's header row.
type RosterRecord struct {
	ID          uuid.UUID
	Year        int
	Month       int
	CycleN      int
	DriverCount int
	ShiftCount  int
	TotalHours  float64
	Seed        uint64
	CreatedAt   time.Time
}

// DriverRecord is one synthetic driver's row within a roster.
type DriverRecord struct {
	ID            uuid.UUID
	RosterID      uuid.UUID
	DriverNumber  int
	CycleN        int
	WorkStartDate time.Time
	TotalMinutes  int
	TotalShifts   int
	DaysWorked    int
}

// AssignmentRecord is one (driver, shift) pair's row within a roster.
type AssignmentRecord struct {
	ID              uuid.UUID
	RosterID        uuid.UUID
	DriverNumber    int
	ServiceID       string
	ShiftNumber     int
	Vehicle         string
	ShiftDate       time.Time
	StartMinute     int
	DurationMinutes int
}

// Snapshot flattens a solution into persistence records under a fresh
// roster id. Drivers are numbered by creation order; shift ids stay
// internal to the engine and never reach the database.
func Snapshot(sol *rosterdomain.Solution, year, month int, seed uint64) (RosterRecord, []DriverRecord, []AssignmentRecord) {
	rosterID := uuid.New()

	totalMinutes := 0
	var drivers []DriverRecord
	var assignments []AssignmentRecord
	shiftCount := 0

	for number, driverID := range sol.Drivers() {
		drivers = append(drivers, DriverRecord{
			ID:            uuid.New(),
			RosterID:      rosterID,
			DriverNumber:  number,
			CycleN:        sol.DriverCycle(driverID),
			WorkStartDate: sol.DriverWorkStart(driverID).Time(),
			TotalMinutes:  sol.TotalMinutes(driverID),
			TotalShifts:   len(sol.AssignedShiftIDs(driverID)),
			DaysWorked:    sol.DaysWorked(driverID),
		})
		for _, shiftID := range sol.AssignedShiftIDs(driverID) {
			shift := sol.Shifts().MustGet(shiftID)
			assignments = append(assignments, AssignmentRecord{
				ID:              uuid.New(),
				RosterID:        rosterID,
				DriverNumber:    number,
				ServiceID:       shift.ServiceID,
				ShiftNumber:     shift.ShiftNumber,
				Vehicle:         shift.Vehicle,
				ShiftDate:       shift.Date.Time(),
				StartMinute:     shift.StartMinute,
				DurationMinutes: shift.Duration,
			})
			totalMinutes += shift.Duration
			shiftCount++
		}
	}

	cycle := sol.Regime().CycleN
	if ids := sol.Drivers(); len(ids) > 0 {
		cycle = sol.DriverCycle(ids[0])
	}

	roster := RosterRecord{
		ID:          rosterID,
		Year:        year,
		Month:       month,
		CycleN:      cycle,
		DriverCount: sol.DriverCount(),
		ShiftCount:  shiftCount,
		TotalHours:  float64(totalMinutes) / 60.0,
		Seed:        seed,
		CreatedAt:   time.Now().UTC(),
	}
	return roster, drivers, assignments
}
