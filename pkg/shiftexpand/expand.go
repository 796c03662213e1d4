// Package shiftexpand turns service-and-frequency templates or already-dated
// shift specifications into a flat, dated list of rosterdomain.Shift values
// for one target month.
package shiftexpand

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/faena-transit/rosterizer/pkg/rosterdomain"
)

// FrequencySpec is a recurrence-based shift specification: an RFC 5545
// RRULE string (e.g. "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR") evaluated across the
// target month.
type FrequencySpec struct {
	RRule string
}

// DatedSpec is an already-dated shift specification.
type DatedSpec struct {
	Date time.Time
}

// ShiftSpec is either a FrequencySpec or a DatedSpec, never both. Exactly
// one of Frequency/Dated is non-nil.
type ShiftSpec struct {
	ShiftNumber   int
	StartTime     string // "HH:MM", 24-hour
	DurationHours float64
	Frequency     *FrequencySpec
	Dated         *DatedSpec
}

func (s ShiftSpec) isDated() bool { return s.Dated != nil }

// ServiceTemplate is one service's worth of shift specifications.
type ServiceTemplate struct {
	ServiceID   string
	Vehicle     string
	ServiceType string
	Shifts      []ShiftSpec
}

// Mode is the expansion mode detected across the whole input.
type Mode int

const (
	ModeTemplate Mode = iota
	ModeDated
)

// DetectMode inspects every ShiftSpec across every service and returns the
// single mode that applies, or an ExpansionAmbiguityError if the input mixes
// dated and templated specs. This single explicit decision at the boundary
// of C1 is what prevents downstream double-expansion.
func DetectMode(services []ServiceTemplate) (Mode, error) {
	sawDated, sawTemplate := false, false
	for _, svc := range services {
		for _, spec := range svc.Shifts {
			if spec.isDated() {
				sawDated = true
			} else {
				sawTemplate = true
			}
			if sawDated && sawTemplate {
				return 0, &rosterdomain.ExpansionAmbiguityError{
					Reason: fmt.Sprintf("service %q mixes dated and templated shift specifications", svc.ServiceID),
				}
			}
		}
	}
	if sawDated {
		return ModeDated, nil
	}
	return ModeTemplate, nil
}

// Expand produces the dated shift list for (year, month). It never
// re-expands an already-dated input: in ModeDated every spec is emitted at
// most once, filtered defensively to the target month.
func Expand(year int, month time.Month, services []ServiceTemplate) ([]rosterdomain.Shift, error) {
	mode, err := DetectMode(services)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var out []rosterdomain.Shift
	nextID := rosterdomain.ShiftID(1)

	for _, svc := range services {
		for _, spec := range svc.Shifts {
			startMinute, err := parseStartTime(spec.StartTime)
			if err != nil {
				return nil, err
			}
			duration := int(spec.DurationHours * 60)

			switch mode {
			case ModeDated:
				d := spec.Dated.Date
				if d.Before(monthStart) || !d.Before(monthEnd) {
					continue // defensive filter against upstream leakage
				}
				out = append(out, rosterdomain.Shift{
					ID:          nextID,
					ServiceID:   svc.ServiceID,
					ShiftNumber: spec.ShiftNumber,
					Date:        rosterdomain.DateOf(d),
					StartMinute: startMinute,
					Duration:    duration,
					ServiceType: svc.ServiceType,
					Vehicle:     svc.Vehicle,
				})
				nextID++
			case ModeTemplate:
				occurrences, err := occurrencesInMonth(spec.Frequency.RRule, monthStart, monthEnd)
				if err != nil {
					return nil, err
				}
				for _, occ := range occurrences {
					out = append(out, rosterdomain.Shift{
						ID:          nextID,
						ServiceID:   svc.ServiceID,
						ShiftNumber: spec.ShiftNumber,
						Date:        rosterdomain.DateOf(occ),
						StartMinute: startMinute,
						Duration:    duration,
						ServiceType: svc.ServiceType,
						Vehicle:     svc.Vehicle,
					})
					nextID++
				}
			}
		}
	}
	return out, nil
}

func occurrencesInMonth(rruleStr string, monthStart, monthEnd time.Time) ([]time.Time, error) {
	opt, err := rrule.StrToROption(rruleStr)
	if err != nil {
		return nil, fmt.Errorf("parsing rrule %q: %w", rruleStr, err)
	}
	opt.Dtstart = monthStart
	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("building rrule %q: %w", rruleStr, err)
	}
	// Between is inclusive on both ends; pull the end inside the month so
	// the next month's first midnight is never emitted.
	return rule.Between(monthStart, monthEnd.Add(-time.Second), true), nil
}

func parseStartTime(hhmm string) (int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("shiftexpand: start time %q must be HH:MM", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("shiftexpand: invalid hour in %q: %w", hhmm, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("shiftexpand: invalid minute in %q: %w", hhmm, err)
	}
	return h*60 + m, nil
}
