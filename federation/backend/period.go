package backend

import (
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
)

// OccursWithin reports whether obj has at least one occurrence intersecting
// the inclusive period [start, end]. Recurrence rules (RRULE), additional
// dates (RDATE) and exception dates (EXDATE) are honored. Objects carrying
// no time information never match a period.
//
// Overlap uses the usual inclusive check: span start <= end of period AND
// span end >= start of period.
func OccursWithin(obj *Object, start, end time.Time) (bool, error) {
	if obj == nil || obj.Component == nil {
		return false, nil
	}

	masterStart, masterEnd, ok := timeBounds(obj.Component)
	if !ok {
		return false, nil
	}

	exdates := propDates(obj.Component, ical.PropExceptionDates)

	// Master occurrence first; without an RRULE it is the only one.
	if !masterStart.After(end) && !masterEnd.Before(start) && !excluded(masterStart, exdates) {
		return true, nil
	}

	if p := obj.Component.Props.Get(ical.PropRecurrenceRule); p != nil && p.Value != "" {
		occurrences, err := expandRRule(masterStart, p.Value, start, end)
		if err != nil {
			return false, fmt.Errorf("failed to expand RRULE: %w", err)
		}
		for _, occ := range occurrences {
			if !excluded(occ, exdates) {
				return true, nil
			}
		}
	}

	duration := masterEnd.Sub(masterStart)
	for _, rdate := range propDates(obj.Component, ical.PropRecurrenceDates) {
		rdateEnd := rdate.Add(duration)
		if !rdate.After(end) && !rdateEnd.Before(start) && !excluded(rdate, exdates) {
			return true, nil
		}
	}

	return false, nil
}

// FilterPeriod returns the subset of objects with an occurrence in
// [start, end], preserving order. Objects whose recurrence rules cannot be
// parsed are skipped rather than failing the whole listing.
func FilterPeriod(objects []Object, start, end time.Time) []Object {
	matched := make([]Object, 0, len(objects))
	for i := range objects {
		if in, err := OccursWithin(&objects[i], start, end); err == nil && in {
			matched = append(matched, objects[i])
		}
	}
	return matched
}

// timeBounds derives the occurrence span of a component. The start comes
// from DTSTART (DUE for undated todos); the end from DTEND, DUE,
// DTSTART+DURATION, or the start itself for point-in-time components.
func timeBounds(comp *ical.Component) (start, end time.Time, ok bool) {
	start, err := comp.Props.DateTime(ical.PropDateTimeStart, nil)
	if err != nil || start.IsZero() {
		start, err = comp.Props.DateTime(ical.PropDue, nil)
		if err != nil || start.IsZero() {
			return time.Time{}, time.Time{}, false
		}
	}

	if t, err := comp.Props.DateTime(ical.PropDateTimeEnd, nil); err == nil && !t.IsZero() {
		return start, t, true
	}
	if t, err := comp.Props.DateTime(ical.PropDue, nil); err == nil && !t.IsZero() {
		return start, t, true
	}
	if p := comp.Props.Get(ical.PropDuration); p != nil {
		if d, err := p.Duration(); err == nil {
			return start, start.Add(d), true
		}
	}
	return start, start, true
}

// expandRRule expands an RRULE string within [rangeStart, rangeEnd].
func expandRRule(masterStart time.Time, rruleStr string, rangeStart, rangeEnd time.Time) ([]time.Time, error) {
	dtstart := masterStart.UTC().Format("20060102T150405Z")
	set, err := rrule.StrToRRuleSet(fmt.Sprintf("DTSTART:%s\nRRULE:%s", dtstart, rruleStr))
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE %q: %w", rruleStr, err)
	}
	return set.Between(rangeStart, rangeEnd, true), nil
}

func propDates(comp *ical.Component, name string) []time.Time {
	props := comp.Props.Values(name)
	if len(props) == 0 {
		return nil
	}
	dates := make([]time.Time, 0, len(props))
	for i := range props {
		if t, err := props[i].DateTime(nil); err == nil && !t.IsZero() {
			dates = append(dates, t)
		}
	}
	return dates
}

func excluded(occurrence time.Time, exdates []time.Time) bool {
	for _, ex := range exdates {
		if occurrence.Equal(ex) {
			return true
		}
	}
	return false
}
