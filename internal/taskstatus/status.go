package taskstatus

import (
	"fmt"
	"time"
)

// Status is the derived lifecycle status of a task. It is never accepted as
// caller input; every mutation recomputes it from the task's dates.
type Status string

const (
	StatusInProgress Status = "Em Andamento"
	StatusOverdue    Status = "Em Atraso"
	StatusDone       Status = "Concluído"
	StatusDoneLate   Status = "Concluído em Atraso"
)

// DateLayout is the wire format for prazo/realizado date strings.
const DateLayout = "2006-01-02"

// Derive computes the status of a task from its due date (prazo) and
// completion date (realizado), evaluated against the given reference day.
// Comparisons use calendar-day granularity in today's location: a task
// completed on its due day is done on time, and a task becomes overdue only
// the day after its prazo. Operands may arrive in any zone; the calendar is
// decided by the reference location alone.
func Derive(prazo, realizado *time.Time, today time.Time) Status {
	loc := today.Location()

	if realizado == nil {
		if prazo != nil && dayOf(*prazo, loc).Before(dayOf(today, loc)) {
			return StatusOverdue
		}
		return StatusInProgress
	}

	if prazo != nil && dayOf(*realizado, loc).After(dayOf(*prazo, loc)) {
		return StatusDoneLate
	}
	return StatusDone
}

// ParseDate parses a YYYY-MM-DD string in the reference location, so the
// effective calendar day never shifts with server locale.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected %s", value, DateLayout)
	}
	return t, nil
}

// dayOf truncates a time to its calendar day in loc. Normalizing first
// matters: the mysql driver hands times back in the connection's zone, and
// truncating in that zone would move the due-day boundary with the server
// locale.
func dayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
