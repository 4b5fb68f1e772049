package scheduling

import (
	"fmt"
	"time"
)

type RecurrenceType string

const (
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

// RecurrenceRule projects one appointment into later occurrences. A
// non-recurring appointment has no rule at all rather than a "none" type.
type RecurrenceRule struct {
	Type     RecurrenceType
	Interval int
	// EndDate, when set, is the last date an occurrence may fall on.
	EndDate *time.Time
}

func NewRecurrenceRule(typ RecurrenceType, interval int, endDate *time.Time) (RecurrenceRule, error) {
	r := RecurrenceRule{Type: typ, Interval: interval}
	if endDate != nil {
		d := DateOf(*endDate)
		r.EndDate = &d
	}
	if err := r.Validate(); err != nil {
		return RecurrenceRule{}, err
	}
	return r, nil
}

func Weekly(interval int) RecurrenceRule {
	return RecurrenceRule{Type: RecurrenceWeekly, Interval: interval}
}

func Monthly(interval int) RecurrenceRule {
	return RecurrenceRule{Type: RecurrenceMonthly, Interval: interval}
}

func (r RecurrenceRule) Validate() error {
	switch r.Type {
	case RecurrenceWeekly, RecurrenceMonthly:
	default:
		return ErrInvalidRecurrence.WithMessage(fmt.Sprintf("unsupported recurrence type %q", r.Type))
	}
	if r.Interval < 1 {
		return ErrInvalidRecurrence.WithMessage("recurrence interval must be at least 1")
	}
	return nil
}

// NextOccurrence advances date by one recurrence step. Calling it on a rule
// that did not pass Validate is a programming error and panics.
func (r RecurrenceRule) NextOccurrence(date time.Time) time.Time {
	switch r.Type {
	case RecurrenceWeekly:
		return DateOf(date).AddDate(0, 0, 7*r.Interval)
	case RecurrenceMonthly:
		return AddMonths(date, r.Interval)
	default:
		panic(fmt.Sprintf("scheduling: unsupported recurrence type %q", r.Type))
	}
}

// Allows reports whether date is on or before the rule's end date.
func (r RecurrenceRule) Allows(date time.Time) bool {
	return r.EndDate == nil || !DateOf(date).After(DateOf(*r.EndDate))
}
