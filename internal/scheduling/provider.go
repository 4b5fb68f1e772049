package scheduling

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WorkingHours is a provider's weekly availability window for one weekday.
// Superseded rows are kept with Active=false.
type WorkingHours struct {
	ID         uuid.UUID
	ProviderID uuid.UUID
	DayOfWeek  time.Weekday
	Start      TimeOfDay
	End        TimeOfDay
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewWorkingHours(providerID uuid.UUID, day time.Weekday, start, end TimeOfDay, now time.Time) (WorkingHours, error) {
	if day < time.Sunday || day > time.Saturday {
		return WorkingHours{}, ErrInvalidHours.WithMessage("day of week must be between 0 (Sunday) and 6 (Saturday)")
	}
	if !start.Valid() || !end.Valid() {
		return WorkingHours{}, ErrInvalidTimeOfDay
	}
	if end <= start {
		return WorkingHours{}, ErrInvalidHours
	}
	return WorkingHours{
		ID:         uuid.New(),
		ProviderID: providerID,
		DayOfWeek:  day,
		Start:      start,
		End:        end,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Contains reports whether slot lies entirely within these (active) hours.
func (w WorkingHours) Contains(slot TimeSlot) bool {
	return w.Active && slot.Start() >= w.Start && slot.End() <= w.End
}

// BlockedTime is an absolute interval during which a provider takes no bookings.
type BlockedTime struct {
	ID         uuid.UUID
	ProviderID uuid.UUID
	Start      time.Time
	End        time.Time
	Reason     string
	CreatedAt  time.Time
}

func NewBlockedTime(providerID uuid.UUID, start, end time.Time, reason string, now time.Time) (BlockedTime, error) {
	if !end.After(start) {
		return BlockedTime{}, ErrInvalidBlocked.WithMessage("blocked time end must be after its start")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return BlockedTime{}, ErrInvalidBlocked.WithMessage("block reason is required")
	}
	return BlockedTime{
		ID:         uuid.New(),
		ProviderID: providerID,
		Start:      start.UTC(),
		End:        end.UTC(),
		Reason:     reason,
		CreatedAt:  now,
	}, nil
}

// Overlaps reports whether [start, end) intersects the blocked interval.
func (b BlockedTime) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && end.After(b.Start)
}

// ConflictsWith checks a slot anchored on date against the blocked interval.
func (b BlockedTime) ConflictsWith(date time.Time, slot TimeSlot) bool {
	return b.Overlaps(slot.StartOn(date), slot.EndOn(date))
}

// ServiceProvider owns its working hours and blocked times. Fields change
// only through its methods.
type ServiceProvider struct {
	id           uuid.UUID
	name         string
	email        string
	specialty    string
	active       bool
	workingHours []WorkingHours
	blockedTimes []BlockedTime
	createdAt    time.Time
	updatedAt    time.Time
}

// ProviderRecord is the flat, storage-facing form of a ServiceProvider.
type ProviderRecord struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Specialty string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewServiceProvider(name, email, specialty string, now time.Time) (*ServiceProvider, error) {
	name, email, specialty, err := normalizeProviderInfo(name, email, specialty)
	if err != nil {
		return nil, err
	}
	return &ServiceProvider{
		id:        uuid.New(),
		name:      name,
		email:     email,
		specialty: specialty,
		active:    true,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// RestoreServiceProvider rebuilds a provider loaded from storage.
func RestoreServiceProvider(rec ProviderRecord, hours []WorkingHours, blocked []BlockedTime) *ServiceProvider {
	return &ServiceProvider{
		id:           rec.ID,
		name:         rec.Name,
		email:        rec.Email,
		specialty:    rec.Specialty,
		active:       rec.Active,
		workingHours: append([]WorkingHours(nil), hours...),
		blockedTimes: append([]BlockedTime(nil), blocked...),
		createdAt:    rec.CreatedAt,
		updatedAt:    rec.UpdatedAt,
	}
}

func normalizeProviderInfo(name, email, specialty string) (string, string, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	specialty = strings.TrimSpace(specialty)

	switch {
	case name == "":
		return "", "", "", ErrInvalidProvider.WithMessage("provider name is required")
	case email == "":
		return "", "", "", ErrInvalidProvider.WithMessage("provider email is required")
	case specialty == "":
		return "", "", "", ErrInvalidProvider.WithMessage("provider specialty is required")
	case !strings.Contains(email, "@"):
		return "", "", "", ErrInvalidProvider.WithMessage("invalid provider email format")
	}
	return name, email, specialty, nil
}

func (p *ServiceProvider) ID() uuid.UUID        { return p.id }
func (p *ServiceProvider) Name() string         { return p.name }
func (p *ServiceProvider) Email() string        { return p.email }
func (p *ServiceProvider) Specialty() string    { return p.specialty }
func (p *ServiceProvider) Active() bool         { return p.active }
func (p *ServiceProvider) CreatedAt() time.Time { return p.createdAt }
func (p *ServiceProvider) UpdatedAt() time.Time { return p.updatedAt }

func (p *ServiceProvider) Record() ProviderRecord {
	return ProviderRecord{
		ID:        p.id,
		Name:      p.name,
		Email:     p.email,
		Specialty: p.specialty,
		Active:    p.active,
		CreatedAt: p.createdAt,
		UpdatedAt: p.updatedAt,
	}
}

// WorkingHours returns every known row, active ones first by weekday.
func (p *ServiceProvider) WorkingHours() []WorkingHours {
	out := append([]WorkingHours(nil), p.workingHours...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Active != out[j].Active {
			return out[i].Active
		}
		return out[i].DayOfWeek < out[j].DayOfWeek
	})
	return out
}

func (p *ServiceProvider) BlockedTimes() []BlockedTime {
	out := append([]BlockedTime(nil), p.blockedTimes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func (p *ServiceProvider) UpdateDetails(name, email, specialty string, now time.Time) error {
	name, email, specialty, err := normalizeProviderInfo(name, email, specialty)
	if err != nil {
		return err
	}
	p.name, p.email, p.specialty = name, email, specialty
	p.updatedAt = now
	return nil
}

func (p *ServiceProvider) Deactivate(now time.Time) error {
	if !p.active {
		return ErrProviderDeactive
	}
	p.active = false
	p.updatedAt = now
	return nil
}

func (p *ServiceProvider) Activate(now time.Time) error {
	if p.active {
		return ErrProviderActive
	}
	p.active = true
	p.updatedAt = now
	return nil
}

// AddWorkingHours replaces the active window for day. The previous row is
// deactivated, not removed.
func (p *ServiceProvider) AddWorkingHours(day time.Weekday, start, end TimeOfDay, now time.Time) (WorkingHours, error) {
	if !p.active {
		return WorkingHours{}, ErrProviderInactive
	}
	wh, err := NewWorkingHours(p.id, day, start, end, now)
	if err != nil {
		return WorkingHours{}, err
	}
	for i := range p.workingHours {
		if p.workingHours[i].DayOfWeek == day && p.workingHours[i].Active {
			p.workingHours[i].Active = false
			p.workingHours[i].UpdatedAt = now
		}
	}
	p.workingHours = append(p.workingHours, wh)
	p.updatedAt = now
	return wh, nil
}

func (p *ServiceProvider) BlockTime(start, end time.Time, reason string, now time.Time) (BlockedTime, error) {
	if !p.active {
		return BlockedTime{}, ErrProviderInactive
	}
	bt, err := NewBlockedTime(p.id, start, end, reason, now)
	if err != nil {
		return BlockedTime{}, err
	}
	p.blockedTimes = append(p.blockedTimes, bt)
	p.updatedAt = now
	return bt, nil
}

// WorkingHoursFor returns the active window for day, if the provider works then.
func (p *ServiceProvider) WorkingHoursFor(day time.Weekday) (WorkingHours, bool) {
	for _, wh := range p.workingHours {
		if wh.DayOfWeek == day && wh.Active {
			return wh, true
		}
	}
	return WorkingHours{}, false
}

// BlockedTimesOn returns blocked intervals touching the calendar day of date.
func (p *ServiceProvider) BlockedTimesOn(date time.Time) []BlockedTime {
	dayStart := DateOf(date)
	dayEnd := dayStart.AddDate(0, 0, 1)
	var out []BlockedTime
	for _, bt := range p.blockedTimes {
		if bt.Overlaps(dayStart, dayEnd) {
			out = append(out, bt)
		}
	}
	return out
}

// Covers reports whether slot on date lies inside the active working hours
// for that weekday.
func (p *ServiceProvider) Covers(date time.Time, slot TimeSlot) bool {
	wh, ok := p.WorkingHoursFor(DateOf(date).Weekday())
	return ok && wh.Contains(slot)
}

// IsAvailableAt reports whether an active provider could take a booking of
// durationMinutes starting at at, ignoring existing appointments.
func (p *ServiceProvider) IsAvailableAt(at time.Time, durationMinutes int) bool {
	if !p.active {
		return false
	}
	slot, err := NewTimeSlot(TimeOfDayOf(at), durationMinutes)
	if err != nil {
		return false
	}
	date := DateOf(at)
	if !p.Covers(date, slot) {
		return false
	}
	for _, bt := range p.blockedTimes {
		if bt.ConflictsWith(date, slot) {
			return false
		}
	}
	return true
}
