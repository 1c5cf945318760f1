package backend

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// DefaultTimezone is the club's zone, used for timestamps without an offset.
const DefaultTimezone = "Europe/Berlin"

// DefaultRegistrationPeriod is how long before the deadline registration opens.
const DefaultRegistrationPeriod = 21 * 24 * time.Hour

// LoadLocation resolves name, falling back to DefaultTimezone when empty.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimezone
	}
	return time.LoadLocation(name)
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EventOption is a selectable add-on for an event (e.g. overnight stay).
type EventOption struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	Type        string `json:"type"`
}

// Event is a club event as returned by GET /event.
type Event struct {
	ID                int           `json:"id"`
	EventYear         string        `json:"eventyear"`
	Description       string        `json:"description"`
	EventDate         string        `json:"eventdate"`
	EventDateTimeFrom string        `json:"eventdatetimefrom"`
	EventDateTimeTo   string        `json:"eventdatetimeto"`
	Deadline          string        `json:"deadline"`
	Options           []EventOption `json:"options"`
	Note              string        `json:"note"`

	// Location interprets date-times without an offset. Nil means
	// DefaultTimezone.
	Location *time.Location `json:"-"`
}

// Label is the "<description> <year>" value the event page submits.
func (e Event) Label() string {
	return strings.TrimSpace(e.Description + " " + e.EventYear)
}

// RegistrationStatus is where an event stands relative to its deadline.
type RegistrationStatus int

const (
	// RegistrationOpen accepts registrations.
	RegistrationOpen RegistrationStatus = iota
	// RegistrationNotYetOpen means the deadline is more than a registration
	// period away.
	RegistrationNotYetOpen
	// RegistrationClosed means the deadline has passed.
	RegistrationClosed
)

func (s RegistrationStatus) String() string {
	switch s {
	case RegistrationNotYetOpen:
		return "nicht freigeschaltet"
	case RegistrationClosed:
		return "geschlossen"
	default:
		return "offen"
	}
}

// Session is the token pair returned by POST /login.
type Session struct {
	AccessToken string `json:"accessToken"`
}

// RentalRequest is the body of POST /bookrental.
type RentalRequest struct {
	BookID     json.RawMessage `json:"bookid"`
	ReaderName string          `json:"readername"`
	RentalDate string          `json:"rentaldate"`
}

// RentalReturn is the body of DELETE /bookrental.
type RentalReturn struct {
	RentalID json.RawMessage `json:"rentalid"`
	BookID   json.RawMessage `json:"bookid"`
}

// Date-only values are UTC midnight; date-times without an offset are local
// to the club.
var (
	utcLayouts   = []string{time.RFC3339, "2006-01-02"}
	localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05"}
)

// ParseTimestamp parses value in DefaultTimezone. See ParseTimestampIn.
func ParseTimestamp(value string) (time.Time, bool) {
	return ParseTimestampIn(value, nil)
}

// ParseTimestampIn accepts RFC 3339, common ISO variants and unix seconds.
// Date-times without an offset are read in loc.
func ParseTimestampIn(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}
	for _, layout := range utcLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	if loc == nil {
		loc = defaultLocation()
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (e Event) parse(value string) (time.Time, bool) {
	return ParseTimestampIn(value, e.Location)
}

// Zone returns the event's location, DefaultTimezone when unset.
func (e Event) Zone() *time.Location {
	if e.Location != nil {
		return e.Location
	}
	return defaultLocation()
}

// DeadlineTime returns the parsed deadline.
func (e Event) DeadlineTime() (time.Time, bool) {
	return e.parse(e.Deadline)
}

// Registration reports the registration status at now. Registration opens
// period before the deadline; period <= 0 uses DefaultRegistrationPeriod.
// Events without a parseable deadline are always open.
func (e Event) Registration(now time.Time, period time.Duration) RegistrationStatus {
	deadline, ok := e.DeadlineTime()
	if !ok {
		return RegistrationOpen
	}
	if period <= 0 {
		period = DefaultRegistrationPeriod
	}
	remaining := deadline.Sub(now)
	switch {
	case remaining < 0:
		return RegistrationClosed
	case remaining > period:
		return RegistrationNotYetOpen
	default:
		return RegistrationOpen
	}
}

// RegistrationOpen reports whether registrations are accepted at now.
func (e Event) RegistrationOpen(now time.Time, period time.Duration) bool {
	return e.Registration(now, period) == RegistrationOpen
}

// DaysUntilDeadline counts whole calendar days in the event's zone between
// now and the deadline; negative once passed.
func (e Event) DaysUntilDeadline(now time.Time) (int, bool) {
	deadline, ok := e.DeadlineTime()
	if !ok {
		return 0, false
	}
	loc := e.Zone()
	day := func(t time.Time) time.Time {
		y, m, d := t.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return int(math.Round(day(deadline).Sub(day(now)).Hours() / 24)), true
}

// Start returns the event start, falling back to the event date.
func (e Event) Start() (time.Time, bool) {
	if t, ok := e.parse(e.EventDateTimeFrom); ok {
		return t, true
	}
	return e.parse(e.EventDate)
}

// End returns the event end, or start plus two hours when unknown.
func (e Event) End() (time.Time, bool) {
	if t, ok := e.parse(e.EventDateTimeTo); ok {
		return t, true
	}
	start, ok := e.Start()
	if !ok {
		return time.Time{}, false
	}
	return start.Add(2 * time.Hour), true
}
