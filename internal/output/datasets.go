package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kamiza/kamiza/internal/backend"
	"github.com/kamiza/kamiza/internal/catalog"
)

// Products lists catalog entries.
type Products []catalog.Product

func (p Products) Title() string    { return "Produkte" }
func (p Products) Header() []string { return []string{"ID", "Name", "Preis", "Größen"} }
func (p Products) Value() any       { return []catalog.Product(p) }

func (p Products) Rows() [][]string {
	rows := make([][]string, 0, len(p))
	for _, product := range p {
		price := ""
		if product.Price > 0 {
			price = fmt.Sprintf("%.2f €", product.Price)
		}
		rows = append(rows, []string{
			strings.Trim(string(product.ID), `"`),
			product.Name,
			price,
			strings.Join(product.Sizes, ", "),
		})
	}
	return rows
}

// Events lists backend events with their registration status at Now.
// Registration opens Period before the deadline; zero uses the backend
// default.
type Events struct {
	Items  []backend.Event
	Now    time.Time
	Period time.Duration
}

func (e Events) Title() string { return "Events" }
func (e Events) Header() []string {
	return []string{"ID", "Beschreibung", "Datum", "Anmeldeschluss", "Status", "Optionen"}
}
func (e Events) Value() any { return e.Items }

func (e Events) Rows() [][]string {
	rows := make([][]string, 0, len(e.Items))
	for _, event := range e.Items {
		date := event.EventDateTimeFrom
		if strings.TrimSpace(date) == "" {
			date = event.EventDate
		}
		options := make([]string, 0, len(event.Options))
		for _, opt := range event.Options {
			options = append(options, opt.Description)
		}
		rows = append(rows, []string{
			strconv.Itoa(event.ID),
			event.Description,
			formatEventTime(event, date),
			formatEventTime(event, event.Deadline),
			registrationStatus(event, e.Now, e.Period),
			strings.Join(options, ", "),
		})
	}
	return rows
}

// formatEventTime shows date-only values as a date and date-times in the
// event's zone. Unparseable values are shown as received.
func formatEventTime(event backend.Event, value string) string {
	value = strings.TrimSpace(value)
	t, ok := backend.ParseTimestampIn(value, event.Zone())
	if !ok {
		return value
	}
	if len(value) == len("2006-01-02") {
		return t.Format("02.01.2006")
	}
	return t.In(event.Zone()).Format("02.01.2006 15:04")
}

func registrationStatus(event backend.Event, now time.Time, period time.Duration) string {
	status := event.Registration(now, period)
	if status != backend.RegistrationOpen {
		return status.String()
	}
	days, ok := event.DaysUntilDeadline(now)
	if !ok {
		return status.String()
	}
	return status.String() + ", " + relativeDeadline(days)
}

func relativeDeadline(days int) string {
	switch days {
	case 0:
		return "endet heute"
	case 1:
		return "endet morgen"
	default:
		return fmt.Sprintf("endet in %d Tagen", days)
	}
}
