package mailer

import (
	"fmt"
	"strings"
	"time"

	"github.com/kamiza/kamiza/internal/backend"
)

const icsTimeLayout = "20060102T150405Z"

// CalendarContentType is the MIME type of ICS attachments.
const CalendarContentType = "text/calendar"

// ICS renders a single-event calendar for e. It returns nil when the event
// has no parseable start time.
func ICS(e backend.Event, now time.Time) []byte {
	start, ok := e.Start()
	if !ok {
		return nil
	}
	end, _ := e.End()

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//kamiza//events//DE",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		fmt.Sprintf("UID:event-%d-%s@kamiza", e.ID, start.UTC().Format("20060102")),
		"DTSTAMP:" + now.UTC().Format(icsTimeLayout),
		"DTSTART:" + start.UTC().Format(icsTimeLayout),
		"DTEND:" + end.UTC().Format(icsTimeLayout),
		"SUMMARY:" + icsEscape(e.Description),
	}
	if e.Note != "" {
		lines = append(lines, "DESCRIPTION:"+icsEscape(e.Note))
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR")

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(fold(line))
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}

// CalendarAttachment wraps ICS output as an attachment, or returns false.
func CalendarAttachment(e backend.Event, now time.Time) (Attachment, bool) {
	data := ICS(e, now)
	if data == nil {
		return Attachment{}, false
	}
	return Attachment{Name: "event.ics", ContentType: CalendarContentType, Data: data}, true
}

var icsReplacer = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

func icsEscape(s string) string {
	return icsReplacer.Replace(s)
}

// fold splits content lines longer than 75 octets.
func fold(line string) string {
	const limit = 75
	if len(line) <= limit {
		return line
	}
	var b strings.Builder
	width := 0
	for _, r := range line {
		size := len(string(r))
		if width+size > limit {
			b.WriteString("\r\n ")
			width = 1
		}
		b.WriteRune(r)
		width += size
	}
	return b.String()
}
