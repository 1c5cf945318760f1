package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/kamiza/kamiza/internal/forms"
)

var registrationHTML = template.Must(template.New("registration").Parse(`
{{- if .LogoURL}}<img src="{{.LogoURL}}" alt="Kamiza" width="120"><br>{{end -}}
<h1>Hallo {{.Name}}</h1>
<p>Vielen Dank für deine Anmeldung zu <strong>{{.Event}}</strong>.</p>
<p>Dojo: {{.Dojo}}</p>
{{- if .Options}}
<p>Optionen:</p>
<ul>{{range .Options}}<li>{{.}}</li>{{end}}</ul>
{{- end}}
{{- if .Comments}}
<p>Kommentare:<br>{{.Comments}}</p>
{{- end}}
`))

var orderHTML = template.Must(template.New("order").Parse(`
{{- if .LogoURL}}<img src="{{.LogoURL}}" alt="Kamiza" width="120"><br>{{end -}}
<h1>Hi {{.Name}}</h1>
<p>Folgende Artikel wurden bestellt:</p>
<ul>{{range .Items}}<li>{{.Quantity}} × {{.Name}}</li>{{end}}</ul>
{{- if .Comments}}
<p>Kommentare:<br>{{.Comments}}</p>
{{- end}}
`))

// RegistrationDetails carries what the registration mails show.
type RegistrationDetails struct {
	Form       forms.Registration
	EventTitle string
	Options    []string
	LogoURL    string
}

// RegistrationBodies renders subject, text and HTML for a registration.
func RegistrationBodies(d RegistrationDetails) (subject, text, html string, err error) {
	event := d.EventTitle
	if event == "" {
		event = d.Form.Event
	}
	name := d.Form.FullName()

	subject = fmt.Sprintf("Anmeldung %s: %s", event, name)

	var tb strings.Builder
	fmt.Fprintf(&tb, "Name: %s\n", name)
	fmt.Fprintf(&tb, "Event: %s\n", event)
	fmt.Fprintf(&tb, "Dojo: %s\n", d.Form.Dojo)
	if d.Form.Email != "" {
		fmt.Fprintf(&tb, "E-Mail: %s\n", d.Form.Email)
	}
	if len(d.Options) > 0 {
		fmt.Fprintf(&tb, "Optionen: %s\n", strings.Join(d.Options, ", "))
	}
	fmt.Fprintf(&tb, "Kommentare: %s\n", d.Form.Comments)

	html, err = execute(registrationHTML, map[string]any{
		"Name":     name,
		"Event":    event,
		"Dojo":     d.Form.Dojo,
		"Options":  d.Options,
		"Comments": commentLines(d.Form.Comments),
		"LogoURL":  d.LogoURL,
	})
	return subject, tb.String(), html, err
}

// OrderBodies renders subject, text and HTML for an order.
func OrderBodies(order forms.Order, logoURL string) (subject, text, html string, err error) {
	items := order.Ordered()
	subject = fmt.Sprintf("Bestellung von %s", order.Name)

	var tb strings.Builder
	fmt.Fprintf(&tb, "Name: %s\n", order.Name)
	tb.WriteString("Artikel:\n")
	for _, item := range items {
		fmt.Fprintf(&tb, "  %s x %s\n", item.Quantity, item.Name)
	}
	if order.Email != "" {
		fmt.Fprintf(&tb, "E-Mail: %s\n", order.Email)
	}
	fmt.Fprintf(&tb, "Kommentare: %s\n", order.Comments)

	html, err = execute(orderHTML, map[string]any{
		"Name":     order.Name,
		"Items":    items,
		"Comments": commentLines(order.Comments),
		"LogoURL":  logoURL,
	})
	return subject, tb.String(), html, err
}

// commentLines escapes user text and keeps its line breaks.
func commentLines(s string) template.HTML {
	if s == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>")) // #nosec G203 -- input escaped above
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}
