package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kamiza/kamiza/internal/backend"
	apperrors "github.com/kamiza/kamiza/internal/errors"
	"github.com/kamiza/kamiza/internal/forms"
	"github.com/kamiza/kamiza/internal/mailer"
	"github.com/kamiza/kamiza/internal/metrics"
	"github.com/kamiza/kamiza/internal/observability"
	"github.com/kamiza/kamiza/internal/server/middleware"
)

// Register handles POST /api/register. Validation problems are reported as
// {"errors": {...}} with status 200.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var form forms.Registration
	if err := forms.Decode(r.Body, &form); err != nil {
		metrics.RecordSubmission("register", "malformed")
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "Die Eingaben sind fehlerhaft"))
		return
	}
	if errs := form.Validate(); errs != nil {
		metrics.RecordSubmission("register", "invalid")
		writeJSON(w, http.StatusOK, map[string]any{"errors": errs})
		return
	}

	event, found := a.lookupEvent(r.Context(), form.Event)
	details := mailer.RegistrationDetails{Form: form, LogoURL: a.Mail.LogoURL}
	var attachments []mailer.Attachment
	if found {
		details.EventTitle = event.Description
		details.Options = optionLabels(event, form)
		if att, ok := mailer.CalendarAttachment(event, a.now()); ok {
			attachments = append(attachments, att)
		}
	} else {
		details.Options = form.SelectedOptions(sortedKeys(form.Options))
	}

	subject, text, html, err := mailer.RegistrationBodies(details)
	if err != nil {
		respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "Anmeldung fehlgeschlagen"))
		return
	}

	if form.Email != "" {
		confirmation := mailer.Message{
			Kind:        "registration_confirmation",
			To:          []string{form.Email},
			Subject:     subject,
			Text:        text,
			HTML:        html,
			Attachments: attachments,
		}
		if err := mailer.Send(r.Context(), a.Mailer, confirmation); err != nil {
			a.mailFailed(w, r, "register", err)
			return
		}
	}

	if len(a.Mail.RegisterTo) > 0 {
		trainer := mailer.Message{
			Kind:    "registration",
			To:      a.Mail.RegisterTo,
			Subject: subject,
			Text:    text,
			HTML:    html,
		}
		if err := mailer.Send(r.Context(), a.Mailer, trainer); err != nil {
			a.mailFailed(w, r, "register", err)
			return
		}
	} else if observability.ServerLogger != nil {
		observability.ServerLogger.Warn("No trainer address configured, registration mail skipped",
			zap.String("requestID", middleware.GetRequestID(r.Context())))
	}

	metrics.RecordSubmission("register", "accepted")
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Order handles POST /api/order.
func (a *API) Order(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(backend.APIKeyHeader)
	if key == "" || key != a.APIKey {
		metrics.RecordSubmission("order", "forbidden")
		respondWithError(w, r, apperrors.NewNotFoundError("Forbidden"))
		return
	}

	var form forms.Order
	if err := forms.Decode(r.Body, &form); err != nil {
		metrics.RecordSubmission("order", "malformed")
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "Die Eingaben sind fehlerhaft"))
		return
	}
	if errs := form.Validate(); errs != nil {
		metrics.RecordSubmission("order", "invalid")
		writeJSON(w, http.StatusOK, map[string]any{"errors": errs})
		return
	}
	if len(a.Mail.OrderTo) == 0 {
		respondWithError(w, r, apperrors.NewConfigInvalidError("Empfänger-Mail fehlt"))
		return
	}

	subject, text, html, err := mailer.OrderBodies(form, a.Mail.LogoURL)
	if err != nil {
		respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "Bestellung fehlgeschlagen"))
		return
	}

	msg := mailer.Message{
		Kind:    "order",
		To:      a.Mail.OrderTo,
		Subject: subject,
		Text:    text,
		HTML:    html,
	}
	if form.Email != "" {
		msg.Bcc = []string{form.Email}
	}
	if err := mailer.Send(r.Context(), a.Mailer, msg); err != nil {
		a.mailFailed(w, r, "order", err)
		return
	}

	metrics.RecordSubmission("order", "accepted")
	writeJSON(w, http.StatusOK, map[string]any{"message": "Bestellung gesendet"})
}

func (a *API) mailFailed(w http.ResponseWriter, r *http.Request, form string, err error) {
	metrics.RecordSubmission(form, "mail_failed")
	message := "Anmeldung fehlgeschlagen"
	if form == "order" {
		message = "Bestellung fehlgeschlagen"
	}
	respondWithError(w, r, apperrors.WrapExternalService(r.Context(), err, message))
}

// lookupEvent finds the event a registration refers to, by id, title or the
// "<description> <year>" label the event page submits. The lookup is best
// effort: without it mails go out without a calendar entry.
func (a *API) lookupEvent(ctx context.Context, ref string) (backend.Event, bool) {
	if a.Backend == nil {
		return backend.Event{}, false
	}
	events, err := a.Backend.Events(ctx)
	if err != nil {
		if observability.ServerLogger != nil {
			observability.ServerLogger.Warn("Event lookup failed",
				zap.Error(err),
				zap.String("requestID", middleware.GetRequestID(ctx)))
		}
		return backend.Event{}, false
	}
	ref = strings.TrimSpace(ref)
	for _, event := range events {
		if strconv.Itoa(event.ID) == ref || strings.EqualFold(event.Description, ref) ||
			strings.EqualFold(event.Label(), ref) {
			return event, true
		}
	}
	return backend.Event{}, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// optionLabels lists the descriptions of the event options switched on in
// the form.
func optionLabels(event backend.Event, form forms.Registration) []string {
	keys := make([]string, 0, len(event.Options))
	labels := make(map[string]string, len(event.Options))
	for _, opt := range event.Options {
		keys = append(keys, opt.Slug)
		labels[opt.Slug] = opt.Description
	}
	selected := form.SelectedOptions(keys)
	out := make([]string, 0, len(selected))
	for _, slug := range selected {
		out = append(out, labels[slug])
	}
	return out
}
