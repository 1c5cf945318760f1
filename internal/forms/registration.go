package forms

import "strings"

// Registration is the event sign-up form.
type Registration struct {
	FirstName    string         `json:"firstname"`
	LastName     string         `json:"lastname"`
	Event        string         `json:"event"`
	Email        string         `json:"email"`
	Dojo         string         `json:"dojo"`
	Comments     string         `json:"comments"`
	Options      map[string]any `json:"options"`
	CaptchaToken string         `json:"captchatoken"`
}

// Validate returns nil when the registration is acceptable.
func (f Registration) Validate() Errors {
	errs := Errors{}
	if blank(f.FirstName) {
		errs.add("firstname", MsgFirstName)
	}
	if blank(f.LastName) {
		errs.add("lastname", MsgLastName)
	}
	if f.Event == "" {
		errs.add("event", MsgEvent)
	}
	if f.Email != "" && !validEmail(f.Email) {
		errs.add("email", MsgEmail)
	}
	if f.Dojo == "" {
		errs.add("dojo", MsgDojo)
	}
	for _, value := range f.Options {
		switch value.(type) {
		case nil, bool, float64, string:
		default:
			errs.add("options", MsgOption)
		}
	}
	if f.CaptchaToken == "" {
		errs.add("captchatoken", MsgCaptcha)
	}
	return errs.orNil()
}

// FullName joins first and last name.
func (f Registration) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName))
}

// SelectedOptions returns the option keys that are switched on, in the
// order given by keys.
func (f Registration) SelectedOptions(keys []string) []string {
	var out []string
	for _, key := range keys {
		switch v := f.Options[key].(type) {
		case bool:
			if v {
				out = append(out, key)
			}
		case float64:
			if v != 0 {
				out = append(out, key)
			}
		case string:
			if v != "" {
				out = append(out, key)
			}
		}
	}
	return out
}
