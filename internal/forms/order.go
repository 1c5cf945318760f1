package forms

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Quantity is an optional, possibly malformed amount. Empty strings and null
// leave it unset; non-numeric input is kept as Invalid so validation can
// report it against the field.
type Quantity struct {
	Value   float64
	Set     bool
	Invalid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	*q = Quantity{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			q.Invalid = true
			return nil
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
		value, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			q.Invalid = true
			return nil
		}
		q.Value, q.Set = value, true
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		q.Invalid = true
		return nil
	}
	q.Value, q.Set = value, true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.Set {
		return []byte("null"), nil
	}
	return json.Marshal(q.Value)
}

// String renders the amount for mails; unset amounts render as "0".
func (q Quantity) String() string {
	if !q.Set {
		return "0"
	}
	return strconv.FormatFloat(q.Value, 'f', -1, 64)
}

// OrderItem is one line of an order.
type OrderItem struct {
	Name     string   `json:"name"`
	Quantity Quantity `json:"quantity"`
}

// Order is the merchandise order form.
type Order struct {
	Name         string      `json:"name"`
	Products     []OrderItem `json:"products"`
	Email        string      `json:"email"`
	Comments     string      `json:"comments"`
	CaptchaToken string      `json:"captchatoken"`
}

// Validate returns nil when the order is acceptable.
func (f Order) Validate() Errors {
	errs := Errors{}
	if blank(f.Name) {
		errs.add("name", MsgName)
	}
	for _, item := range f.Products {
		switch {
		case item.Quantity.Invalid:
			errs.add("products", MsgQuantity)
		case item.Quantity.Set && item.Quantity.Value < 0:
			errs.add("products", MsgNegative)
		}
	}
	if f.Email != "" && !validEmail(f.Email) {
		errs.add("email", MsgEmail)
	}
	if f.CaptchaToken == "" {
		errs.add("captchatoken", MsgCaptcha)
	}
	return errs.orNil()
}

// Ordered returns the items with a positive quantity.
func (f Order) Ordered() []OrderItem {
	var out []OrderItem
	for _, item := range f.Products {
		if item.Quantity.Set && item.Quantity.Value > 0 {
			out = append(out, item)
		}
	}
	return out
}
