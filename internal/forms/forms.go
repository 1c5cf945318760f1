// Package forms decodes and validates the public submission forms. Messages
// are user-facing and therefore German.
package forms

import (
	"encoding/json"
	"fmt"
	"io"
	"net/mail"
	"strings"
)

// Field messages shown next to form inputs.
const (
	MsgFirstName = "Bitte gib deinen Vornamen ein"
	MsgLastName  = "Bitte gib deinen Nachnamen ein"
	MsgName      = "Bitte gib deinen Namen ein"
	MsgEvent     = "Bitte wähle ein Event aus"
	MsgDojo      = "Bitte wähle ein Dojo aus"
	MsgEmail     = "Bitte gib eine gültige E-Mail Adresse ein"
	MsgCaptcha   = "Bitte gib das Captcha ein"
	MsgQuantity  = "Bitte gib eine gültige Zahl ein"
	MsgNegative  = "Die Menge darf nicht negativ sein"
	MsgOption    = "Ungültige Option"
)

// Errors maps a form field to its first validation message.
type Errors map[string]string

func (e Errors) add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

func (e Errors) orNil() Errors {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Decode reads one JSON form body into dst.
func Decode(r io.Reader, dst any) error {
	if r == nil {
		return fmt.Errorf("empty request body")
	}
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		if err == io.EOF {
			return fmt.Errorf("empty request body")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func blank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// validEmail accepts a bare address; display names are rejected.
func validEmail(value string) bool {
	value = strings.TrimSpace(value)
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	return addr.Address == value && strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@")+1:], ".")
}
