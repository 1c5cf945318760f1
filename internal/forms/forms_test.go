package forms

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() Registration {
	return Registration{
		FirstName:    "Aiko",
		LastName:     "Tanaka",
		Event:        "12",
		Email:        "aiko@example.org",
		Dojo:         "Nord",
		Options:      map[string]any{"overnight": true},
		CaptchaToken: "tok",
	}
}

func TestRegistrationValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Registration)
		want   Errors
	}{
		{"valid", func(*Registration) {}, nil},
		{"empty email allowed", func(r *Registration) { r.Email = "" }, nil},
		{"missing names", func(r *Registration) { r.FirstName = " "; r.LastName = "" }, Errors{"firstname": MsgFirstName, "lastname": MsgLastName}},
		{"missing event and dojo", func(r *Registration) { r.Event = ""; r.Dojo = "" }, Errors{"event": MsgEvent, "dojo": MsgDojo}},
		{"bad email", func(r *Registration) { r.Email = "not-an-email" }, Errors{"email": MsgEmail}},
		{"display name rejected", func(r *Registration) { r.Email = "Aiko <aiko@example.org>" }, Errors{"email": MsgEmail}},
		{"nested option", func(r *Registration) { r.Options["x"] = map[string]any{"a": 1} }, Errors{"options": MsgOption}},
		{"missing captcha", func(r *Registration) { r.CaptchaToken = "" }, Errors{"captchatoken": MsgCaptcha}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validRegistration()
			tt.mutate(&form)
			assert.Equal(t, tt.want, form.Validate())
		})
	}
}

func TestRegistrationHelpers(t *testing.T) {
	form := validRegistration()
	form.Options = map[string]any{"overnight": true, "meal": false, "shirt": "M", "count": float64(0)}
	assert.Equal(t, "Aiko Tanaka", form.FullName())
	assert.Equal(t, []string{"overnight", "shirt"}, form.SelectedOptions([]string{"overnight", "meal", "shirt", "count", "missing"}))
}

func TestDecodeRegistration(t *testing.T) {
	var form Registration
	err := Decode(strings.NewReader(`{"firstname":"A","lastname":"B","event":"1","dojo":"Süd","captchatoken":"x","options":{"meal":1}}`), &form)
	require.NoError(t, err)
	assert.Equal(t, "Süd", form.Dojo)
	assert.Equal(t, float64(1), form.Options["meal"])
	assert.Nil(t, form.Validate())

	require.Error(t, Decode(strings.NewReader(`{`), &form))
	require.Error(t, Decode(strings.NewReader(``), &form))
}

func TestQuantityUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Quantity
	}{
		{`3`, Quantity{Value: 3, Set: true}},
		{`"2"`, Quantity{Value: 2, Set: true}},
		{`""`, Quantity{}},
		{`null`, Quantity{}},
		{`"drei"`, Quantity{Invalid: true}},
		{`true`, Quantity{Invalid: true}},
	}
	for _, tt := range tests {
		var q Quantity
		require.NoError(t, json.Unmarshal([]byte(tt.in), &q), tt.in)
		assert.Equal(t, tt.want, q, tt.in)
	}
}

func TestOrderValidate(t *testing.T) {
	var form Order
	require.NoError(t, Decode(strings.NewReader(`{
		"name":"Kenji",
		"products":[{"name":"Gi","quantity":1},{"name":"Gürtel","quantity":""}],
		"email":"",
		"captchatoken":"tok"
	}`), &form))
	assert.Nil(t, form.Validate())
	require.Len(t, form.Ordered(), 1)
	assert.Equal(t, "Gi", form.Ordered()[0].Name)
	assert.Equal(t, "1", form.Ordered()[0].Quantity.String())

	form.Name = ""
	form.Products = append(form.Products, OrderItem{Name: "Tasche", Quantity: Quantity{Value: -1, Set: true}})
	form.Email = "kenji@"
	form.CaptchaToken = ""
	assert.Equal(t, Errors{
		"name":         MsgName,
		"products":     MsgNegative,
		"email":        MsgEmail,
		"captchatoken": MsgCaptcha,
	}, form.Validate())
}

func TestOrderInvalidQuantity(t *testing.T) {
	var form Order
	require.NoError(t, Decode(strings.NewReader(`{"name":"K","products":[{"name":"Gi","quantity":"viele"}],"captchatoken":"t"}`), &form))
	assert.Equal(t, Errors{"products": MsgQuantity}, form.Validate())
}
