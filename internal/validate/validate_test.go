package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContact() ContactRequest {
	return ContactRequest{
		Name:    "Ali Rezaei",
		Email:   "ali@example.com",
		Phone:   "+98 (912) 345-6789",
		Message: "I want to automate my support inbox.",
		Consent: true,
	}
}

func TestContactValid(t *testing.T) {
	res := Check(validContact())
	require.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestContactMissingRequiredFields(t *testing.T) {
	res := Check(ContactRequest{})
	require.False(t, res.Valid)

	fields := res.FieldMap()
	for _, f := range []string{"name", "email", "message", "consent"} {
		assert.Contains(t, fields, f, "expected error for %s", f)
	}

	// each missing field is reported exactly once
	seen := map[string]int{}
	for _, e := range res.Errors {
		seen[e.Field]++
	}
	for f, n := range seen {
		assert.Equal(t, 1, n, "field %s reported %d times", f, n)
	}
}

func TestContactConsentMustBeTrue(t *testing.T) {
	req := validContact()
	req.Consent = false
	res := Check(req)
	require.False(t, res.Valid)
	assert.Contains(t, res.FieldMap(), "consent")
}

func TestContactMessageBounds(t *testing.T) {
	req := validContact()
	req.Message = "too short"
	res := Check(req)
	require.False(t, res.Valid)
	assert.Contains(t, res.FieldMap(), "message")
}

func TestPhoneShapes(t *testing.T) {
	cases := []struct {
		phone string
		valid bool
	}{
		{"+98 912 345 6789", true},
		{"(021) 8877-6655", true},
		{"12345", false},
		{"call me maybe", false},
	}
	for _, tc := range cases {
		req := validContact()
		req.Phone = tc.phone
		res := Check(req)
		assert.Equal(t, tc.valid, res.Valid, "phone %q", tc.phone)
	}
}

func TestLeadServiceTypeEnum(t *testing.T) {
	req := LeadRequest{
		Name:        "Sara",
		Email:       "sara@example.com",
		Message:     "Need an automation audit for my store.",
		ServiceType: "time_travel",
		Consent:     true,
	}
	res := Check(req)
	require.False(t, res.Valid)
	assert.Contains(t, res.FieldMap(), "service_type")

	req.ServiceType = "automation"
	assert.True(t, Check(req).Valid)
}

func validIntake() AgentIntake {
	return AgentIntake{
		BusinessType: "retail",
		Goal:         "more_leads",
		Channels:     []string{"website", "instagram"},
		Budget:       "500_2000",
		Website:      "shop.example.com",
	}
}

func TestAgentSessionValid(t *testing.T) {
	res := Check(AgentSessionRequest{Intake: validIntake()})
	assert.True(t, res.Valid, "errors: %v", res.Errors)
}

func TestAgentSessionChannels(t *testing.T) {
	req := AgentSessionRequest{Intake: validIntake()}
	req.Intake.Channels = nil
	res := Check(req)
	require.False(t, res.Valid)
	assert.Contains(t, res.FieldMap(), "intake.channels")

	req.Intake.Channels = []string{"website", "carrier_pigeon"}
	res = Check(req)
	require.False(t, res.Valid)
}

func TestAgentSessionWebsiteShapes(t *testing.T) {
	cases := []struct {
		website string
		valid   bool
	}{
		{"https://example.com/shop", true},
		{"example.com", true},
		{"sub.example.co", true},
		{"not a domain", false},
		{"ftp://example.com", false},
	}
	for _, tc := range cases {
		req := AgentSessionRequest{Intake: validIntake()}
		req.Intake.Website = tc.website
		res := Check(req)
		assert.Equal(t, tc.valid, res.Valid, "website %q: %v", tc.website, res.Errors)
	}
}

func TestOrderConfirmHoneypot(t *testing.T) {
	req := OrderConfirmRequest{
		OrderID: "ord_1",
		Email:   "buyer@example.com",
		HPToken: "bot",
	}
	res := Check(req)
	require.False(t, res.Valid)
	assert.True(t, res.Has("hp_token"))
}
