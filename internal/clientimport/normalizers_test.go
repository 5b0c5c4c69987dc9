package clientimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPhoneE164(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"11999999999", "+11999999999"},
		{"+55 (11) 99999-9999", "+5511999999999"},
		{"55+11+999", "+5511999"},
		{"+55119999999999999999", "+551199999999999"},
		{"invalid-phone", "+"},
		{"   ", ""},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatPhoneE164(tc.in))
		})
	}
}

func TestFormatPhoneE164Idempotent(t *testing.T) {
	for _, phone := range []string{"+5511999999999", "+12025550123", "+447911123456"} {
		require.True(t, IsValidPhoneE164(phone))
		assert.Equal(t, phone, FormatPhoneE164(phone))
		assert.Equal(t, phone, FormatPhoneE164(FormatPhoneE164(phone)))
	}
}

func TestIsValidPhoneE164(t *testing.T) {
	assert.True(t, IsValidPhoneE164("+5511999999999"))
	assert.False(t, IsValidPhoneE164("5511999999999"))
	assert.False(t, IsValidPhoneE164("+0511999999999"))
	assert.False(t, IsValidPhoneE164("+1"))
	assert.False(t, IsValidPhoneE164("+"))
	assert.False(t, IsValidPhoneE164("+1234567890123456"))
}

func TestValidatePhoneE164Messages(t *testing.T) {
	assert.Equal(t, "", ValidatePhoneE164("+5511999999999"))
	assert.Equal(t, MsgPhoneRequired, ValidatePhoneE164(""))
	assert.Equal(t, MsgPhoneMissingPlus, ValidatePhoneE164("5511999999999"))
	assert.Equal(t, MsgPhoneInvalidFormat, ValidatePhoneE164("+"))
	assert.Equal(t, MsgPhoneInvalidFormat, ValidatePhoneE164("+0123"))
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"15/03/1985", "1985-03-15", true},
		{"15-03-1985", "1985-03-15", true},
		{"5/3/1985", "1985-03-05", true},
		{"1985-3-5", "1985-03-05", true},
		{"1985/03/15", "1985-03-15", true},
		{" 1985-03-15 ", "1985-03-15", true},
		{"not a date", "", false},
		{"15/03/85", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseTaxIDs(t *testing.T) {
	cpf, ok := ParseCPF("123.456.789-01")
	assert.True(t, ok)
	assert.Equal(t, "12345678901", cpf)

	_, ok = ParseCPF("1234567890")
	assert.False(t, ok)

	cnpj, ok := ParseCNPJ("12.345.678/0001-90")
	assert.True(t, ok)
	assert.Equal(t, "12345678000190", cnpj)

	_, ok = ParseCNPJ("12345678901")
	assert.False(t, ok)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"vip", "novo", "premium"}, ParseTags("vip;novo|premium"))
	assert.Equal(t, []string{"a", "b"}, ParseTags(" a ;; | b |"))
	assert.Nil(t, ParseTags(""))
	assert.Nil(t, ParseTags(" ; | "))
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"ativo":     StatusActive,
		"INATIVO":   StatusInactive,
		" Prospecto": StatusProspect,
		"churn":     StatusChurned,
		"cancelado": StatusChurned,
		"pausado":   StatusPaused,
		"active":    StatusActive,
		"Churned":   StatusChurned,
	}
	for in, want := range cases {
		got, ok := ParseStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseStatus("talvez")
	assert.False(t, ok)
	_, ok = ParseStatus("")
	assert.False(t, ok)
}

func TestParseEmail(t *testing.T) {
	email, ok := ParseEmail("  Joao@Email.COM ")
	assert.True(t, ok)
	assert.Equal(t, "joao@email.com", email)

	for _, bad := range []string{"not-an-email", "a@b", "a b@c.com", ""} {
		_, ok := ParseEmail(bad)
		assert.False(t, ok, bad)
	}
}
