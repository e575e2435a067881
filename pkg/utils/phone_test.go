package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/timkado/api/agency-core/internal/apperrors"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "ten digit us number", raw: "4155552671", expected: "+14155552671"},
		{name: "formatted ten digit", raw: "(415) 555-2671", expected: "+14155552671"},
		{name: "eleven digits with leading one", raw: "14155552671", expected: "+14155552671"},
		{name: "already canonical", raw: "+14155552671", expected: "+14155552671"},
		{name: "plus with nine digits", raw: "+415555267", expected: "+1415555267"},
		{name: "double zero prefix", raw: "00442071234567", expected: "+442071234567"},
		{name: "double zero prefix with short remainder", raw: "00123456789", expected: "+1123456789"},
		{name: "international with plus", raw: "+44 20 7123 4567", expected: "+442071234567"},
		{name: "nine digits plausible area code", raw: "415555267", expected: "+1415555267"},
		{name: "plus one short form kept", raw: "+1415555267", expected: "+1415555267"},
		{name: "plus and ten digits not starting with one", raw: "+4155552671", expected: "+14155552671"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizePhone_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		message string
	}{
		{name: "empty", raw: "", message: "Phone number is required"},
		{name: "letters only", raw: "call me", message: "Phone number is required"},
		{name: "too short", raw: "12345", message: "Invalid phone number format. Please include country code or use 10-digit US number."},
		{name: "nine digits bad area code", raw: "915555267", message: "Invalid phone number format. Please include country code or use 10-digit US number."},
		{name: "twelve digits without plus", raw: "442071234567", message: "Invalid phone number format. Please include country code or use 10-digit US number."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizePhone(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidPhoneNumber)
			assert.ErrorIs(t, err, apperrors.ErrValidation)

			fields := apperrors.FieldErrors(err)
			require.Len(t, fields, 1)
			assert.Equal(t, "phone_number", fields[0].Field)
			assert.Equal(t, tt.message, fields[0].Message)
		})
	}
}

func TestNormalizePhone_TenAndElevenDigitProperties(t *testing.T) {
	for _, d := range []string{"2125550100", "9999999999", "0000000000", "1234567890"} {
		got, err := NormalizePhone(d)
		require.NoError(t, err)
		assert.Equal(t, "+1"+d, got)
	}
	for _, d := range []string{"12125550100", "19999999999", "10000000000"} {
		got, err := NormalizePhone(d)
		require.NoError(t, err)
		assert.Equal(t, "+"+d, got)
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	inputs := []string{
		"4155552671", "14155552671", "+415555267", "00442071234567", "+44 20 7123 4567",
		"415555267", "+1 (415) 555-2671", "0049301234567", "+861012345678", "+4155552671",
		"0012345678901", "00123456789",
	}
	for _, in := range inputs {
		first, err := NormalizePhone(in)
		require.NoError(t, err, in)
		second, err := NormalizePhone(first)
		require.NoError(t, err, in)
		assert.Equal(t, first, second, "input %q", in)
	}
}

func TestNormalizeOptionalPhone(t *testing.T) {
	got, err := NormalizeOptionalPhone("  ")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = NormalizeOptionalPhone("4155552671")
	require.NoError(t, err)
	assert.Equal(t, "+14155552671", got)
}
