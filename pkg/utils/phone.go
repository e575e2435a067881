package utils

import (
	"strings"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
)

const (
	phoneRequiredMsg = "Phone number is required"
	phoneInvalidMsg  = "Invalid phone number format. Please include country code or use 10-digit US number."
)

// NormalizePhone formats a free-form phone number as +<digits>, assuming a US
// number when no country code can be recognized. The first matching rule wins.
func NormalizePhone(raw string) (string, error) {
	hasPlus := strings.HasPrefix(raw, "+")

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case digits == "":
		return "", phoneError(phoneRequiredMsg)
	case hasPlus && len(digits) == 10 && digits[0] == '1':
		// +1 followed by a 9 digit local number, as produced by the short-form rules below
		return "+" + digits, nil
	case len(digits) == 10:
		return "+1" + digits, nil
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits, nil
	case hasPlus && len(digits) == 9:
		return "+1" + digits, nil
	case strings.HasPrefix(raw, "00"):
		// 00 becomes +; the result goes through the ladder again so it is a fixed point
		return NormalizePhone("+" + digits[2:])
	case hasPlus && len(digits) >= 11:
		return "+" + digits, nil
	case len(digits) == 9 && strings.ContainsRune("2345", rune(digits[0])):
		return "+1" + digits, nil
	}

	return "", phoneError(phoneInvalidMsg)
}

// NormalizeOptionalPhone leaves an empty number empty and normalizes anything else.
func NormalizeOptionalPhone(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return NormalizePhone(raw)
}

type phoneValidationError struct {
	*apperrors.ValidationError
}

func (e phoneValidationError) Is(target error) bool {
	return target == apperrors.ErrInvalidPhoneNumber
}

func (e phoneValidationError) Unwrap() error {
	return e.ValidationError
}

func phoneError(msg string) error {
	return phoneValidationError{apperrors.NewValidation("phone_number", "invalid_phone", msg)}
}
