package phoneAuth

import "strings"

const (
	minPhoneDigits = 8
	maxPhoneDigits = 15
)

// NormalizePhone returns the canonical form of a phone number: its digits only,
// with spaces, dashes, dots, parentheses and a single leading '+' removed.
// Numbers with fewer than 8 or more than 15 digits are rejected with
// ErrInvalidPhone.
//
// The canonical form is the identity used in every counter key, so
// "+86 138-0000-0000" and "8613800000000" share quotas and lockouts.
func NormalizePhone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "+")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", ErrInvalidPhone
		}
	}

	out := b.String()
	if len(out) < minPhoneDigits || len(out) > maxPhoneDigits {
		return "", ErrInvalidPhone
	}
	return out, nil
}
