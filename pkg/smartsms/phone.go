package smartsms

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidRecipient is returned when a phone number cannot be normalized to
// the national 8801XXXXXXXXX format. No network call is made in that case.
var ErrInvalidRecipient = errors.New("recipient phone number is not a valid Bangladeshi mobile number")

// recipientPattern is the wire format the gateway accepts: country code 880
// followed by a mobile number starting with 1, eleven digits total after 88.
var recipientPattern = regexp.MustCompile(`^8801\d{9}$`)

// NormalizeRecipient converts common Bangladeshi phone spellings to the
// 8801XXXXXXXXX wire format:
//
//	+8801712345678 -> 8801712345678
//	01712345678    -> 8801712345678
//
// Spaces and dashes are stripped first. An error is returned when the result
// does not match the wire format.
func NormalizeRecipient(phone string) (string, error) {
	n := strings.NewReplacer(" ", "", "-", "").Replace(phone)
	switch {
	case strings.HasPrefix(n, "+880"):
		n = n[1:]
	case strings.HasPrefix(n, "01"):
		n = "88" + n
	}
	if !recipientPattern.MatchString(n) {
		return "", ErrInvalidRecipient
	}
	return n, nil
}
