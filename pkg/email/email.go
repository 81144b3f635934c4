package email

import (
	"strings"

	"github.com/asaskevich/govalidator"
)

// Normalize canonicalizes an address for storage and comparison. Restaurant
// email uniqueness is case-insensitive, so every store and lookup goes through
// this before touching a map key or a database column.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// IsValid reports whether the address is syntactically plausible. It does not
// prove deliverability; the verification code round-trip does that.
func IsValid(address string) bool {
	return govalidator.IsEmail(strings.TrimSpace(address))
}
