package hierarchy

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// idPattern admits Drive ids and Graph item ids ("8A1B!123")
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_.!-]+$`)

// ValidateID rejects ids no provider would issue before any call is made
func ValidateID(id string) error {
	return validation.Validate(id,
		validation.Required,
		validation.Length(1, 256),
		validation.Match(idPattern),
	)
}
