package skills

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// MaxNameLength is the longest allowed skill name.
const MaxNameLength = 40

var namePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ErrInvalidName is returned for names that break the naming rules.
var ErrInvalidName = errors.New("invalid skill name")

// ValidateName checks that name is a hyphen-case identifier of lowercase
// letters, digits and single hyphens, at most MaxNameLength long.
func ValidateName(name string) error {
	if name == "" {
		return errors.Wrap(ErrInvalidName, "name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return errors.Wrapf(ErrInvalidName, "%q is longer than %d characters", name, MaxNameLength)
	}
	if !namePattern.MatchString(name) {
		return errors.Wrapf(ErrInvalidName, "%q must be hyphen-case (lowercase letters, digits and hyphens)", name)
	}
	return nil
}

// TitleCase turns "data-analyzer" into "Data Analyzer".
func TitleCase(name string) string {
	words := strings.Split(name, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// Spaced turns "data-analyzer" into "data analyzer".
func Spaced(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", " ")
}
