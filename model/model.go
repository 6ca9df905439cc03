package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidAgent is returned by Validate for agents that cannot be stored.
var ErrInvalidAgent = errors.New("invalid agent")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Agent is a named persona with the color its UI elements are tinted with.
// Color is stored as given; unknown colors resolve to fallback classes.
type Agent struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Persona   string    `json:"persona,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the fields a stored agent must carry.
func (a Agent) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidAgent)
	}
	if !slugPattern.MatchString(a.Slug) {
		return fmt.Errorf("%w: slug %q must be lowercase letters, digits and dashes", ErrInvalidAgent, a.Slug)
	}
	return nil
}

// Slugify derives a slug from a display name.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
