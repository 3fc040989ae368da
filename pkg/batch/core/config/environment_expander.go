package config

import (
	"os"
	"strings"
)

// EnvironmentExpander expands environment variable placeholders in raw configuration
// bytes before they are parsed.
type EnvironmentExpander interface {
	// Expand returns input with its placeholders replaced.
	//
	// Parameters:
	//   input: Raw YAML that may contain ${VAR}, ${VAR:-default} or $VAR.
	//
	// Returns:
	//   The expanded bytes, and an error if expansion fails.
	Expand(input []byte) ([]byte, error)
}

// OsEnvironmentExpander resolves placeholders from the process environment.
// ${VAR:-default} yields default when VAR is unset or empty; any other unset
// variable expands to an empty string.
type OsEnvironmentExpander struct {
	lookup func(string) (string, bool)
}

// NewOsEnvironmentExpander creates an expander over os.LookupEnv.
func NewOsEnvironmentExpander() *OsEnvironmentExpander {
	return &OsEnvironmentExpander{lookup: os.LookupEnv}
}

// Expand implements EnvironmentExpander. The error is always nil.
func (e *OsEnvironmentExpander) Expand(input []byte) ([]byte, error) {
	return []byte(os.Expand(string(input), e.resolve)), nil
}

func (e *OsEnvironmentExpander) resolve(placeholder string) string {
	name, fallback, hasFallback := strings.Cut(placeholder, ":-")
	value, ok := e.lookup(name)
	if hasFallback && (!ok || value == "") {
		return fallback
	}
	return value
}
