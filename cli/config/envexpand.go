// Package config handles numstore.yaml loading for the numstore CLI.
package config

import (
	"os"
	"regexp"
)

// envRef matches ${VAR} and ${VAR:-default}.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv substitutes environment references in a config document:
//   - ${VAR} becomes the value of VAR, or "" when unset
//   - ${VAR:-default} becomes the value of VAR, or default when unset or empty
//
// Missing values are not an error here. Config.Validate reports the
// fields that end up empty but are required, such as notify.url.
func ExpandEnv(input string) string {
	return envRef.ReplaceAllStringFunc(input, func(ref string) string {
		m := envRef.FindStringSubmatch(ref)
		if v := os.Getenv(m[1]); v != "" {
			return v
		}
		return m[2]
	})
}
