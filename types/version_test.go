package types //nolint:revive // types is a valid package name

import (
	"regexp"
	"testing"
)

func TestVersion_Format(t *testing.T) {
	// Version should be a valid semver
	semverRegex := regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	if !semverRegex.MatchString(Version) {
		t.Errorf("Version %q is not a valid semver", Version)
	}
}

func TestFormatVersion_Positive(t *testing.T) {
	// Descriptors written with version 0 would be indistinguishable from
	// an unset field.
	if FormatVersion < 1 {
		t.Errorf("FormatVersion = %d, want >= 1", FormatVersion)
	}
}
