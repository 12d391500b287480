package config

import "testing"

func TestExpandEnv(t *testing.T) {
	t.Setenv("NS_BUCKET", "datasets")
	t.Setenv("NS_REGION", "eu-central-1")
	t.Setenv("NS_EMPTY", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set var", "path: ${NS_BUCKET}", "path: datasets"},
		{"unset var", "path: ${NS_UNSET_12345}", "path: "},
		{"default when unset", "level: ${NS_UNSET_12345:-info}", "level: info"},
		{"default ignored when set", "region: ${NS_REGION:-us-east-1}", "region: eu-central-1"},
		{"default when empty", "path: ${NS_EMPTY:-fallback}", "path: fallback"},
		{"empty default", "path: ${NS_UNSET_12345:-}", "path: "},
		{"several refs", "${NS_BUCKET}/${NS_REGION}", "datasets/eu-central-1"},
		{"no refs", "no variables here", "no variables here"},
		{"bare dollar untouched", "price: $NS_BUCKET", "price: $NS_BUCKET"},
		{"invalid name untouched", "x: ${1BAD}", "x: ${1BAD}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandEnv_NestedInYAML(t *testing.T) {
	t.Setenv("NS_REDIS", "redis://cache:6379/2")
	t.Setenv("NS_TOKEN", "secret")

	input := `notify:
  type: webhook
  url: ${NS_HOOK:-https://hooks.internal/numstore}
  headers:
    Authorization: Bearer ${NS_TOKEN}
# ${NS_REDIS}`

	want := `notify:
  type: webhook
  url: https://hooks.internal/numstore
  headers:
    Authorization: Bearer secret
# redis://cache:6379/2`

	if got := ExpandEnv(input); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
