package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/numstore/cli/config"
	"github.com/pithecene-io/numstore/errs"
	"github.com/pithecene-io/numstore/notify"
	"github.com/pithecene-io/numstore/notify/redis"
	"github.com/pithecene-io/numstore/notify/webhook"
)

// writeConfig writes a numstore.yaml rooted in a temp dir using the fs backend.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`work_dir: %s
staging_dir: %s
seed: 7
storage:
  backend: fs
  path: %s
%s`, filepath.Join(dir, "work"), filepath.Join(dir, "staging"), filepath.Join(dir, "data"), extra)
	path := filepath.Join(dir, "numstore.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

type result struct {
	stdout string
	stderr string
	err    error
}

// exitCode returns the exit code the binary would use for r.
func (r result) exitCode() int {
	if r.err == nil {
		return exitSuccess
	}
	var ec cli.ExitCoder
	if errors.As(r.err, &ec) {
		return ec.ExitCode()
	}
	return ExitCode(r.err)
}

// run executes the CLI. Command flags must precede the KEY argument.
func run(t *testing.T, cfg string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := NewApp("test")
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}

	argv := append([]string{"numstore", "--config", cfg, "--format", "json"}, args...)
	err := app.Run(argv)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func mustRun(t *testing.T, cfg string, args ...string) string {
	t.Helper()
	r := run(t, cfg, args...)
	if r.err != nil {
		t.Fatalf("numstore %s: %v\nstderr: %s", strings.Join(args, " "), r.err, r.stderr)
	}
	return r.stdout
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("invalid JSON %q: %v", s, err)
	}
	return v
}

type datasetJSON struct {
	Key         string `json:"key"`
	Kind        string `json:"kind"`
	ElementType string `json:"element_type"`
	Length      uint64 `json:"length"`
	Rows        uint64 `json:"rows"`
	Cols        uint64 `json:"cols"`
	Bytes       int64  `json:"bytes"`
}

func TestGenerateAndReadArray(t *testing.T) {
	cfg := writeConfig(t, "")

	out := mustRun(t, cfg, "generate", "array", "ordered",
		"--owner", "alice", "--name", "seq", "--type", "int32",
		"--size", "6", "--start", "0", "--step", "10", "--interval", "2")
	ds := decode[datasetJSON](t, out)
	if ds.Key != "alice/seq.array" || ds.Kind != "array" || ds.ElementType != "int32" || ds.Length != 6 {
		t.Errorf("unexpected dataset: %+v", ds)
	}
	if ds.Bytes != 16+6*4 {
		t.Errorf("bytes = %d, want %d", ds.Bytes, 16+6*4)
	}

	out = mustRun(t, cfg, "read", "array", "--page", "2", "--limit", "4", "alice/seq.array")
	page := decode[struct {
		Data          []int64 `json:"data"`
		Page          int     `json:"page"`
		TotalPages    uint64  `json:"total_pages"`
		TotalElements uint64  `json:"total_elements"`
	}](t, out)
	if fmt.Sprint(page.Data) != "[20 20]" {
		t.Errorf("data = %v, want [20 20]", page.Data)
	}
	if page.Page != 2 || page.TotalPages != 2 || page.TotalElements != 6 {
		t.Errorf("unexpected page metadata: %+v", page)
	}
}

func TestGenerateRandomArray_DescriptorHint(t *testing.T) {
	cfg := writeConfig(t, "")

	mustRun(t, cfg, "generate", "array", "random",
		"--owner", "alice", "--name", "big", "--type", "uint64",
		"--size", "5", "--min", "18446744073709551610", "--max", "18446744073709551615")

	out := mustRun(t, cfg, "read", "array", "--limit", "5", "alice/big.array")
	page := decode[struct {
		Data        []uint64 `json:"data"`
		ElementType string   `json:"element_type"`
	}](t, out)
	if page.ElementType != "uint64" {
		t.Errorf("element_type = %q, want uint64", page.ElementType)
	}
	for _, v := range page.Data {
		if v < 18446744073709551610 {
			t.Errorf("value %d below min", v)
		}
	}
}

func TestGenerateAndReadMatrix(t *testing.T) {
	cfg := writeConfig(t, "")

	out := mustRun(t, cfg, "generate", "matrix", "ordered",
		"--owner", "alice", "--name", "grid.matrix", "--type", "int16",
		"--rows", "3", "--cols", "4")
	ds := decode[datasetJSON](t, out)
	if ds.Key != "alice/grid.matrix" || ds.Rows != 3 || ds.Cols != 4 {
		t.Errorf("unexpected dataset: %+v", ds)
	}

	out = mustRun(t, cfg, "read", "matrix",
		"--page-row", "2", "--limit-row", "2", "--page-col", "1", "--limit-col", "3", "alice/grid.matrix")
	page := decode[struct {
		Data          [][]int64 `json:"data"`
		TotalPagesRow uint64    `json:"total_pages_row"`
		TotalPagesCol uint64    `json:"total_pages_col"`
	}](t, out)
	if fmt.Sprint(page.Data) != "[[8 9 10]]" {
		t.Errorf("data = %v, want [[8 9 10]]", page.Data)
	}
	if page.TotalPagesRow != 2 || page.TotalPagesCol != 2 {
		t.Errorf("pages = %dx%d, want 2x2", page.TotalPagesRow, page.TotalPagesCol)
	}

	mustRun(t, cfg, "generate", "matrix", "random",
		"--owner", "alice", "--name", "noise", "--type", "float32",
		"--rows", "2", "--cols", "2", "--min", "-1", "--max", "1")
	out = mustRun(t, cfg, "read", "matrix", "alice/noise.matrix")
	noise := decode[struct {
		Data [][]float64 `json:"data"`
	}](t, out)
	if len(noise.Data) != 2 || len(noise.Data[0]) != 2 {
		t.Fatalf("noise = %v, want 2x2", noise.Data)
	}
}

func TestGenerateAndReadText(t *testing.T) {
	cfg := writeConfig(t, "")

	mustRun(t, cfg, "generate", "text", "--owner", "alice", "--name", "hello", "--text", "Hello, мир")
	out := mustRun(t, cfg, "read", "text", "alice/hello.txt")
	text := decode[struct {
		Key     string `json:"key"`
		Content string `json:"content"`
	}](t, out)
	if text.Key != "alice/hello.txt" || text.Content != "Hello, мир" {
		t.Errorf("unexpected text: %+v", text)
	}

	// Windows-1251 input is transcoded before storing.
	src := filepath.Join(t.TempDir(), "legacy.txt")
	if err := os.WriteFile(src, []byte{0xCF, 0xF0, 0xE8, 0xE2, 0xE5, 0xF2}, 0o644); err != nil {
		t.Fatal(err)
	}
	mustRun(t, cfg, "generate", "text", "--owner", "alice", "--name", "legacy", "--from-file", src)
	out = mustRun(t, cfg, "read", "text", "alice/legacy.txt")
	if got := decode[struct {
		Content string `json:"content"`
	}](t, out).Content; got != "Привет" {
		t.Errorf("content = %q, want Привет", got)
	}
}

func TestDelete(t *testing.T) {
	cfg := writeConfig(t, "")

	mustRun(t, cfg, "generate", "array", "ordered",
		"--owner", "bob", "--name", "gone", "--type", "uint8", "--size", "3")
	out := mustRun(t, cfg, "delete", "bob/gone.array")
	if resp := decode[DeleteResponse](t, out); !resp.Deleted || resp.Key != "bob/gone.array" {
		t.Errorf("unexpected delete response: %+v", resp)
	}

	r := run(t, cfg, "read", "array", "bob/gone.array")
	if r.exitCode() != exitNotFound {
		t.Errorf("exit code = %d, want %d (err: %v)", r.exitCode(), exitNotFound, r.err)
	}
	r = run(t, cfg, "delete", "bob/gone.array")
	if r.exitCode() != exitNotFound {
		t.Errorf("second delete exit code = %d, want %d", r.exitCode(), exitNotFound)
	}
}

func TestExitCodes(t *testing.T) {
	cfg := writeConfig(t, "")
	mustRun(t, cfg, "generate", "array", "ordered",
		"--owner", "alice", "--name", "a", "--type", "int8", "--size", "4")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unsupported type", []string{"generate", "array", "random", "--owner", "alice", "--name", "x",
			"--type", "complex128", "--size", "1", "--min", "0", "--max", "1"}, exitInvalidArgument},
		{"min above max", []string{"generate", "array", "random", "--owner", "alice", "--name", "x",
			"--type", "int8", "--size", "1", "--min", "5", "--max", "1"}, exitInvalidArgument},
		{"bad pattern", []string{"generate", "array", "ordered", "--owner", "alice", "--name", "x",
			"--type", "int8", "--size", "1", "--pattern", "sideways"}, exitInvalidArgument},
		{"bad owner", []string{"generate", "array", "ordered", "--owner", "../etc", "--name", "x",
			"--type", "int8", "--size", "1"}, exitInvalidArgument},
		{"text and file", []string{"generate", "text", "--owner", "alice", "--name", "t",
			"--text", "a", "--from-file", "b"}, exitInvalidArgument},
		{"text missing", []string{"generate", "text", "--owner", "alice", "--name", "t"}, exitInvalidArgument},
		{"zero limit", []string{"read", "array", "--limit", "0", "alice/a.array"}, exitInvalidArgument},
		{"missing key", []string{"read", "array"}, exitInvalidArgument},
		{"text tui", []string{"read", "text", "--tui", "alice/a.array"}, exitInvalidArgument},
		{"missing dataset", []string{"read", "array", "alice/none.array"}, exitNotFound},
		{"wrong kind", []string{"read", "matrix", "alice/a.array"}, exitInvalidArgument},
		{"missing file", []string{"generate", "text", "--owner", "alice", "--name", "t",
			"--from-file", filepath.Join(t.TempDir(), "nope.txt")}, exitNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, cfg, tt.args...)
			if got := r.exitCode(); got != tt.want {
				t.Errorf("exit code = %d, want %d (err: %v)", got, tt.want, r.err)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"invalid argument", errs.Errorf(errs.ErrInvalidArgument, "op", "", "x"), exitInvalidArgument},
		{"unsupported type", errs.Errorf(errs.ErrUnsupportedType, "op", "", "x"), exitInvalidArgument},
		{"not found", errs.Errorf(errs.ErrNotFound, "op", "k", "x"), exitNotFound},
		{"io", errs.Errorf(errs.ErrIO, "op", "k", "x"), exitIO},
		{"decode", errs.Errorf(errs.ErrDecode, "op", "k", "x"), exitIO},
		{"unsupported width", errs.Errorf(errs.ErrUnsupportedWidth, "op", "k", "x"), exitIO},
		{"network", errs.Errorf(errs.ErrNetwork, "op", "k", "x"), exitIO},
		{"wrapped", fmt.Errorf("outer: %w", errs.Errorf(errs.ErrNotFound, "op", "k", "x")), exitNotFound},
		{"other", errors.New("boom"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestConfigErrors(t *testing.T) {
	r := run(t, filepath.Join(t.TempDir(), "missing.yaml"), "read", "array", "a/b.array")
	if r.exitCode() != exitInvalidArgument {
		t.Errorf("missing config exit code = %d, want %d", r.exitCode(), exitInvalidArgument)
	}

	r = run(t, writeConfig(t, ""), "--log-level", "loud", "read", "array", "a/b.array")
	if r.exitCode() != exitInvalidArgument {
		t.Errorf("bad log level exit code = %d, want %d", r.exitCode(), exitInvalidArgument)
	}
}

func TestMetricsLoggedAtDebug(t *testing.T) {
	cfg := writeConfig(t, "log_level: debug\n")
	r := run(t, cfg, "generate", "array", "ordered",
		"--owner", "alice", "--name", "m", "--type", "int8", "--size", "2")
	if r.err != nil {
		t.Fatalf("generate: %v", r.err)
	}
	if !strings.Contains(r.stderr, `"message":"metrics"`) || !strings.Contains(r.stderr, `"datasets_generated":1`) {
		t.Errorf("expected metrics snapshot in debug log, got:\n%s", r.stderr)
	}
}

func TestWebhookNotification(t *testing.T) {
	var (
		mu     sync.Mutex
		events []notify.Event
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev notify.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := writeConfig(t, fmt.Sprintf("notify:\n  type: webhook\n  url: %s\n  retries: 0\n", srv.URL))
	mustRun(t, cfg, "generate", "array", "ordered",
		"--owner", "carol", "--name", "n", "--type", "float64", "--size", "3")
	mustRun(t, cfg, "delete", "carol/n.array")

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].EventType != notify.EventDatasetCreated || events[0].Key != "carol/n.array" || events[0].Owner != "carol" {
		t.Errorf("unexpected created event: %+v", events[0])
	}
	if events[1].EventType != notify.EventDatasetDeleted {
		t.Errorf("unexpected deleted event: %+v", events[1])
	}
}

func TestBuildNotifier(t *testing.T) {
	retries := 1
	tests := []struct {
		name    string
		cfg     config.NotifyConfig
		check   func(notify.Notifier) bool
		wantErr bool
	}{
		{"none", config.NotifyConfig{}, func(n notify.Notifier) bool { _, ok := n.(notify.Nop); return ok }, false},
		{"redis", config.NotifyConfig{Type: "redis", URL: "redis://localhost:6379/0", Retries: &retries},
			func(n notify.Notifier) bool { _, ok := n.(*redis.Notifier); return ok }, false},
		{"webhook", config.NotifyConfig{Type: "webhook", URL: "http://localhost/hook"},
			func(n notify.Notifier) bool { _, ok := n.(*webhook.Notifier); return ok }, false},
		{"bad redis url", config.NotifyConfig{Type: "redis", URL: "http://not-redis"}, nil, true},
		{"unknown", config.NotifyConfig{Type: "kafka", URL: "kafka://x"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := buildNotifier(&config.Config{Notify: tt.cfg})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer n.Close()
			if !tt.check(n) {
				t.Errorf("unexpected notifier type %T", n)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	out := mustRun(t, writeConfig(t, ""), "version")
	resp := decode[VersionResponse](t, out)
	if resp.Commit != "test" || resp.Version == "" || resp.FormatVersion < 1 {
		t.Errorf("unexpected version response: %+v", resp)
	}
}

func TestGlobalFlags(t *testing.T) {
	names := map[string]bool{}
	for _, f := range GlobalFlags() {
		names[f.Names()[0]] = true
	}
	for _, want := range []string{"config", "log-level", "format"} {
		if !names[want] {
			t.Errorf("GlobalFlags missing --%s", want)
		}
	}
}
