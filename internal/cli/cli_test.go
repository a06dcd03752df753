package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sdejongh/extsort/internal/platform"
	"github.com/sdejongh/extsort/pkg/config"
	"github.com/sdejongh/extsort/pkg/output"
)

// isolate points the config and lock directories at temporary locations
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv(config.EnvConfigPath, "")
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func TestSortCommand(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFiles(t, root, "report.pdf", "photo.jpg", "notes")

	stdout, _, err := execute(t, context.Background(), "sort", root)
	if err != nil {
		t.Fatalf("sort failed: %v", err)
	}

	assertExists(t, filepath.Join(root, "pdf", "report.pdf"))
	assertExists(t, filepath.Join(root, "jpg", "photo.jpg"))
	assertExists(t, filepath.Join(root, "notes"))

	want := "Moved report.pdf to " + filepath.Join(root, "pdf") + "/"
	if !strings.Contains(stdout, want) {
		t.Errorf("output missing %q:\n%s", want, stdout)
	}
	if !strings.Contains(stdout, "Status: success") {
		t.Errorf("output missing status:\n%s", stdout)
	}
}

func TestSortCommandBucketPolicy(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFiles(t, root, "notes")

	if _, _, err := execute(t, context.Background(), "sort", root, "--empty-ext", "bucket", "--unsorted-bucket", "misc"); err != nil {
		t.Fatalf("sort failed: %v", err)
	}
	assertExists(t, filepath.Join(root, "misc", "notes"))
}

func TestSortCommandDryRun(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFiles(t, root, "a.txt")

	stdout, _, err := execute(t, context.Background(), "sort", root, "--dry-run")
	if err != nil {
		t.Fatalf("sort failed: %v", err)
	}
	assertExists(t, filepath.Join(root, "a.txt"))
	if _, err := os.Stat(filepath.Join(root, "txt")); !os.IsNotExist(err) {
		t.Error("dry run must not create buckets")
	}
	if !strings.Contains(stdout, "Would move a.txt") {
		t.Errorf("output missing dry-run line:\n%s", stdout)
	}
}

func TestSortCommandRefuseCollision(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "txt"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, root, "a.txt", filepath.Join("txt", "a.txt"))

	_, _, err := execute(t, context.Background(), "sort", root, "--collision", "refuse")
	if ExitCode(err) != 1 {
		t.Fatalf("expected exit code 1 for a partial pass, got %d (%v)", ExitCode(err), err)
	}
	assertExists(t, filepath.Join(root, "a.txt"))
}

func TestSortCommandJSONOutput(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFiles(t, root, "a.txt")

	stdout, _, err := execute(t, context.Background(), "sort", root, "-o", "json")
	if err != nil {
		t.Fatalf("sort failed: %v", err)
	}
	for _, want := range []string{`"type":"start"`, `"type":"moved"`, `"moved_file":"a.txt"`, `"type":"report"`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %s:\n%s", want, stdout)
		}
	}
}

func TestSortCommandReport(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFiles(t, root, "a.txt")
	reportPath := filepath.Join(t.TempDir(), "report.json")

	if _, _, err := execute(t, context.Background(), "sort", root, "-q", "--report", reportPath, "--report-format", "json"); err != nil {
		t.Fatalf("sort failed: %v", err)
	}
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), `"file": "a.txt"`) {
		t.Errorf("unexpected report:\n%s", data)
	}
}

func TestSortCommandInvalidRoot(t *testing.T) {
	isolate(t)
	missing := filepath.Join(t.TempDir(), "missing")

	_, _, err := execute(t, context.Background(), "sort", missing)
	if !errors.Is(err, platform.ErrInvalidWatchRoot) {
		t.Fatalf("expected ErrInvalidWatchRoot, got %v", err)
	}
	if ExitCode(err) != 1 {
		t.Errorf("ExitCode() = %d, want 1", ExitCode(err))
	}
}

func TestSortCommandInvalidFlags(t *testing.T) {
	isolate(t)
	root := t.TempDir()

	tests := [][]string{
		{"--empty-ext", "nowhere"},
		{"--collision", "merge"},
		{"-o", "xml"},
		{"--empty-ext", "bucket", "--unsorted-bucket", "a/b"},
	}
	for _, flags := range tests {
		args := append([]string{"sort", root}, flags...)
		if _, _, err := execute(t, context.Background(), args...); err == nil {
			t.Errorf("expected error for %v", flags)
		}
	}
}

func TestSortCommandLocked(t *testing.T) {
	isolate(t)
	root := t.TempDir()

	dir, err := platform.LockDir()
	if err != nil {
		t.Fatal(err)
	}
	lock, err := platform.AcquireRootLock(dir, root)
	if err != nil {
		t.Fatal(err)
	}
	defer lock.Release()

	_, _, err = execute(t, context.Background(), "sort", root)
	if !errors.Is(err, platform.ErrAlreadyWatched) {
		t.Fatalf("expected ErrAlreadyWatched, got %v", err)
	}
}

func TestSortCommandLogFile(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFiles(t, root, "a.txt")
	logPath := filepath.Join(t.TempDir(), "extsort.log")

	if _, _, err := execute(t, context.Background(), "sort", root, "--log-file", logPath, "--log-format", "json"); err != nil {
		t.Fatalf("sort failed: %v", err)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "Sort pass finished") {
		t.Errorf("log file missing pass summary:\n%s", data)
	}
}

func TestWatchCommand(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFiles(t, root, "a.txt")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The listener and the command goroutine share stdout
	var stdout, stderr lockedBuffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	reportPath := filepath.Join(t.TempDir(), "session.txt")
	cmd.SetArgs([]string{"watch", root, "--delay", "10ms", "--report", reportPath})

	errCh := make(chan error, 1)
	go func() { errCh <- cmd.ExecuteContext(ctx) }()

	waitFor(t, filepath.Join(root, "txt", "a.txt"))

	writeFiles(t, root, "b.pdf")
	waitFor(t, filepath.Join(root, "pdf", "b.pdf"))

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("watch returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}

	if !strings.Contains(stdout.String(), "Stopped watching") {
		t.Errorf("output missing summary:\n%s", stdout.String())
	}

	// The session report covers the initial pass and the listener
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("session report not written: %v", err)
	}
	for _, want := range []string{"a.txt", "b.pdf", "Relocations (2)", "Status: success"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("session report missing %q:\n%s", want, data)
		}
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", path)
}

func TestConfigInitAndShow(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	stdout, _, err := execute(t, context.Background(), "config", "init", "--config", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(stdout, path) {
		t.Errorf("unexpected output: %s", stdout)
	}

	if _, _, err := execute(t, context.Background(), "config", "init", "--config", path); err == nil {
		t.Error("expected error when the file already exists")
	}

	stdout, _, err = execute(t, context.Background(), "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"Empty Extension: literal", "Collision: overwrite", "Watch Delay: 1s"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, context.Background(), "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	want, _, _ := buildInfo()
	if strings.TrimSpace(stdout) != want {
		t.Errorf("got %q, want %q", stdout, want)
	}
}

func TestSessionFailReportsThroughFormatter(t *testing.T) {
	cause := errors.New("failed to list watch root")

	var buf bytes.Buffer
	s := &session{formatter: output.NewJSONFormatter(&buf)}
	err := s.fail(cause)

	if ExitCode(err) != 2 {
		t.Errorf("ExitCode() = %d, want 2", ExitCode(err))
	}
	if !errors.Is(err, cause) {
		t.Errorf("error %v should wrap the cause", err)
	}
	if !strings.Contains(buf.String(), `"type":"error"`) || !strings.Contains(buf.String(), cause.Error()) {
		t.Errorf("formatter did not report the error: %s", buf.String())
	}

	// Quiet mode has no formatter; the error goes back to main unchanged
	quiet := &session{}
	if err := quiet.fail(cause); err != cause {
		t.Errorf("quiet fail() = %v, want the cause", err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("boom"), 1},
		{&ExitError{Code: 3}, 3},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
