package kernlog

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestNewCommandSource_Default(t *testing.T) {
	c := NewCommandSource()
	assert.Equal(t, "dmesg", c.Name)
	assert.Empty(t, c.Args)
	assert.Positive(t, c.Timeout)
	assert.Equal(t, "dmesg", c.String())
}

func TestCommandSource_ReadAll(t *testing.T) {
	requireShell(t)

	c := NewCommandSource("sh", "-c", `printf 'first\ncapability fault at 0x1\nlast\n'`)
	lines, err := c.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "capability fault at 0x1", "last"}, lines)
}

func TestCommandSource_EmptyOutput(t *testing.T) {
	requireShell(t)

	c := NewCommandSource("sh", "-c", "true")
	lines, err := c.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCommandSource_NonZeroExit(t *testing.T) {
	requireShell(t)

	c := NewCommandSource("sh", "-c", "echo 'read kernel buffer failed: Operation not permitted' >&2; exit 1")
	_, err := c.ReadAll(context.Background())
	require.Error(t, err)

	var exitErr *exec.ExitError
	assert.ErrorAs(t, err, &exitErr)
	assert.Contains(t, err.Error(), "exit status 1")
	assert.Contains(t, err.Error(), "Operation not permitted")
}

func TestCommandSource_MissingCommand(t *testing.T) {
	c := NewCommandSource("capmon-no-such-command")
	_, err := c.ReadAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestCommandSource_Timeout(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	c := NewCommandSource("sleep", "5")
	c.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := c.ReadAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestCommandSource_InvalidUTF8(t *testing.T) {
	requireShell(t)

	c := NewCommandSource("sh", "-c", `printf '\377\376\n'`)
	_, err := c.ReadAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid UTF-8")
}

func TestCommandSource_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCommandSource().ReadAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSource_ReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kern.log")
	require.NoError(t, os.WriteFile(path, []byte("one\r\ntwo capability fault\r\nthree\n"), 0o600))

	lines, err := NewFileSource(path).ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two capability fault", "three"}, lines)
}

func TestFileSource_Truncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kern.log")
	content := strings.Repeat("old line\n", 100) + "newest\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	f := NewFileSource(path)
	f.MaxBytes = 20

	lines, err := f.ReadAll(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, lines)
	assert.Equal(t, "newest", lines[len(lines)-1])
	for _, l := range lines {
		assert.Contains(t, []string{"old line", "newest"}, l)
	}
}

func TestFileSource_Errors(t *testing.T) {
	_, err := NewFileSource("").ReadAll(context.Background())
	assert.Error(t, err)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.log")).ReadAll(context.Background())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDecodeLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single newline", "\n", []string{""}},
		{"no trailing newline", "a\nb", []string{"a", "b"}},
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"blank line kept", "a\n\nb\n", []string{"a", "", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeLines("test", []byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTail(t *testing.T) {
	b := []byte("aaaa\nbbbb\ncccc\n")
	assert.Equal(t, b, tail(b, 0))
	assert.Equal(t, b, tail(b, 100))
	assert.Equal(t, []byte("cccc\n"), tail(b, 5))
	assert.Equal(t, []byte("cccc\n"), tail(b, 7))
	assert.Equal(t, []byte("bbbb\ncccc\n"), tail(b, 10))
}
