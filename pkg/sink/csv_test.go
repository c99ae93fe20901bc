package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/NVIDIA/capmon/pkg/errors"
	"github.com/NVIDIA/capmon/pkg/sample"
)

func testSample(i int) sample.Sample {
	ts := time.Date(2025, 1, 2, 3, 4, i, 0, time.Local)
	return sample.New(ts, 12.5, 2048*1024*1024, "No anomalies detected", "No errors detected")
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVSink_NewFileGetsOneHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	s, err := NewCSVSink(path)
	require.NoError(t, err)
	assert.True(t, s.WritesHeader())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file should not be created before the first append")

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(testSample(i)))
	}

	rows := readRows(t, path)
	require.Len(t, rows, 6)
	assert.Equal(t, sample.Header, rows[0])
	for i, row := range rows[1:] {
		assert.Equal(t, testSample(i).Record(), row)
	}
}

func TestCSVSink_ExistingFileNoHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	first, err := NewCSVSink(path)
	require.NoError(t, err)
	require.NoError(t, first.Append(testSample(0)))

	// restart
	second, err := NewCSVSink(path)
	require.NoError(t, err)
	assert.False(t, second.WritesHeader())
	for i := 1; i < 4; i++ {
		require.NoError(t, second.Append(testSample(i)))
	}

	rows := readRows(t, path)
	require.Len(t, rows, 5)
	headers := 0
	for _, row := range rows {
		if row[0] == sample.Header[0] {
			headers++
		}
	}
	assert.Equal(t, 1, headers)
	assert.Equal(t, sample.Header, rows[0])
}

func TestCSVSink_ForeignNonEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("pre-existing,row\n"), 0o644))

	s, err := NewCSVSink(path)
	require.NoError(t, err)
	assert.False(t, s.WritesHeader())
	require.NoError(t, s.Append(testSample(0)))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "Timestamp,")
	assert.True(t, strings.HasPrefix(string(b), "pre-existing,row\n"))
}

func TestCSVSink_EmptyFileGetsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s, err := NewCSVSink(path)
	require.NoError(t, err)
	assert.True(t, s.WritesHeader())
	require.NoError(t, s.Append(testSample(0)))

	rows := readRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, sample.Header, rows[0])
}

func TestCSVSink_QuotesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	s, err := NewCSVSink(path, WithoutSync())
	require.NoError(t, err)

	smp := testSample(0)
	smp.AnomalyLine = `capability fault, pid 7 "init"`
	smp.LastLogLine = "Error fetching logs: dmesg exit status 1: line one\nline two"
	require.NoError(t, s.Append(smp))

	rows := readRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, smp.AnomalyLine, rows[1][3])
	assert.Equal(t, smp.LastLogLine, rows[1][4])
}

func TestCSVSink_KeepsPartialRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	s, err := NewCSVSink(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(testSample(0)))

	// simulate a crash in the middle of a row
	partial := `2025-01-02 03:04:05,12.5,2048.0,half`
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	require.NoError(t, err)
	_, err = f.WriteString(partial)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	s, err = NewCSVSink(path)
	require.NoError(t, err)
	assert.False(t, s.WritesHeader())
	require.NoError(t, s.Append(testSample(1)))
	require.NoError(t, s.Append(testSample(2)))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(after), string(before)), "existing bytes must be kept")

	lines := strings.Split(strings.TrimSuffix(string(after), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, strings.Join(sample.Header, ","), lines[0])
	assert.Equal(t, partial, lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "2025-01-02 03:04:01,"))
	assert.True(t, strings.HasPrefix(lines[4], "2025-01-02 03:04:02,"))
}

func TestCSVSink_NonEmptyFileNeverGetsHeader(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "stray quote", content: "a\"b,1\nc,2\nd,3\n"},
		{name: "header fragment", content: "Timestamp,CPU_Us"},
		{name: "no final newline", content: "Timestamp,x\nrow,1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			s, err := NewCSVSink(path)
			require.NoError(t, err)
			assert.False(t, s.WritesHeader())
			require.NoError(t, s.Append(testSample(0)))

			b, err := os.ReadFile(path)
			require.NoError(t, err)
			got := string(b)
			assert.True(t, strings.HasPrefix(got, tt.content), "existing bytes must be kept")
			assert.NotContains(t, got, "CPU_Usage(%)")
			assert.True(t, strings.HasSuffix(got, "\n2025-01-02 03:04:00,12.5,2048.0,No anomalies detected,No errors detected\n"))
		})
	}
}

func TestCSVSink_Errors(t *testing.T) {
	_, err := NewCSVSink("")
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeInvalidRequest, cerrors.CodeOf(err))

	_, err = NewCSVSink(t.TempDir())
	assert.Error(t, err)
}

func TestCSVSink_AppendFailureIsReported(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "out.csv")

	s, err := NewCSVSink(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(dir))

	err = s.Append(testSample(0))
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeInternal, cerrors.CodeOf(err))

	// header is still owed after a failed first write
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, s.Append(testSample(1)))
	rows := readRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, sample.Header, rows[0])
}
