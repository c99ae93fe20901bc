package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndsMidRow(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    bool
	}{
		{name: "missing", content: nil, want: false},
		{name: "empty", content: ptr(""), want: false},
		{name: "complete", content: ptr("a,b\nc,d\n"), want: false},
		{name: "partial row", content: ptr("a,b\nc,"), want: true},
		{name: "stray quote complete", content: ptr("a\"b,1\nc,2\n"), want: false},
		{name: "open quote at end", content: ptr("a,b\nc,\"x"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.csv")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o644))
			}

			got, err := endsMidRow(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			if tt.content != nil {
				b, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.Equal(t, *tt.content, string(b), "file must not be modified")
			}
		})
	}
}

func TestEndsMidRow_Directory(t *testing.T) {
	got, err := endsMidRow(t.TempDir())
	require.NoError(t, err)
	assert.False(t, got)
}

func ptr(s string) *string { return &s }
