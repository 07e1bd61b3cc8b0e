package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForPrefixesTag(t *testing.T) {
	var buf bytes.Buffer
	restore := Setup(Options{Output: &buf})
	defer restore()

	For("build").Infof("wrote %s", "core.min.css")

	out := buf.String()
	assert.Contains(t, out, "[build]")
	assert.Contains(t, out, "wrote core.min.css")
	assert.Contains(t, out, "INFO")
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantDebug bool
		wantInfo  bool
	}{
		{name: "default", opts: Options{}, wantDebug: false, wantInfo: true},
		{name: "verbose", opts: Options{Verbose: true}, wantDebug: true, wantInfo: true},
		{name: "quiet", opts: Options{Quiet: true}, wantDebug: false, wantInfo: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.opts.Output = &buf
			l := New(tt.opts).Sugar()

			l.Debug("dbg-line")
			l.Info("info-line")
			l.Error("error-line")
			require.NoError(t, l.Sync())

			out := buf.String()
			assert.Equal(t, tt.wantDebug, bytes.Contains([]byte(out), []byte("dbg-line")))
			assert.Equal(t, tt.wantInfo, bytes.Contains([]byte(out), []byte("info-line")))
			assert.Contains(t, out, "error-line")
		})
	}
}
