// SPDX-License-Identifier: MIT
package validate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_URL(t *testing.T) {
	tests := []struct {
		name           string
		value          string
		allowedSchemes []string
		wantErr        bool
	}{
		{"valid http", "http://example.com", []string{"http", "https"}, false},
		{"valid https", "https://example.com", []string{"http", "https"}, false},
		{"empty url", "", []string{"http"}, true},
		{"no host", "http://", []string{"http"}, true},
		{"invalid scheme", "ftp://example.com", []string{"http", "https"}, true},
		{"no scheme", "example.com", []string{"http"}, true},
		{"with port", "http://receiver.lan:8080", []string{"http"}, false},
		{"ip literal", "http://192.168.1.10", []string{"http"}, false},
		{"ipv6 literal", "http://[::1]:80", []string{"http"}, false},
		{"container name", "http://vu_box:80", []string{"http"}, false},
		{"unicode host", "http://empfänger.local", []string{"http"}, false},
		{"leading hyphen", "http://-receiver.lan", []string{"http"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.URL("testURL", tt.value, tt.allowedSchemes)
			assert.Equal(t, tt.wantErr, !v.IsValid(), "err: %v", v.Err())
		})
	}
}

func TestValidator_ClockTime(t *testing.T) {
	for value, ok := range map[string]bool{
		"04:00": true,
		"23:59": true,
		"24:00": false,
		"4am":   false,
		"":      false,
	} {
		v := New()
		v.ClockTime("daily_at", value)
		assert.Equal(t, ok, v.IsValid(), value)
	}
}

func TestValidator_Durations(t *testing.T) {
	v := New()
	v.PositiveDuration("lookahead", 0)
	v.NonNegativeDuration("delay", 0)
	v.NonNegativeDuration("pad", -time.Second)
	require.Len(t, v.Errors(), 2)
	assert.Equal(t, "lookahead", v.Errors()[0].Field)
	assert.Equal(t, "pad", v.Errors()[1].Field)
}

func TestValidator_Unique(t *testing.T) {
	v := New()
	v.Unique("id", []string{"a", "b", "a", "c", "b"})
	require.Len(t, v.Errors(), 2)
	assert.Equal(t, "a", v.Errors()[0].Value)
	assert.Equal(t, "b", v.Errors()[1].Value)
}

func TestValidator_FileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "guide.xml")
	require.NoError(t, os.WriteFile(file, []byte("<tv/>"), 0o600))

	v := New()
	v.FileExists("ok", file)
	v.FileExists("dir", dir)
	v.FileExists("missing", filepath.Join(dir, "nope.xml"))
	v.FileExists("empty", "")

	fields := []string{}
	for _, e := range v.Errors() {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"dir", "missing", "empty"}, fields)
}

func TestValidationError_Aggregates(t *testing.T) {
	v := New()
	assert.NoError(t, v.Err())

	v.OneOf("kind", "tvheadend", []string{"openwebif", "local"})
	v.Range("max", 0, 1, 16)
	err := v.Err()
	require.Error(t, err)

	var ve ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Errors(), 2)
	assert.Contains(t, err.Error(), "kind")
	assert.Contains(t, err.Error(), "; ")
}

func TestLogLevels(t *testing.T) {
	v := New()
	v.OneOf("log_level", "debug", LogLevels)
	assert.True(t, v.IsValid())
	v.OneOf("log_level", "verbose", LogLevels)
	assert.False(t, v.IsValid())
}
