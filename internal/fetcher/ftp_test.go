package fetcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFTPURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantHost string
		wantDir  string
		wantErr  bool
	}{
		{"default port", "ftp://drop.example.com/exports/daily", "drop.example.com:21", "/exports/daily", false},
		{"explicit port", "ftp://drop.example.com:2121/exports", "drop.example.com:2121", "/exports", false},
		{"root dir", "ftp://drop.example.com", "drop.example.com:21", "", false},
		{"wrong scheme", "https://drop.example.com/exports", "", "", true},
		{"garbage", "://nope", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, dir, err := parseFTPURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantDir, dir)
		})
	}
}

func TestNewFTPSync_Defaults(t *testing.T) {
	s := NewFTPSync(FTPOptions{})
	assert.Equal(t, "anonymous", s.opts.User)
	assert.Equal(t, "anonymous@", s.opts.Password)
	assert.Equal(t, 30*time.Second, s.opts.Timeout)

	s = NewFTPSync(FTPOptions{User: "traxovo", Password: "secret", Timeout: 5 * time.Second})
	assert.Equal(t, "traxovo", s.opts.User)
	assert.Equal(t, 5*time.Second, s.opts.Timeout)
}
