package fetch

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
		wantPath string
		wantErr  bool
	}{
		{
			name:     "standard ftp url",
			url:      "ftp://ftp.example.com/sheets/Day1.csv",
			wantHost: "ftp.example.com:21",
			wantPath: "/sheets/Day1.csv",
		},
		{
			name:     "ftp url with port",
			url:      "ftp://ftp.example.com:2121/Day2.csv",
			wantHost: "ftp.example.com:2121",
			wantPath: "/Day2.csv",
		},
		{
			name:     "nested course path",
			url:      "ftp://files.example.org/courses/toeic/2025/Day30.csv",
			wantHost: "files.example.org:21",
			wantPath: "/courses/toeic/2025/Day30.csv",
		},
		{
			name:    "http scheme rejected",
			url:     "http://example.com/Day1.csv",
			wantErr: true,
		},
		{
			name:    "empty path",
			url:     "ftp://ftp.example.com",
			wantErr: true,
		},
		{
			name:    "invalid url",
			url:     "://bad",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, path, err := parseFTPURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestNewFTPFetcherDefaultTimeout(t *testing.T) {
	f := NewFTPFetcher(FTPOptions{})
	assert.Equal(t, 30*time.Second, f.opts.Timeout)

	f = NewFTPFetcher(FTPOptions{Timeout: 5 * time.Second})
	assert.Equal(t, 5*time.Second, f.opts.Timeout)
}
