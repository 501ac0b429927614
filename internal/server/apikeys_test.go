package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAPIKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_keys.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"reporting": "secret-1", "ingest": "secret-2"}`), 0o600))

	keys, err := LoadAPIKeys(path)
	require.NoError(t, err)
	assert.Equal(t, 2, keys.Len())

	client, ok := keys.Authenticate("secret-1")
	assert.True(t, ok)
	assert.Equal(t, "reporting", client)
}

func TestLoadAPIKeys_MissingFile(t *testing.T) {
	_, err := LoadAPIKeys(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestParseAPIKeys(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"valid", `{"client": "secret"}`, false},
		{"empty object", `{}`, true},
		{"empty secret", `{"client": ""}`, true},
		{"not an object", `["client"]`, true},
		{"invalid json", `{`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAPIKeys([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAPIKeys_Authenticate(t *testing.T) {
	keys, err := ParseAPIKeys([]byte(`{"reporting": "secret-1", "ingest": "secret-2"}`))
	require.NoError(t, err)

	tests := []struct {
		name       string
		presented  string
		wantClient string
		wantOK     bool
	}{
		{"first client", "secret-1", "reporting", true},
		{"second client", "secret-2", "ingest", true},
		{"unknown key", "secret-3", "", false},
		{"empty key", "", "", false},
		{"client name is not a key", "reporting", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, ok := keys.Authenticate(tt.presented)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantClient, client)
		})
	}
}
