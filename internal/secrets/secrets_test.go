// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Secrets
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, PatentsViewAPIKey, "  pk_abc123  \n")
				writeFile(t, dir, SemanticScholarAPIKey, "sk_xyz789")
				writeFile(t, dir, ContactEmail, "user@example.com\n")
				return dir
			},
			want: Secrets{
				PatentsViewAPIKey:     "pk_abc123",
				SemanticScholarAPIKey: "sk_xyz789",
				ContactEmail:          "user@example.com",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, NCBIAPIKey, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: Secrets{NCBIAPIKey: "valid-key"},
		},
		{
			name: "skips dotfiles and directories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "x")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
				writeFile(t, dir, GoogleBooksAPIKey, "gb")
				return dir
			},
			want: Secrets{GoogleBooksAPIKey: "gb"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir, zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_PathIsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "not-a-dir", "x")

	_, err := Load(filepath.Join(dir, "not-a-dir"), zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading secrets directory")
}

func TestSecretsGet(t *testing.T) {
	s := Secrets{ContactEmail: "me@example.org"}

	assert.Equal(t, "me@example.org", s.Get(ContactEmail, ""))
	assert.Equal(t, "flag@example.org", s.Get(ContactEmail, "flag@example.org"))
	assert.Equal(t, "", s.Get(NCBIAPIKey, ""))
}

func TestSecretsKeys(t *testing.T) {
	s := Secrets{ContactEmail: "a", NCBIAPIKey: "b"}
	keys := s.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{ContactEmail, NCBIAPIKey}, keys)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}
