package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habline/internal/db"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	auth := "[Habitica]\nurl = https://habitica.example\nlogin = 0b3f2a4e-6d8c-4f5a-9a3b-2c1d4e5f6a7b\npassword = k\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth.cfg"), []byte(auth), 0o600))

	s, err := Open(context.Background(), dir, io.Discard)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "https://habitica.example", s.Client.BaseURL)
	assert.Equal(t, "k", s.Client.APIKey)
	assert.FileExists(t, db.Path(dir))

	c, err := s.Engine.Repo.QuestCache(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", c.Key)
}

func TestOpenWithoutAuth(t *testing.T) {
	_, err := Open(context.Background(), t.TempDir(), io.Discard)
	assert.Error(t, err)
}
