package commandRepository

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"avril/internal/api/command"
	"avril/internal/entity"
	"avril/pkg/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo() IRepository {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(storage.NewMemory(), log)
}

func TestListSave(t *testing.T) {
	repo := newRepo()
	ctx := context.Background()

	_, found, err := repo.List(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	in := []entity.CustomCommand{{Key: "good night", Phrase: "Good night", Response: "Sleep well."}}
	require.NoError(t, repo.Save(ctx, in))

	out, found, err := repo.List(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestLoadSeed(t *testing.T) {
	repo := newRepo()
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.yaml")

	seed, err := repo.LoadSeed(path)
	require.NoError(t, err)
	assert.Empty(t, seed.Commands)

	require.NoError(t, os.WriteFile(path, []byte(`
commands:
  - phrase: Who are you
    response: I am Avril.
jokes:
  - A short joke.
`), 0o600))

	seed, err = repo.LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.Commands, 1)
	assert.Equal(t, "Who are you", seed.Commands[0].Phrase)
	assert.Equal(t, []string{"A short joke."}, seed.Jokes)

	require.NoError(t, os.WriteFile(path, []byte("commands: [unterminated"), 0o600))
	_, err = repo.LoadSeed(path)
	assert.ErrorIs(t, err, command.ErrSeedFile)
}
