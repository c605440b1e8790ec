package ragserve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp(t *testing.T) {
	ctx := context.Background()

	t.Run("create new application", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		app, err := NewApp(ctx, tmpDir)
		require.NoError(t, err)
		require.NotNil(t, app)
		defer app.Close()

		assert.NotNil(t, app.ChatService())
		assert.NotNil(t, app.Store())
		assert.NotNil(t, app.backend)
		assert.NotNil(t, app.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// A file path instead of a directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		app, err := NewApp(ctx, tmpFile)
		assert.Error(t, err)
		assert.Nil(t, app)
	})

	t.Run("no brokers disables events", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		app, err := NewApp(ctx, tmpDir)
		require.NoError(t, err)
		defer app.Close()

		assert.False(t, app.publisher.Healthy(ctx))
	})
}

func TestApp_Close(t *testing.T) {
	tmpDir := t.TempDir()
	app, err := NewApp(context.Background(), tmpDir)
	require.NoError(t, err)
	require.NotNil(t, app)

	err = app.Close()
	assert.NoError(t, err)
}
