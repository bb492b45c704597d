package scratch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithWritesAndRemoves(t *testing.T) {
	dir := t.TempDir()
	var seen string

	err := With(dir, "report-*.pdf", []byte("payload"), func(path string) error {
		seen = path
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(raw))
		assert.True(t, strings.HasSuffix(path, ".pdf"))
		assert.Equal(t, dir, filepath.Dir(path))
		return nil
	})
	require.NoError(t, err)

	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWithRemovesOnError(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("boom")
	var seen string

	err := With(dir, "report-*", []byte("x"), func(path string) error {
		seen = path
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWithRemovesOnPanic(t *testing.T) {
	dir := t.TempDir()
	var seen string

	assert.Panics(t, func() {
		_ = With(dir, "report-*", []byte("x"), func(path string) error {
			seen = path
			panic("extractor blew up")
		})
	})

	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWithToleratesCallbackRemoval(t *testing.T) {
	err := With(t.TempDir(), "report-*", nil, func(path string) error {
		return os.Remove(path)
	})
	assert.NoError(t, err)
}
