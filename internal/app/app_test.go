package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jgivc/mediaindex/internal/common"
	"github.com/jgivc/mediaindex/internal/config"
	"github.com/jgivc/mediaindex/internal/entity"
	"github.com/jgivc/mediaindex/internal/storage/index"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, env map[string]string) (*App, afero.Fs, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.PublicDir = "/site/public"

	fs := afero.NewMemMapFs()
	files := []string{"images/b/Two.JPG", "images/one.png", "images/skip.txt", "videos/clip.webm"}
	for _, file := range files {
		path := filepath.Join(cfg.PublicDir, file)
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), os.ModeDir))
		require.NoError(t, afero.WriteFile(fs, path, []byte("data"), 0o644))
	}

	out := &bytes.Buffer{}
	a := &App{
		cfg: cfg,
		fs:  fs,
		lookupEnv: func(key string) (string, bool) {
			value, exists := env[key]
			return value, exists
		},
		out:    out,
		logOut: io.Discard,
	}

	return a, fs, out
}

func decodeItems(t *testing.T, content []byte) []entity.MediaItem {
	t.Helper()

	var items []entity.MediaItem
	require.NoError(t, json.Unmarshal(content, &items))

	return items
}

func TestRun(t *testing.T) {
	a, fs, out := newTestApp(t, nil)

	require.NoError(t, a.Run(context.Background()))

	content, err := afero.ReadFile(fs, "/site/public/_media/images.json")
	require.NoError(t, err)
	items := decodeItems(t, content)
	require.Equal(t, []entity.MediaItem{
		{Path: "b/Two.JPG", Ext: "jpg", Type: entity.MediaTypeImage},
		{Path: "one.png", Ext: "png", Type: entity.MediaTypeImage},
	}, items)

	content, err = afero.ReadFile(fs, "/site/public/_media/videos.json")
	require.NoError(t, err)
	items = decodeItems(t, content)
	require.Equal(t, []entity.MediaItem{
		{Path: "clip.webm", Ext: "webm", Type: entity.MediaTypeVideo},
	}, items)

	require.Contains(t, out.String(), "1. images -> /site/public/_media/images.json: written, scanned: 2")
	require.Contains(t, out.String(), "2. videos -> /site/public/_media/videos.json: written, scanned: 1")
}

func TestRunSkipsInDeploymentEnvironment(t *testing.T) {
	testCases := []struct {
		name        string
		env         map[string]string
		expectWrite bool
	}{
		{name: "Set", env: map[string]string{"VERCEL": "1"}},
		{name: "Any value", env: map[string]string{"VERCEL": "false"}},
		{name: "Empty value", env: map[string]string{"VERCEL": ""}, expectWrite: true},
		{name: "Unset", expectWrite: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, fs, _ := newTestApp(t, tc.env)
			require.NoError(t, a.Run(context.Background()))

			entries, err := afero.ReadDir(fs, "/site/public/_media")
			require.NoError(t, err)

			if tc.expectWrite {
				require.Len(t, entries, 2)
			} else {
				require.Empty(t, entries)
			}
		})
	}
}

func TestRunKeepsIndexWhenAssetsMissing(t *testing.T) {
	a, fs, out := newTestApp(t, nil)

	existing := make([]entity.MediaItem, 40)
	for n := range existing {
		existing[n] = entity.MediaItem{Path: "old.jpg", Ext: "jpg", Type: entity.MediaTypeImage}
	}
	before, err := index.Encode(existing)
	require.NoError(t, err)

	require.NoError(t, fs.MkdirAll("/site/public/_media", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/site/public/_media/images.json", before, 0o644))
	require.NoError(t, fs.RemoveAll("/site/public/images"))

	require.NoError(t, a.Run(context.Background()))

	after, err := afero.ReadFile(fs, "/site/public/_media/images.json")
	require.NoError(t, err)
	require.Equal(t, before, after)
	require.Contains(t, out.String(), "images -> /site/public/_media/images.json: preserved, scanned: 0, existing: 40")
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{config.LogLevelDebug, config.LogLevelInfo, config.LogLevelWarn, config.LogLevelError} {
		log, err := newLogger(io.Discard, level)
		require.NoError(t, err)
		require.NotNil(t, log)
	}

	_, err := newLogger(io.Discard, "verbose")
	require.ErrorIs(t, err, common.ErrUnknownLogLevel)
}
