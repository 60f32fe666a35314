package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/jgivc/mediaindex/internal/entity"
	"github.com/spf13/afero"
)

const (
	indexFileExt  = ".json"
	indexFileMode = 0o644
	indexDirMode  = 0o755
	indexIndent   = "  "
)

type indexStorage struct {
	fs  afero.Fs
	dir string
	log *slog.Logger
}

func NewIndexStorage(dir string, log *slog.Logger) *indexStorage {
	return NewIndexStorageWithFS(afero.NewOsFs(), dir, log)
}

func NewIndexStorageWithFS(fs afero.Fs, dir string, log *slog.Logger) *indexStorage {
	return &indexStorage{
		fs:  fs,
		dir: dir,
		log: log.With(slog.String("item", "IndexStorage")),
	}
}

func (i *indexStorage) Path(category string) string {
	return filepath.Join(i.dir, category+indexFileExt)
}

func (i *indexStorage) EnsureDir() error {
	if err := i.fs.MkdirAll(i.dir, indexDirMode); err != nil {
		return fmt.Errorf("cannot create index dir %s: %w", i.dir, err)
	}

	return nil
}

// Load returns the index written by a previous run as plain JSON. A missing
// file or invalid JSON gives nil, other read errors are returned.
func (i *indexStorage) Load(category string) (*entity.StoredIndex, error) {
	path := i.Path(category)

	content, err := afero.ReadFile(i.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("cannot read index file %s: %w", path, err)
	}

	var value any
	if err := json.Unmarshal(content, &value); err != nil {
		i.log.Warn("Cannot parse existing index, ignore it", slog.String("path", path), slog.Any("error", err))

		return nil, nil
	}

	return &entity.StoredIndex{
		Content: value,
		Size:    jsonSize(value),
	}, nil
}

// Save replaces the category index file and returns the written content.
func (i *indexStorage) Save(category string, items []entity.MediaItem) ([]byte, error) {
	path := i.Path(category)

	content, err := Encode(items)
	if err != nil {
		return nil, fmt.Errorf("cannot encode index %s: %w", category, err)
	}

	if err := afero.WriteFile(i.fs, path, content, indexFileMode); err != nil {
		return nil, fmt.Errorf("cannot write index file %s: %w", path, err)
	}

	i.log.Info("Index saved", slog.String("path", path), slog.Int("count", len(items)))

	return content, nil
}

// Encode renders items as an indented JSON array followed by a single newline.
// HTML characters and non-ASCII text are written as is.
func Encode(items []entity.MediaItem) ([]byte, error) {
	if items == nil {
		items = []entity.MediaItem{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indexIndent)

	if err := enc.Encode(items); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func jsonSize(value any) int {
	switch v := value.(type) {
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	case string:
		return utf8.RuneCountInString(v)
	}

	return 0
}
