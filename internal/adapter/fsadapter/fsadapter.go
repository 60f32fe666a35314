package fsadapter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jgivc/mediaindex/internal/entity"
	"github.com/spf13/afero"
)

type fsAdapter struct {
	fs        afero.Fs
	publicDir string
	log       *slog.Logger
}

func NewFSAdapter(publicDir string, log *slog.Logger) *fsAdapter {
	return NewFSAdapterWithFS(afero.NewOsFs(), publicDir, log)
}

func NewFSAdapterWithFS(fs afero.Fs, publicDir string, log *slog.Logger) *fsAdapter {
	return &fsAdapter{
		fs:        fs,
		publicDir: publicDir,
		log:       log.With(slog.String("item", "FSAdapter")),
	}
}

/*
Scan walks <publicDir>/<category> and lists the files whose extension belongs to the category.
 1. Missing category dir gives ScanStatusDirMissing.
 2. Existing dir without a single matching file gives ScanStatusNoMatches.
 3. Otherwise the items are sorted by path.
*/
func (a *fsAdapter) Scan(category *entity.Category) (*entity.Scan, error) {
	root := filepath.Join(a.publicDir, category.Name)
	result := &entity.Scan{Category: category.Name}

	info, err := a.stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot stat category dir %s: %w", root, err)
	}

	if info == nil {
		a.log.Info("Directory not found, skip", slog.String("dir", root))
		result.Status = entity.ScanStatusDirMissing

		return result, nil
	}

	var items []entity.MediaItem
	if info.IsDir() {
		items, err = a.walk(root, category)
		if err != nil {
			return nil, fmt.Errorf("cannot walk category dir %s: %w", root, err)
		}
	} else {
		a.log.Warn("Category path is not a directory", slog.String("path", root))
	}

	if len(items) == 0 {
		a.log.Info("No files found, skip to preserve existing index", slog.String("dir", root))
		result.Status = entity.ScanStatusNoMatches

		return result, nil
	}

	SortItems(items)

	result.Status = entity.ScanStatusFound
	result.Items = items

	return result, nil
}

func (a *fsAdapter) walk(root string, category *entity.Category) ([]entity.MediaItem, error) {
	var items []entity.MediaItem

	err := afero.Walk(a.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		ext := fileExt(info.Name())
		if ext == "" || !category.Accepts(ext) {
			return nil
		}

		relPath, err := relativePath(root, path)
		if err != nil {
			return err
		}

		a.log.Debug("Found file", slog.String("path", relPath))

		items = append(items, entity.MediaItem{
			Path: relPath,
			Ext:  strings.TrimPrefix(strings.ToLower(ext), "."),
			Type: category.Type,
		})

		return nil
	})

	return items, err
}

// SortItems orders items by path using plain byte comparison.
func SortItems(items []entity.MediaItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Path < items[j].Path
	})
}

// fileExt returns the dot-prefixed extension of a base name. Leading dots
// belong to the name, so ".png" has no extension while "a.b.PNG" has ".PNG".
func fileExt(name string) string {
	stem := strings.TrimLeft(name, ".")
	if idx := strings.LastIndex(stem, "."); idx >= 0 {
		return stem[idx:]
	}

	return ""
}

func relativePath(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("cannot get relative path of %s: %w", path, err)
	}

	return strings.TrimLeft(filepath.ToSlash(rel), "/"), nil
}

// stat returns nil info without error when the path does not exist.
func (a *fsAdapter) stat(path string) (os.FileInfo, error) {
	info, err := a.fs.Stat(path)
	if err == nil {
		return info, nil
	}

	if os.IsNotExist(err) {
		return nil, nil
	}

	return nil, err
}
