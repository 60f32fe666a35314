package entity

import "strings"

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// MediaItem is one file listed in a category index.
type MediaItem struct {
	Path string    `json:"path"` // Relative to the category root, slash separated, original casing
	Ext  string    `json:"ext"`  // Lowercase, without the leading dot
	Type MediaType `json:"type"`
}

// Category describes one media directory under the public dir. Build it with
// NewCategory and don't modify it afterwards.
type Category struct {
	Name       string
	Type       MediaType
	extensions map[string]struct{}
}

func NewCategory(name string, mediaType MediaType, extensions ...string) *Category {
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}

		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}

		exts[ext] = struct{}{}
	}

	return &Category{
		Name:       name,
		Type:       mediaType,
		extensions: exts,
	}
}

// Accepts reports whether ext (dot-prefixed, any case) belongs to the category.
func (c *Category) Accepts(ext string) bool {
	_, exists := c.extensions[strings.ToLower(ext)]

	return exists
}
