package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jgivc/mediaindex/internal/config"
	"github.com/jgivc/mediaindex/internal/entity"
)

type MediaScanner interface {
	Scan(category *entity.Category) (*entity.Scan, error)
}

type IndexStorage interface {
	Path(category string) string
	Load(category string) (*entity.StoredIndex, error)
	Save(category string, items []entity.MediaItem) ([]byte, error)
}

type IndexPublisher interface {
	Publish(ctx context.Context, category string, content []byte) error
}

type IndexerService struct {
	scanner    MediaScanner
	store      IndexStorage
	publisher  IndexPublisher
	protection config.ProtectionConfig
	log        *slog.Logger
}

// NewIndexService creates the service. publisher may be nil.
func NewIndexService(scanner MediaScanner, store IndexStorage, publisher IndexPublisher, protection config.ProtectionConfig, log *slog.Logger) *IndexerService {
	return &IndexerService{
		scanner:    scanner,
		store:      store,
		publisher:  publisher,
		protection: protection,
		log:        log.With(slog.String("item", "IndexService")),
	}
}

// Index rebuilds the categories one by one in the given order.
func (i *IndexerService) Index(ctx context.Context, categories []*entity.Category) ([]entity.IndexResult, error) {
	results := make([]entity.IndexResult, 0, len(categories))

	for _, category := range categories {
		result, err := i.indexCategory(ctx, category)
		if err != nil {
			return results, err
		}

		results = append(results, *result)
	}

	return results, nil
}

func (i *IndexerService) indexCategory(ctx context.Context, category *entity.Category) (*entity.IndexResult, error) {
	log := i.log.With(slog.String("category", category.Name))
	log.Info("Scanning")

	scan, err := i.scanner.Scan(category)
	if err != nil {
		log.Error("Cannot scan", slog.Any("error", err))

		return nil, fmt.Errorf("cannot scan category %s: %w", category.Name, err)
	}

	existing, err := i.store.Load(category.Name)
	if err != nil {
		log.Error("Cannot load existing index", slog.Any("error", err))

		return nil, fmt.Errorf("cannot load index %s: %w", category.Name, err)
	}

	result := &entity.IndexResult{
		Category:     category.Name,
		ScanStatus:   scan.Status,
		ScannedCount: scan.Count(),
		FilePath:     i.store.Path(category.Name),
	}
	if existing != nil {
		result.ExistingCount = existing.Size
	}

	if existing != nil && i.shouldPreserve(result.ExistingCount, result.ScannedCount) {
		log.Warn("Protection triggered, preserve existing index",
			slog.Int("existing", result.ExistingCount),
			slog.Int("scanned", result.ScannedCount),
		)
		result.Action = entity.IndexActionPreserved

		return result, nil
	}

	if !scan.Available() {
		log.Info("Nothing to write", slog.String("status", scan.Status.String()))
		result.Action = entity.IndexActionSkipped

		return result, nil
	}

	content, err := i.store.Save(category.Name, scan.Items)
	if err != nil {
		log.Error("Cannot save index", slog.Any("error", err))

		return nil, fmt.Errorf("cannot save index %s: %w", category.Name, err)
	}
	result.Action = entity.IndexActionWritten

	if i.publisher != nil {
		if err := i.publisher.Publish(ctx, category.Name, content); err != nil {
			log.Error("Cannot publish index", slog.Any("error", err))

			return nil, fmt.Errorf("cannot publish index %s: %w", category.Name, err)
		}
		result.Published = true
	}

	return result, nil
}

// shouldPreserve reports whether a large existing index shrank below the
// configured share of its size.
func (i *IndexerService) shouldPreserve(existing, scanned int) bool {
	if existing <= i.protection.MinExisting {
		return false
	}

	return float64(scanned) < float64(existing)*i.protection.Ratio
}
