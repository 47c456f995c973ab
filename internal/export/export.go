// Package export writes a loaded catalog to the export database.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jmylchreest/xtreamr/internal/catalog"
	"github.com/jmylchreest/xtreamr/internal/database"
	"github.com/jmylchreest/xtreamr/internal/models"
	"github.com/jmylchreest/xtreamr/pkg/xtream"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 500

// ErrNotLoaded is returned when the source catalog has not been loaded.
var ErrNotLoaded = errors.New("catalog is not loaded")

// Source is the read side of a loaded catalog.
type Source interface {
	Provider() catalog.Provider
	Loaded() bool
	Groups() []*catalog.Group
	Channels() []*catalog.Channel
	Movies() []*catalog.Channel
	Series() []*catalog.Serie
	GroupTitle(class xtream.StreamClass, id string) string
}

// Exporter upserts catalog entities keyed by (provider, kind, provider id).
type Exporter struct {
	db        *database.DB
	logger    *slog.Logger
	batchSize int
}

// New creates an Exporter and migrates the export schema.
func New(ctx context.Context, db *database.DB, logger *slog.Logger) (*Exporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.Migrate(ctx, models.All()...); err != nil {
		return nil, err
	}
	return &Exporter{db: db, logger: logger, batchSize: DefaultBatchSize}, nil
}

// Export writes every group, stream, series and deepened episode of src in
// one transaction. loadRunID links the export to the LoadReport it came from.
func (e *Exporter) Export(ctx context.Context, src Source, loadRunID string) (*models.ExportRun, error) {
	if !src.Loaded() {
		return nil, ErrNotLoaded
	}

	provider := src.Provider().Name
	groups := dedupe(groupRows(provider, src.Groups()), func(g *models.CatalogGroup) string {
		return g.Kind + "/" + g.ProviderID
	})
	streams := dedupe(streamRows(provider, src, append(src.Channels(), src.Movies()...)), func(s *models.CatalogStream) string {
		return s.Kind + "/" + s.ProviderID
	})
	series, episodes := seriesRows(provider, src, src.Series())
	series = dedupe(series, func(s *models.CatalogSeries) string { return s.ProviderID })
	episodes = dedupe(episodes, func(e *models.CatalogEpisode) string { return e.ProviderID })

	run := &models.ExportRun{
		Provider:  provider,
		LoadRunID: loadRunID,
		Groups:    len(groups),
		Streams:   len(streams),
		Series:    len(series),
		Episodes:  len(episodes),
	}

	err := e.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := upsert(tx, e.batchSize, groups, []string{"name", "region_short", "region_long", "raw", "updated_at"}); err != nil {
			return fmt.Errorf("upserting groups: %w", err)
		}
		if err := upsert(tx, e.batchSize, streams, []string{
			"class", "name", "group_id", "group_title", "logo", "logo_path",
			"epg_channel_id", "extension", "url", "is_adult", "added_at", "raw", "updated_at",
		}); err != nil {
			return fmt.Errorf("upserting streams: %w", err)
		}
		if err := upsert(tx, e.batchSize, series, []string{
			"name", "group_id", "group_title", "logo", "logo_path", "plot", "genre", "trailer", "raw", "updated_at",
		}); err != nil {
			return fmt.Errorf("upserting series: %w", err)
		}
		if err := upsert(tx, e.batchSize, episodes, []string{
			"series_id", "season", "season_number", "number", "title", "extension", "url", "info", "raw", "updated_at",
		}); err != nil {
			return fmt.Errorf("upserting episodes: %w", err)
		}

		run.FinishedAt = time.Now()
		return tx.Create(run).Error
	})
	if err != nil {
		return nil, fmt.Errorf("exporting catalog: %w", err)
	}

	e.logger.Info("catalog exported",
		slog.String("provider", provider),
		slog.String("export_id", run.ID.String()),
		slog.Int("groups", run.Groups),
		slog.Int("streams", run.Streams),
		slog.Int("series", run.Series),
		slog.Int("episodes", run.Episodes),
	)
	return run, nil
}

func upsert[T any](tx *gorm.DB, batchSize int, rows []*T, updates []string) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "kind"}, {Name: "provider_id"}},
		DoUpdates: clause.AssignmentColumns(updates),
	}).CreateInBatches(rows, batchSize).Error
}
