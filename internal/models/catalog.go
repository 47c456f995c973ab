package models

import "time"

// Kinds stored alongside provider ids; a provider id is only unique per kind.
const (
	KindSeries  = "series"
	KindEpisode = "episode"
)

// CatalogGroup is an exported provider category.
type CatalogGroup struct {
	BaseModel
	Provider    string `gorm:"size:255;not null;uniqueIndex:idx_catalog_group_identity" json:"provider"`
	Kind        string `gorm:"size:16;not null;uniqueIndex:idx_catalog_group_identity" json:"kind"`
	ProviderID  string `gorm:"size:64;not null;uniqueIndex:idx_catalog_group_identity" json:"provider_id"`
	Name        string `gorm:"size:512" json:"name"`
	RegionShort string `gorm:"size:16" json:"region_short,omitempty"`
	RegionLong  string `gorm:"size:64" json:"region_long,omitempty"`
	Raw         string `gorm:"type:text" json:"raw"`
}

// TableName returns the table name.
func (CatalogGroup) TableName() string { return "catalog_groups" }

// CatalogStream is an exported live channel or movie.
type CatalogStream struct {
	BaseModel
	Provider     string     `gorm:"size:255;not null;uniqueIndex:idx_catalog_stream_identity" json:"provider"`
	Kind         string     `gorm:"size:16;not null;uniqueIndex:idx_catalog_stream_identity" json:"kind"`
	ProviderID   string     `gorm:"size:64;not null;uniqueIndex:idx_catalog_stream_identity" json:"provider_id"`
	Class        string     `gorm:"size:16;index" json:"class"`
	Name         string     `gorm:"size:512;index" json:"name"`
	GroupID      string     `gorm:"size:64" json:"group_id"`
	GroupTitle   string     `gorm:"size:512" json:"group_title"`
	Logo         string     `gorm:"size:2048" json:"logo,omitempty"`
	LogoPath     string     `gorm:"size:2048" json:"logo_path,omitempty"`
	EPGChannelID string     `gorm:"size:255" json:"epg_channel_id,omitempty"`
	Extension    string     `gorm:"size:16" json:"extension"`
	URL          string     `gorm:"size:2048" json:"url"`
	IsAdult      bool       `json:"is_adult"`
	AddedAt      *time.Time `json:"added_at,omitempty"`
	Raw          string     `gorm:"type:text" json:"raw"`
}

// TableName returns the table name.
func (CatalogStream) TableName() string { return "catalog_streams" }

// CatalogSeries is an exported series.
type CatalogSeries struct {
	BaseModel
	Provider   string `gorm:"size:255;not null;uniqueIndex:idx_catalog_series_identity" json:"provider"`
	Kind       string `gorm:"size:16;not null;uniqueIndex:idx_catalog_series_identity" json:"kind"`
	ProviderID string `gorm:"size:64;not null;uniqueIndex:idx_catalog_series_identity" json:"provider_id"`
	Name       string `gorm:"size:512;index" json:"name"`
	GroupID    string `gorm:"size:64" json:"group_id"`
	GroupTitle string `gorm:"size:512" json:"group_title"`
	Logo       string `gorm:"size:2048" json:"logo,omitempty"`
	LogoPath   string `gorm:"size:2048" json:"logo_path,omitempty"`
	Plot       string `gorm:"type:text" json:"plot,omitempty"`
	Genre      string `gorm:"size:255" json:"genre,omitempty"`
	Trailer    string `gorm:"size:255" json:"trailer,omitempty"`
	Raw        string `gorm:"type:text" json:"raw"`
}

// TableName returns the table name.
func (CatalogSeries) TableName() string { return "catalog_series" }

// CatalogEpisode is an exported episode of a deepened series.
type CatalogEpisode struct {
	BaseModel
	Provider     string `gorm:"size:255;not null;uniqueIndex:idx_catalog_episode_identity" json:"provider"`
	Kind         string `gorm:"size:16;not null;uniqueIndex:idx_catalog_episode_identity" json:"kind"`
	ProviderID   string `gorm:"size:64;not null;uniqueIndex:idx_catalog_episode_identity" json:"provider_id"`
	SeriesID     string `gorm:"size:64;index" json:"series_id"`
	Season       string `gorm:"size:255" json:"season"`
	SeasonNumber int64  `json:"season_number"`
	Number       int64  `json:"number"`
	Title        string `gorm:"size:512" json:"title"`
	Extension    string `gorm:"size:16" json:"extension"`
	URL          string `gorm:"size:2048" json:"url"`
	Info         string `gorm:"type:text" json:"info,omitempty"`
	Raw          string `gorm:"type:text" json:"raw"`
}

// TableName returns the table name.
func (CatalogEpisode) TableName() string { return "catalog_episodes" }

// ExportRun records one export of a loaded catalog.
type ExportRun struct {
	BaseModel
	Provider   string    `gorm:"size:255;index" json:"provider"`
	LoadRunID  string    `gorm:"size:26" json:"load_run_id,omitempty"`
	Groups     int       `json:"groups"`
	Streams    int       `json:"streams"`
	Series     int       `json:"series"`
	Episodes   int       `json:"episodes"`
	FinishedAt time.Time `json:"finished_at"`
}

// TableName returns the table name.
func (ExportRun) TableName() string { return "export_runs" }

// All returns every model of the export schema, for migrations.
func All() []any {
	return []any{
		&CatalogGroup{},
		&CatalogStream{},
		&CatalogSeries{},
		&CatalogEpisode{},
		&ExportRun{},
	}
}
