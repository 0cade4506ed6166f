package search

// Config holds configuration for the Elasticsearch connection and the two
// stocktake indices.
type Config struct {
	// Addresses is a comma-separated list of Elasticsearch node URLs.
	Addresses string `mapstructure:"addresses" default:"http://localhost:9200"`
	// Username is the basic auth user, empty for anonymous access.
	Username string `mapstructure:"username" default:""`
	// Password is the basic auth password.
	Password string `mapstructure:"password" default:""`
	// SourceIndex is the FBI index, keyed by filesystem path.
	SourceIndex string `mapstructure:"source_index" default:"fbi"`
	// CatalogIndex is the STAC asset index, keyed by asset URI.
	CatalogIndex string `mapstructure:"catalog_index" default:"stac-assets"`
	// PageSize is the number of keys requested per page.
	PageSize int `mapstructure:"page_size" default:"10000"`
	// PITKeepAlive is the keep-alive for point-in-time snapshots.
	PITKeepAlive string `mapstructure:"pit_keep_alive" default:"5m"`
}
