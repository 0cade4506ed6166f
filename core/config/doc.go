// Package config provides configuration management for the stocktake service.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP status server settings (port, API key)
//   - Database: MySQL connection details for the checkpoint store
//   - Storage: S3/MinIO credentials and bucket settings
//   - Search: Elasticsearch cluster and index settings
//   - Queue: Kafka brokers and topic for create announcements
//   - Chunk: chunk input/output store settings
//   - Scheduler: batch job submission settings
//   - Cursor: paging and retry settings
//   - Stocktake: run cadence, slicing and sink selection
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
