package stocktake

// Config holds configuration for the stocktake feature.
type Config struct {
	// SaveEvery is the checkpoint cadence in processed decisions.
	SaveEvery int64 `mapstructure:"save_every" default:"1000"`
	// Sink selects where creates go: "queue" publishes to the message
	// queue, "direct" writes catalog entries synchronously.
	Sink string `mapstructure:"sink" default:"queue"`
	// Slices is the number of hash slices a distributed run is split
	// into.
	Slices int `mapstructure:"slices" default:"10"`
	// StartSlice and EndSlice bound the inclusive slice range one batch
	// invocation dispatches. EndSlice -1 means the last slice.
	StartSlice int `mapstructure:"start_slice" default:"0"`
	EndSlice   int `mapstructure:"end_slice" default:"-1"`
	// BatchesPerChunk is how many source pages are folded into one chunk
	// input.
	BatchesPerChunk int `mapstructure:"batches_per_chunk" default:"10"`
	// KeyPageSize is the page size chunk workers replay their key list
	// with.
	KeyPageSize int `mapstructure:"key_page_size" default:"10000"`
}
