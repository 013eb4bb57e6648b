package propagation

// PropConfig holds evaluation configuration loaded from environment variables.
type PropConfig struct {
	Workers    int // Worker pool size (default: runtime.NumCPU())
	ChunkSize  int // Samples per worker job (default: 4096)
	MaxSamples int // Largest accepted batch (default: 1000000)
}

// BatchResult is the output of one batch evaluation.
type BatchResult struct {
	Separations []float64 // same length and order as the input times
	Iterations  int       // total Kepler solver steps across the batch
}

// DefaultChunkSize is used when PropConfig.ChunkSize is unset.
const DefaultChunkSize = 4096
