package ioprof

import "runtime"

// Config holds the run's enumerated tunables. It is constructed
// once by the CLI layer and passed by reference; nothing in the core
// mutates it after construction.
type Config struct {
	BucketSize     int64   // bytes, default 1 MiB
	Percent        float64 // histogram section capacity threshold, default 0.02
	TopCountLimit  uint32  // top-files cutoff, default 10
	ThreadMax      uint32  // worker pool cap, default 4x CPU count
	SingleThreaded bool    // force serial path for debugging
}

// DefaultConfig returns ioprof's out-of-the-box tunables.
func DefaultConfig() *Config {
	return &Config{
		BucketSize:    1 << 20, // 1 MiB
		Percent:       0.02,
		TopCountLimit: 10,
		ThreadMax:     uint32(4 * runtime.NumCPU()),
	}
}
