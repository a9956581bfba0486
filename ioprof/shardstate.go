package ioprof

// ShardState is worker-owned, mutated only by the worker that created it,
// then drained exactly once into GlobalState. It touches no locks during accumulation.
type ShardState struct {
	geo *Geometry

	IOTotal    uint64
	ReadTotal  uint64
	WriteTotal uint64
	TotalBlocks uint64

	Reads  map[int64]uint64 // bucket -> hit count
	Writes map[int64]uint64

	RSizes map[uint32]uint64 // sector_count -> count
	WSizes map[uint32]uint64

	BucketHitsTotal uint64
	MaxBucketHits   uint64
}

// NewShardState allocates a fresh thread-local accumulator for one worker.
func NewShardState(geo *Geometry) *ShardState {
	return &ShardState{
		geo:    geo,
		Reads:  make(map[int64]uint64),
		Writes: make(map[int64]uint64),
		RSizes: make(map[uint32]uint64),
		WSizes: make(map[uint32]uint64),
	}
}

// Add accumulates one accepted record into thread-local state.
// A single I/O can straddle multiple buckets, so BucketHitsTotal advances
// once per touched bucket while IOTotal advances once per request.
func (s *ShardState) Add(r *Record) {
	s.TotalBlocks += uint64(r.SectorCount)
	s.IOTotal++

	var buckets map[int64]uint64
	if r.Op == Read {
		s.ReadTotal++
		s.RSizes[r.SectorCount]++
		buckets = s.Reads
	} else {
		s.WriteTotal++
		s.WSizes[r.SectorCount]++
		buckets = s.Writes
	}

	// Buckets touched span from the byte offset of the first sector to the
	// byte offset of the last sector, inclusive — not just ceil(length /
	// bucket_size), since a request that starts mid-bucket can cross one
	// more boundary than its raw length would suggest.
	startByte := int64(r.StartLBA) * s.geo.SectorSize
	endByte := startByte + int64(r.SectorCount)*s.geo.SectorSize - 1
	if endByte < startByte {
		endByte = startByte
	}
	first := startByte / s.geo.BucketSize
	lastTouched := endByte / s.geo.BucketSize
	last := s.geo.NumBuckets - 1

	for bucket := first; bucket <= lastTouched; bucket++ {
		b := bucket
		if b > last {
			b = last
		}
		buckets[b]++
		if buckets[b] > s.MaxBucketHits {
			s.MaxBucketHits = buckets[b]
		}
		s.BucketHitsTotal++
	}
}
