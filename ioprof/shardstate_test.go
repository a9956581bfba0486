package ioprof_test

import (
	"math"
	"testing"

	"github.com/NVIDIA/ioprof/ioprof"
)

// TestShardStateSingleSmallRead covers the single-record read case: one
// I/O entirely within bucket 0.
func TestShardStateSingleSmallRead(t *testing.T) {
	geo := scenarioGeometry(t)
	s := ioprof.NewShardState(geo)
	s.Add(&ioprof.Record{Op: ioprof.Read, StartLBA: 0, SectorCount: 8})

	if s.Reads[0] != 1 {
		t.Fatalf("reads[0] = %d, want 1", s.Reads[0])
	}
	if len(s.Writes) != 0 {
		t.Fatalf("writes = %v, want empty", s.Writes)
	}
	if s.IOTotal != 1 || s.ReadTotal != 1 {
		t.Fatalf("io_total=%d read_total=%d, want 1/1", s.IOTotal, s.ReadTotal)
	}
	if s.BucketHitsTotal != 1 {
		t.Fatalf("bucket_hits_total = %d, want 1", s.BucketHitsTotal)
	}
	if s.TotalBlocks != 8 {
		t.Fatalf("total_blocks = %d, want 8", s.TotalBlocks)
	}
	if s.RSizes[8] != 1 {
		t.Fatalf("r_totals = %v, want {8:1}", s.RSizes)
	}
}

// TestShardStateLargeStraddlingWrite covers a write that starts 8 sectors
// before a bucket boundary and spans far enough to touch three buckets.
func TestShardStateLargeStraddlingWrite(t *testing.T) {
	geo := scenarioGeometry(t)
	s := ioprof.NewShardState(geo)
	s.Add(&ioprof.Record{Op: ioprof.Write, StartLBA: 2040, SectorCount: 4096})

	want := map[int64]uint64{0: 1, 1: 1, 2: 1}
	for b, n := range want {
		if s.Writes[b] != n {
			t.Fatalf("writes[%d] = %d, want %d", b, s.Writes[b], n)
		}
	}
	if len(s.Writes) != len(want) {
		t.Fatalf("writes = %v, want exactly buckets 0,1,2", s.Writes)
	}
	if s.BucketHitsTotal != 3 {
		t.Fatalf("bucket_hits_total = %d, want 3", s.BucketHitsTotal)
	}
	if s.WSizes[4096] != 1 {
		t.Fatalf("w_totals = %v, want {4096:1}", s.WSizes)
	}
}

// TestShardStateClampsAtDeviceEnd mirrors scenario 3: an overflowing
// record's extra bucket steps all clamp onto the last valid bucket.
func TestShardStateClampsAtDeviceEnd(t *testing.T) {
	geo, err := ioprof.NewGeometry("sdb", 512, 1<<20, 4*2048)
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	if geo.NumBuckets != 4 {
		t.Fatalf("num_buckets = %d, want 4", geo.NumBuckets)
	}
	s := ioprof.NewShardState(geo)
	// Starts 8 sectors before the device end and reads far past it.
	s.Add(&ioprof.Record{Op: ioprof.Read, StartLBA: uint64(4*2048 - 8), SectorCount: 64})

	if s.Reads[3] == 0 {
		t.Fatalf("reads[3] = 0, want the overflow clamped onto bucket 3")
	}
	for b, n := range s.Reads {
		if b > 3 {
			t.Fatalf("touched out-of-range bucket %d with %d hits", b, n)
		}
	}
}

// TestShardStateBucketsTouchedMatchesSpan asserts the number of distinct
// buckets incremented by one record equals the inclusive byte-range span
// implied by its start offset and length, for a variety of offsets that
// straddle a bucket boundary by varying amounts.
func TestShardStateBucketsTouchedMatchesSpan(t *testing.T) {
	geo := scenarioGeometry(t)
	sectorsPerBucket := geo.BucketSize / geo.SectorSize // 2048

	cases := []struct {
		startLBA    uint64
		sectorCount uint32
	}{
		{0, uint32(sectorsPerBucket)},                 // exactly one bucket
		{uint64(sectorsPerBucket) - 4, 2 * uint32(sectorsPerBucket)}, // starts just before a boundary
		{uint64(sectorsPerBucket) / 2, uint32(sectorsPerBucket)},     // mid-bucket start
	}
	for _, c := range cases {
		s := ioprof.NewShardState(geo)
		s.Add(&ioprof.Record{Op: ioprof.Read, StartLBA: c.startLBA, SectorCount: c.sectorCount})

		startByte := int64(c.startLBA) * geo.SectorSize
		endByte := startByte + int64(c.sectorCount)*geo.SectorSize - 1
		wantSpan := endByte/geo.BucketSize - startByte/geo.BucketSize + 1

		gotSpan := int64(len(s.Reads))
		if gotSpan != wantSpan {
			t.Fatalf("start=%d count=%d: touched %d buckets, want %d", c.startLBA, c.sectorCount, gotSpan, wantSpan)
		}
		if uint64(gotSpan) != s.BucketHitsTotal {
			t.Fatalf("bucket_hits_total=%d does not match distinct buckets touched %d", s.BucketHitsTotal, gotSpan)
		}
	}
}

func TestShardStateMaxBucketHitsTracksRepeatedHits(t *testing.T) {
	geo := scenarioGeometry(t)
	s := ioprof.NewShardState(geo)
	for i := 0; i < 5; i++ {
		s.Add(&ioprof.Record{Op: ioprof.Read, StartLBA: 0, SectorCount: 8})
	}
	if s.MaxBucketHits != 5 {
		t.Fatalf("max_bucket_hits = %d, want 5", s.MaxBucketHits)
	}
	if math.Abs(float64(s.Reads[0])-5) > 0 {
		t.Fatalf("reads[0] = %d, want 5", s.Reads[0])
	}
}
