package ioprof

import (
	"fmt"

	"github.com/NVIDIA/ioprof/cmn/cos"
)

// Attributor builds the bucket->files inverted index and computes
// per-file hit counts from it.
type Attributor struct {
	geo *Geometry
	gs  *GlobalState
}

func NewAttributor(geo *Geometry, gs *GlobalState) *Attributor {
	return &Attributor{geo: geo, gs: gs}
}

// extentSource iterates (path, ranges) pairs; GlobalState and ExtentStore
// both implement it, so the attributor reads the in-memory index or the
// on-disk one without caring which is live for a run.
type extentSource interface {
	Each(fn func(path, ranges string) bool) error
}

// BuildInvertedIndex walks every (path, ranges) pair reachable from
// source and records path against every bucket its ranges touch, with set
// semantics — a path appears once per bucket regardless of how many
// ranges map to it. A path whose entire range list is unparsable is
// recorded in errs as an AttributionError and otherwise skipped; errs may
// be nil.
func (a *Attributor) BuildInvertedIndex(source extentSource, errs *cos.Errs) error {
	return source.Each(func(path, rangesStr string) bool {
		ranges, malformed := parseRanges(rangesStr)
		if len(ranges) == 0 && malformed > 0 {
			if errs != nil {
				errs.Add(&AttributionError{Path: path, Err: fmt.Errorf("%d malformed range(s), 0 usable", malformed)})
			}
			return true
		}
		for _, rg := range ranges {
			b0 := a.geo.LBAToBucket(int64(rg.Start))
			b1 := a.geo.LBAToBucket(int64(rg.End))
			for b := b0; b <= b1; b++ {
				a.gs.addFileToBucket(b, path)
			}
		}
		return true
	})
}

// ComputeFileHits credits each file with the combined read+write hit
// count of every bucket it's mapped to. This is deliberately
// a hit-share proxy, not per-byte attribution: a file spanning N buckets
// each hit M_i times is credited sum(M_i), favoring files that co-reside
// in hot buckets.
// Buckets with no mapped file contribute nothing to any file total.
func (a *Attributor) ComputeFileHits() map[string]uint64 {
	hits := make(map[string]uint64)
	for bucket, files := range a.gs.BucketToFiles {
		bucketHits := a.gs.BucketHits(bucket)
		if bucketHits == 0 {
			continue
		}
		for path := range files {
			hits[path] += bucketHits
		}
	}
	return hits
}
