// Package ioprof implements the trace-processing engine: bucket geometry,
// record parsing, per-worker accumulation, aggregation, file attribution,
// and histogram/Zipfian analytics over block-device I/O traces.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package ioprof

import (
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// Geometry is the immutable bucket-space description of a device, derived
// once from device metadata before any accumulation begins. It is passed by reference and never mutated.
type Geometry struct {
	Device     string
	SectorSize int64 // bytes per sector
	BucketSize int64 // bytes per bucket
	TotalLBAs  int64 // sector count on the device
	NumBuckets int64
}

// NewGeometry computes NumBuckets from sector/bucket sizes and total LBA
// count: num_buckets = floor(total_lbas * sector_size / bucket_size).
func NewGeometry(device string, sectorSize, bucketSize, totalLBAs int64) (*Geometry, error) {
	if sectorSize <= 0 || bucketSize <= 0 || totalLBAs <= 0 {
		return nil, errors.Errorf("invalid geometry: sector_size=%d bucket_size=%d total_lbas=%d",
			sectorSize, bucketSize, totalLBAs)
	}
	num := (totalLBAs * sectorSize) / bucketSize
	if num < 1 {
		num = 1
	}
	return &Geometry{
		Device:     device,
		SectorSize: sectorSize,
		BucketSize: bucketSize,
		TotalLBAs:  totalLBAs,
		NumBuckets: num,
	}, nil
}

// LBAToBucket maps a logical block address to its containing bucket,
// clamping to the last valid bucket for LBAs that overshoot the reported
// device end.
func (g *Geometry) LBAToBucket(lba int64) int64 {
	b := (lba * g.SectorSize) / g.BucketSize
	if b >= g.NumBuckets {
		return g.NumBuckets - 1
	}
	if b < 0 {
		return 0
	}
	return b
}

// BucketToLBA maps a bucket id back to its first LBA.
func (g *Geometry) BucketToLBA(bucket int64) int64 {
	return (bucket * g.BucketSize) / g.SectorSize
}

// TotalBytes is the device capacity implied by this geometry, used for
// bandwidth-share analytics.
func (g *Geometry) TotalBytes() int64 {
	return g.TotalLBAs * g.SectorSize
}

var (
	reUnits = regexp.MustCompile(`Units\s*=\s*sectors\s+of\s+\d+\s*\*\s*\d+\s*=\s*(\d+)\s*bytes`)
	reTotal = regexp.MustCompile(`total\s+(\d+)\s+sectors`)
	reDisk  = regexp.MustCompile(`Disk\s+(\S+):\s+[0-9.]+\s+GB,\s+\d+\s+bytes`)
)

// GeometryError is fatal: the run aborts without a report when
// device metadata can't be fully parsed.
type GeometryError struct {
	Missing string
}

func (e *GeometryError) Error() string {
	return "geometry error: missing or unparsable " + e.Missing
}

// ParseDeviceMetadata extracts sector_size, total_lbas, and the device
// identifier from an fdisk-style text blob. All three scalars
// must be present or the run fails with a GeometryError.
func ParseDeviceMetadata(text string) (sectorSize, totalLBAs int64, device string, err error) {
	m := reUnits.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, "", errors.WithStack(&GeometryError{Missing: "sector_size"})
	}
	sectorSize, convErr := strconv.ParseInt(m[1], 10, 64)
	if convErr != nil {
		return 0, 0, "", errors.Wrap(&GeometryError{Missing: "sector_size"}, convErr.Error())
	}

	m = reTotal.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, "", errors.WithStack(&GeometryError{Missing: "total_lbas"})
	}
	totalLBAs, convErr = strconv.ParseInt(m[1], 10, 64)
	if convErr != nil {
		return 0, 0, "", errors.Wrap(&GeometryError{Missing: "total_lbas"}, convErr.Error())
	}

	m = reDisk.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, "", errors.WithStack(&GeometryError{Missing: "device"})
	}
	device = m[1]

	return sectorSize, totalLBAs, device, nil
}
