// Package cos provides common low-level types and utilities for ioprof.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"strconv"
	"strings"
)

const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
)

var sizeSuffixes = []struct {
	suffix string
	mult   int64
}{
	{"GiB", GiB}, {"GB", GiB},
	{"MiB", MiB}, {"MB", MiB},
	{"KiB", KiB}, {"KB", KiB},
	{"B", 1},
}

// ParseSize parses a byte quantity such as "1MiB", "512KB", or a bare
// integer number of bytes. Used for the bucket_size configuration knob
//.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrQuantityUsage
	}
	for _, sx := range sizeSuffixes {
		if strings.HasSuffix(s, sx.suffix) {
			numPart := strings.TrimSpace(strings.TrimSuffix(s, sx.suffix))
			n, err := strconv.ParseFloat(numPart, 64)
			if err != nil {
				return 0, ErrQuantityUsage
			}
			if n < 0 {
				return 0, ErrQuantityBytes
			}
			return int64(n * float64(sx.mult)), nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrQuantityUsage
	}
	if n < 0 {
		return 0, ErrQuantityBytes
	}
	return n, nil
}

// ParsePercent parses a fraction expressed either as "2%" or "0.02" and
// returns it as a fraction in (0, 1]. Used for the histogram section
// threshold configuration knob.
func ParsePercent(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrQuantityUsage
	}
	if strings.HasSuffix(s, "%") {
		n, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, ErrQuantityUsage
		}
		n /= 100.0
		if n <= 0 || n > 1 {
			return 0, ErrQuantityPercent
		}
		return n, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrQuantityUsage
	}
	if n <= 0 || n > 1 {
		return 0, ErrQuantityPercent
	}
	return n, nil
}
