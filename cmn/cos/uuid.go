// Package cos provides common low-level types and utilities for ioprof.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/teris-io/shortid"
)

// Alphabet for generating run IDs: a reordering of the 64 characters of
// shortid.DEFAULT_ABC, look-alikes such as 0/O and 1/l/I included.
const runIDABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

var sid *shortid.Shortid

func init() {
	sid = shortid.MustNew(1 /*worker*/, runIDABC, uint64(time.Now().UnixNano()))
}

// GenRunID returns a short, human-printable identifier for one profiling
// run, included in the report header so two runs over the same inputs can
// be told apart in logs.
func GenRunID() string {
	return sid.MustGenerate()
}

// ShardFingerprint returns a stable hash of a shard's path, used by the
// orchestrator to dedup shard enumeration results without keeping the
// full path set in memory.
func ShardFingerprint(path string) uint64 {
	return xxhash.Checksum64S([]byte(path), 0)
}
