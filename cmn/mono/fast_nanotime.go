// Package mono provides a low-level monotonic clock.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package mono

import "time"

// start anchors NanoTime; time.Since on it reads Go's monotonic clock.
var start = time.Now()

// NanoTime returns a monotonic nanosecond reading, counted from package
// initialization. The teacher package obtains this via a go:linkname into
// runtime.nanotime; a one-shot CLI has no need for that level of precision
// or for dodging the time package's allocation, so this keeps the call
// signature and drops the linkname.
func NanoTime() int64 { return int64(time.Since(start)) }
