// Package cos provides common low-level types and utilities for ioprof.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"errors"
	"fmt"
	"os"
	"sync"
	ratomic "sync/atomic"
)

var (
	ErrQuantityUsage   = errors.New("invalid quantity, format should be '81%' or '1MiB'")
	ErrQuantityPercent = errors.New("percent must be in the range (0, 100]")
	ErrQuantityBytes   = errors.New("value (bytes) must be non-negative")
)

// Errs is a bounded, deduplicating multi-error collector. The orchestrator
// uses one per error kind (shard read, attribution) so a run with many
// skipped shards still reports a single, capped summary line instead of
// flooding the log.
type Errs struct {
	errs []error
	cnt  int64
	mu   sync.Mutex
}

const maxErrs = 8

func (e *Errs) Add(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	for _, added := range e.errs {
		if added.Error() == err.Error() {
			e.mu.Unlock()
			return
		}
	}
	if len(e.errs) < maxErrs {
		e.errs = append(e.errs, err)
	}
	ratomic.AddInt64(&e.cnt, 1)
	e.mu.Unlock()
}

// Cnt returns the number of non-nil errors Add accepted, including those
// beyond the maxErrs cap kept for display. An error whose message matches
// one already kept is not counted again.
func (e *Errs) Cnt() int { return int(ratomic.LoadInt64(&e.cnt)) }

func (e *Errs) Error() string {
	cnt := e.Cnt()
	if cnt == 0 {
		return ""
	}
	e.mu.Lock()
	kept := len(e.errs)
	var first error
	if kept > 0 {
		first = e.errs[0]
	}
	e.mu.Unlock()
	if first == nil {
		return ""
	}
	if cnt > 1 {
		return fmt.Sprintf("%v (and %d more)", first, cnt-1)
	}
	return first.Error()
}

const fatalPrefix = "FATAL ERROR: "

// Exitf prints a fatal message to stderr and exits(1); the CLI uses it for
// errors that reach main without an exit code of their own.
func Exitf(f string, a ...any) {
	fmt.Fprintln(os.Stderr, fmt.Sprintf(fatalPrefix+f, a...))
	os.Exit(1)
}
