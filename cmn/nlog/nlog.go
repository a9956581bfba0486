// Package nlog is ioprof's leveled, timestamped logger, adapted from
// aistore's nlog for a one-shot CLI rather than a long-running daemon
// (unbuffered writes, no segment rotation, no mmap'd page writer).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

func (s severity) tag() string {
	switch s {
	case sevWarn:
		return "W"
	case sevErr:
		return "E"
	default:
		return "I"
	}
}

var (
	mu     sync.Mutex
	out    io.Writer = os.Stderr
	title  string
	logDir string
)

// SetOutput redirects subsequent log lines; used by -logdir.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

// SetLogDirRole opens (or creates) dir/ioprof.log and routes log output to
// it. role is accepted for signature symmetry with multi-role daemons even
// though ioprof only ever runs a single role.
func SetLogDirRole(dir, _ string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(dir+"/ioprof.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	logDir = dir
	SetOutput(f)
	return nil
}

func SetTitle(s string) { title = s }

func log(sev severity, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	mu.Lock()
	defer mu.Unlock()
	ts := time.Now().Format("2006-01-02T15:04:05.000")
	prefix := ts + " " + sev.tag()
	if title != "" {
		prefix += " [" + title + "]"
	}
	fmt.Fprintf(out, "%s %s\n", prefix, msg)
}

func Infoln(args ...any)                  { log(sevInfo, fmt.Sprint(args...)) }
func Infof(format string, args ...any)    { log(sevInfo, format, args...) }
func Warningln(args ...any)               { log(sevWarn, fmt.Sprint(args...)) }
func Warningf(format string, args ...any) { log(sevWarn, format, args...) }
func Errorln(args ...any)                 { log(sevErr, fmt.Sprint(args...)) }
func Errorf(format string, args ...any)   { log(sevErr, format, args...) }

// Flush is a no-op placeholder: output here is unbuffered, so there's
// nothing to force out. Kept so call sites written against a buffered
// logger don't need an ifdef.
func Flush(...bool) {}
