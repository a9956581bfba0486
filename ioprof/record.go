package ioprof

import (
	"strconv"
	"strings"
)

// Op is the I/O direction alphabet the parser accepts.
type Op int

const (
	Read Op = iota
	Write
)

func (o Op) String() string {
	if o == Read {
		return "R"
	}
	return "W"
}

// Record is one parsed block-trace I/O.
type Record struct {
	Op          Op
	StartLBA    uint64
	SectorCount uint32
}

// opFor maps the literal op token from a trace line to a Record direction.
// RW counts as Read and WS counts as Write, matching blktrace's rwbs flag
// conventions. Any other token means the line is a notification or
// completion irrelevant to bucket accounting and is not an error — it's
// simply not recognized.
func opFor(tok string) (Op, bool) {
	switch tok {
	case "R", "RW":
		return Read, true
	case "W", "WS":
		return Write, true
	default:
		return 0, false
	}
}

// ParseLine turns one post-processed trace line into a Record. Recognized
// shape: whitespace-separated fields ending in `Q <op> <start_lba>
// <sector_count>` — the literal `Q` is blktrace's "queued" action code, and
// only queued events carry the op/lba/size triple this parser wants.
// Malformed numeric fields, a missing `Q` marker, or an unrecognized op
// drop the line silently — traces are full of
// irrelevant notification and completion lines by design.
func ParseLine(line string) (*Record, bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return nil, false
	}
	n := len(fields)
	if fields[n-4] != "Q" {
		return nil, false
	}
	opTok, lbaTok, cntTok := fields[n-3], fields[n-2], fields[n-1]

	op, ok := opFor(opTok)
	if !ok {
		return nil, false
	}
	lba, err := strconv.ParseUint(lbaTok, 10, 64)
	if err != nil {
		return nil, false
	}
	cnt, err := strconv.ParseUint(cntTok, 10, 32)
	if err != nil {
		return nil, false
	}
	return &Record{Op: op, StartLBA: lba, SectorCount: uint32(cnt)}, true
}
