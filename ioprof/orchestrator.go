package ioprof

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/ioprof/cmn/cos"
	"github.com/NVIDIA/ioprof/cmn/nlog"
)

// State names the orchestrator's lifecycle.
type State int

const (
	StateInit State = iota
	StateGeometryLoaded
	StateIngesting
	StateDrained
	StateAttributing
	StateAnalyzing
	StateReported
)

func (s State) String() string {
	return [...]string{
		"init", "geometry-loaded", "ingesting", "drained",
		"attributing", "analyzing", "reported",
	}[s]
}

// ShardKind distinguishes the two input shard families.
type ShardKind int

const (
	TraceShard ShardKind = iota
	ExtentShard
)

// ShardRef is one enumerated input file.
type ShardRef struct {
	Kind ShardKind
	Path string
}

// Orchestrator drives the pipeline end to end: enumerate
// inputs, spawn workers, join, then attribute/analyze/report.
type Orchestrator struct {
	Geo    *Geometry
	Config *Config
	Global *GlobalState

	// Metrics, if set, receives live ingestion counters while Run is in
	// flight. Nil-safe: a zero-value *Metrics is a no-op.
	Metrics *Metrics

	// ExtentStore, if set, backs the file->LBA-range index on disk
	// instead of Global.FilesToLBAs; both the extent ingester and the
	// attributor read through it when it's non-nil.
	ExtentStore *ExtentStore

	RunID string

	shardErrs     cos.Errs
	attributeErrs cos.Errs
	analyticsErrs cos.Errs

	state State
}

// NewOrchestrator constructs an orchestrator once geometry and config are
// known.
func NewOrchestrator(geo *Geometry, cfg *Config) *Orchestrator {
	return &Orchestrator{
		Geo:    geo,
		Config: cfg,
		Global: NewGlobalState(geo),
		RunID:  cos.GenRunID(),
		state:  StateGeometryLoaded,
	}
}

func (o *Orchestrator) setState(s State) {
	o.state = s
	nlog.Infof("run=%s state=%s", o.RunID, s)
}

// EnumerateShards lists every input shard under dir.
// Trace shards are files ending in ".trace" (optionally ".trace.gz",
// decompression being an external concern); extent shards end
// in ".extent". This naming convention is ioprof's own.
//
// A shard's logical identity is its path with any ".gz" suffix trimmed,
// fingerprinted with cos.ShardFingerprint: a directory holding both the
// compressed and decompressed copy of the same shard (a leftover from a
// partial unpack) is ingested once, not twice.
func EnumerateShards(dir string) ([]ShardRef, error) {
	var refs []ShardRef
	seen := make(map[uint64]int) // fingerprint -> index into refs
	err := godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			trimmed := strings.TrimSuffix(path, ".gz")
			base := filepath.Base(trimmed)
			var kind ShardKind
			switch {
			case strings.HasSuffix(base, ".trace"):
				kind = TraceShard
			case strings.HasSuffix(base, ".extent"):
				kind = ExtentShard
			default:
				return nil
			}
			fp := cos.ShardFingerprint(trimmed)
			if idx, dup := seen[fp]; dup {
				// Keep the decompressed copy: the default opener reads
				// shards as plain text.
				if path == trimmed {
					nlog.Warningf("skipping duplicate shard %s", refs[idx].Path)
					refs[idx].Path = path
					return nil
				}
				nlog.Warningf("skipping duplicate shard %s", path)
				return nil
			}
			seen[fp] = len(refs)
			refs = append(refs, ShardRef{Kind: kind, Path: path})
			return nil
		},
		Unsorted: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "enumerate shards")
	}
	return refs, nil
}

// Run spawns one worker per shard (capped by Config.ThreadMax, or fully
// serial when SingleThreaded), joins them, then attributes and analyzes.
// open defaults to os.Open when nil; tests can substitute an in-memory
// opener.
func (o *Orchestrator) Run(ctx context.Context, shards []ShardRef, open func(string) (io.ReadCloser, error)) (*Report, error) {
	if open == nil {
		open = func(p string) (io.ReadCloser, error) { return os.Open(p) }
	}

	o.setState(StateIngesting)

	g, gctx := errgroup.WithContext(ctx)
	if !o.Config.SingleThreaded && o.Config.ThreadMax > 0 {
		g.SetLimit(int(o.Config.ThreadMax))
	} else if o.Config.SingleThreaded {
		g.SetLimit(1)
	}

	for _, ref := range shards {
		ref := ref
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			return o.processShard(ref, open)
		})
	}

	// A worker failure is isolated: shard errors are recorded, not
	// propagated, so errgroup.Wait only returns ctx cancellation here.
	if err := g.Wait(); err != nil && errors.Is(err, context.Canceled) {
		return nil, err
	}

	o.setState(StateDrained)

	if n := o.shardErrs.Cnt(); n > 0 {
		nlog.Warningf("run=%s %d shard(s) skipped: %s", o.RunID, n, o.shardErrs.Error())
	}

	o.setState(StateAttributing)
	attributor := NewAttributor(o.Geo, o.Global)
	var source extentSource = o.Global
	if o.ExtentStore != nil {
		source = o.ExtentStore
	}
	if err := attributor.BuildInvertedIndex(source, &o.attributeErrs); err != nil {
		return nil, errors.Wrap(err, "build inverted index")
	}
	if n := o.attributeErrs.Cnt(); n > 0 {
		nlog.Warningf("run=%s %d file(s) skipped during attribution: %s", o.RunID, n, o.attributeErrs.Error())
	}
	fileHits := attributor.ComputeFileHits()

	o.setState(StateAnalyzing)
	rep := Analyze(o.Geo, o.Global, o.Config, fileHits)
	for _, ae := range AnalyticsCaveats(rep) {
		o.analyticsErrs.Add(ae)
		nlog.Warningf("run=%s %s", o.RunID, ae.Error())
	}

	o.setState(StateReported)
	return rep, nil
}

func (o *Orchestrator) processShard(ref ShardRef, open func(string) (io.ReadCloser, error)) error {
	f, err := open(ref.Path)
	if err != nil {
		o.shardErrs.Add(&ShardReadError{Path: ref.Path, Err: err})
		nlog.Warningln((&ShardReadError{Path: ref.Path, Err: err}).Error())
		o.Metrics.ShardSkipped()
		return nil
	}
	defer f.Close()

	switch ref.Kind {
	case TraceShard:
		if err := o.processTraceShard(ref.Path, f); err != nil {
			o.shardErrs.Add(&ShardReadError{Path: ref.Path, Err: err})
			nlog.Warningln((&ShardReadError{Path: ref.Path, Err: err}).Error())
			o.Metrics.ShardSkipped()
			return nil
		}
		o.Metrics.ShardProcessed()
		return nil
	case ExtentShard:
		if err := o.ingestExtentShard(f); err != nil {
			o.shardErrs.Add(&ShardReadError{Path: ref.Path, Err: err})
			nlog.Warningln((&ShardReadError{Path: ref.Path, Err: err}).Error())
			o.Metrics.ShardSkipped()
			return nil
		}
		o.Metrics.ShardProcessed()
		return nil
	}
	return nil
}

// ingestExtentShard routes f through the disk-backed ExtentStore when one
// is configured, or into Global.FilesToLBAs otherwise.
func (o *Orchestrator) ingestExtentShard(f io.Reader) error {
	if o.ExtentStore != nil {
		return IngestExtentShardToStore(f, o.ExtentStore)
	}
	return IngestExtentShard(f, o.Global)
}

func (o *Orchestrator) processTraceShard(path string, r io.Reader) error {
	shard := NewShardState(o.Geo)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		rec, ok := ParseLine(sc.Text())
		if !ok {
			continue
		}
		shard.Add(rec)
	}
	if err := sc.Err(); err != nil {
		return err
	}
	o.Global.Merge(shard)
	o.Metrics.SetBucketHits(o.Global.BucketHitsSnapshot())
	return nil
}
