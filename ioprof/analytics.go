package ioprof

import (
	"math"
	"sort"
)

// HistogramRow is one capacity-proportional section of the hot-to-cold
// histogram.
type HistogramRow struct {
	CumulativeGB    float64
	SectionIOPSPct  float64 // NaN means "NA": bucket_hits_total == 0
	CumulativeIOPSPct float64
	SectionBWPct    float64
}

// ThetaEstimate is the Zipfian skew estimate derived from the same
// descending-total iteration as the histogram.
type ThetaEstimate struct {
	Valid       bool // false when fewer than two positive totals exist
	MinTheta    float64
	MaxTheta    float64
	AvgTheta    float64
	MedTheta    float64
	ApproxTheta float64
}

// FileHit is one entry of the top-files list.
type FileHit struct {
	Path    string
	Hits    uint64
	Percent float64
}

// Report is the final rendering-ready analytics output.
type Report struct {
	Geometry        *Geometry
	IOTotal, ReadTotal, WriteTotal uint64
	TotalBlocks     uint64
	BucketHitsTotal uint64
	MaxBucketHits   uint64
	RSizes, WSizes  map[uint32]uint64

	IOPSHistogram []HistogramRow
	BWHistogram   []HistogramRow
	Theta         ThetaEstimate

	TopFiles []FileHit
}

// thetaLog computes ln(value)/ln(base), returning 0 when undefined (base
// or value is 0 or 1, since log base 1 is undefined)
func thetaLog(base, value uint64) float64 {
	if value == 0 || base <= 1 {
		return 0
	}
	return math.Log(float64(value)) / math.Log(float64(base))
}

// Analyze derives the histogram, Zipfian theta estimate, and (if any
// extent shards were ingested) the top-files list from final, read-only
// global state. cfg supplies the section-size threshold and
// top-files cutoff.
func Analyze(geo *Geometry, gs *GlobalState, cfg *Config, fileHits map[string]uint64) *Report {
	rep := &Report{
		Geometry:        geo,
		IOTotal:         gs.IOTotal,
		ReadTotal:       gs.ReadTotal,
		WriteTotal:      gs.WriteTotal,
		TotalBlocks:     gs.TotalBlocks,
		BucketHitsTotal: gs.BucketHitsTotal,
		MaxBucketHits:   gs.MaxBucketHits,
		RSizes:          gs.RSizes,
		WSizes:          gs.WSizes,
	}

	// counts[total] = number of buckets whose combined read+write hit
	// count equals total. Only touched buckets are considered: an idle
	// (zero-hit) bucket contributes nothing to the hot-to-cold histogram
	// or to theta.
	counts := tallyBucketTotals(gs)

	totals := make([]uint64, 0, len(counts))
	for t := range counts {
		if t > 0 {
			totals = append(totals, t)
		}
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i] > totals[j] })

	totalCapacityBytes := float64(geo.TotalBytes())
	sectionThresholdBytes := cfg.Percent * totalCapacityBytes

	var (
		sectionBytes, sectionIOPS float64
		cumGBBytes, cumIOPS       float64
		rank                      uint64
		maxTotal                  uint64
		haveMax                   bool
		minTheta                  = math.Inf(1)
		maxTheta                  = math.Inf(-1)
		thetaSum                  float64
		thetaCount                int
	)

	flush := func() {
		row := HistogramRow{CumulativeGB: cumGBBytes / float64(cosGiB)}
		if gs.BucketHitsTotal == 0 {
			row.SectionIOPSPct = math.NaN()
			row.CumulativeIOPSPct = math.NaN()
			row.SectionBWPct = math.NaN()
		} else {
			row.SectionIOPSPct = (sectionIOPS / float64(gs.BucketHitsTotal)) * 100
			row.CumulativeIOPSPct = (cumIOPS / float64(gs.BucketHitsTotal)) * 100
		}
		if totalCapacityBytes > 0 {
			row.SectionBWPct = (sectionBytes / totalCapacityBytes) * 100
		}
		rep.IOPSHistogram = append(rep.IOPSHistogram, row)
		bwRow := row
		rep.BWHistogram = append(rep.BWHistogram, bwRow)
		sectionBytes, sectionIOPS = 0, 0
	}

	for _, total := range totals {
		n := counts[total]

		if !haveMax {
			haveMax = true
			maxTotal = total
		} else {
			rank++
			cur := thetaLog(rank+1, maxTotal) - thetaLog(rank+1, total)
			if cur < minTheta {
				minTheta = cur
			}
			if cur > maxTheta {
				maxTheta = cur
			}
			thetaSum += cur
			thetaCount++
		}

		for i := int64(0); i < n; i++ {
			sectionIOPS += float64(total)
			cumIOPS += float64(total)
			sectionBytes += float64(geo.BucketSize)
			cumGBBytes += float64(geo.BucketSize)
			if sectionBytes >= sectionThresholdBytes && sectionThresholdBytes > 0 {
				flush()
			}
		}
	}
	if sectionBytes > 0 || sectionIOPS > 0 {
		flush()
	}

	if thetaCount > 0 {
		avg := thetaSum / float64(thetaCount)
		med := (maxTheta + minTheta) / 2
		rep.Theta = ThetaEstimate{
			Valid:       true,
			MinTheta:    minTheta,
			MaxTheta:    maxTheta,
			AvgTheta:    avg,
			MedTheta:    med,
			ApproxTheta: (avg + med) / 2,
		}
	}

	if len(fileHits) > 0 {
		type kv struct {
			path string
			hits uint64
		}
		kvs := make([]kv, 0, len(fileHits))
		for p, h := range fileHits {
			kvs = append(kvs, kv{p, h})
		}
		sort.Slice(kvs, func(i, j int) bool {
			if kvs[i].hits != kvs[j].hits {
				return kvs[i].hits > kvs[j].hits
			}
			return kvs[i].path < kvs[j].path
		})
		limit := int(cfg.TopCountLimit)
		if limit > len(kvs) {
			limit = len(kvs)
		}
		for _, e := range kvs[:limit] {
			if e.hits == 0 {
				continue
			}
			pct := 0.0
			if gs.BucketHitsTotal > 0 {
				pct = (float64(e.hits) / float64(gs.BucketHitsTotal)) * 100
			}
			rep.TopFiles = append(rep.TopFiles, FileHit{Path: e.path, Hits: e.hits, Percent: pct})
		}
	}

	return rep
}

// AnalyticsCaveats reports the sections of rep that were suppressed for
// lack of data, as AnalyticsErrors the orchestrator can log instead of
// leaving a reader to wonder why a section is empty.
func AnalyticsCaveats(rep *Report) []*AnalyticsError {
	var errs []*AnalyticsError
	if rep.BucketHitsTotal == 0 {
		errs = append(errs, &AnalyticsError{Reason: "no bucket hits recorded; histogram sections report No Bucket Hits"})
	}
	if !rep.Theta.Valid {
		errs = append(errs, &AnalyticsError{Reason: "fewer than two positive bucket totals; theta estimate suppressed"})
	}
	return errs
}

func tallyBucketTotals(gs *GlobalState) map[uint64]int64 {
	counts := make(map[uint64]int64)
	seen := make(map[int64]struct{}, len(gs.Reads)+len(gs.Writes))
	for b := range gs.Reads {
		seen[b] = struct{}{}
	}
	for b := range gs.Writes {
		seen[b] = struct{}{}
	}
	for b := range seen {
		counts[gs.BucketHits(b)]++
	}
	return counts
}

const cosGiB = 1024 * 1024 * 1024
