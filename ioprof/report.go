package ioprof

import (
	"fmt"
	"io"
	"math"
	"sort"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompact

// WriteText renders the report in ioprof's line-oriented plain-text format.
func WriteText(w io.Writer, rep *Report, runID string) {
	fmt.Fprintf(w, "Run ID: %s\n", runID)
	fmt.Fprintf(w, "Device: %s\n", rep.Geometry.Device)
	fmt.Fprintf(w, "Geometry: sector_size=%d bucket_size=%d total_lbas=%d num_buckets=%d\n",
		rep.Geometry.SectorSize, rep.Geometry.BucketSize, rep.Geometry.TotalLBAs, rep.Geometry.NumBuckets)
	fmt.Fprintf(w, "I/O total: %d (read=%d write=%d)\n", rep.IOTotal, rep.ReadTotal, rep.WriteTotal)
	fmt.Fprintf(w, "Total blocks: %d\n", rep.TotalBlocks)
	fmt.Fprintf(w, "Bucket hits total: %d (max single-bucket hits: %d)\n", rep.BucketHitsTotal, rep.MaxBucketHits)

	fmt.Fprintln(w, "--------------------------------------------")
	fmt.Fprintln(w, "I/O size histogram (sectors : reads / writes):")
	for _, sz := range mergedSizeKeys(rep.RSizes, rep.WSizes) {
		fmt.Fprintf(w, "%6d : %d / %d\n", sz, rep.RSizes[sz], rep.WSizes[sz])
	}

	fmt.Fprintln(w, "--------------------------------------------")
	fmt.Fprintln(w, "Histogram IOPS:")
	if rep.BucketHitsTotal == 0 {
		fmt.Fprintln(w, "No Bucket Hits")
	} else {
		for _, row := range rep.IOPSHistogram {
			fmt.Fprintf(w, "%.1f GB %s%% (%s%% cumulative)\n",
				row.CumulativeGB, fmtPct(row.SectionIOPSPct), fmtPct(row.CumulativeIOPSPct))
		}
	}

	fmt.Fprintln(w, "--------------------------------------------")
	fmt.Fprintln(w, "Histogram Bandwidth:")
	if rep.BucketHitsTotal == 0 {
		fmt.Fprintln(w, "No Bucket Hits")
	} else {
		for _, row := range rep.BWHistogram {
			fmt.Fprintf(w, "%.1f GB %s%%\n", row.CumulativeGB, fmtPct(row.SectionBWPct))
		}
	}

	fmt.Fprintln(w, "--------------------------------------------")
	if rep.Theta.Valid {
		fmt.Fprintf(w, "Approximate Zipfian Theta Range: %.4f-%.4f (est. %.4f).\n",
			rep.Theta.MinTheta, rep.Theta.MaxTheta, rep.Theta.ApproxTheta)
	} else {
		fmt.Fprintln(w, "Zipfian Theta: insufficient data")
	}

	if len(rep.TopFiles) > 0 {
		fmt.Fprintln(w, "--------------------------------------------")
		fmt.Fprintln(w, "Top files by IOPS:")
		fmt.Fprintf(w, "Total I/O's: %d\n", rep.BucketHitsTotal)
		for _, fh := range rep.TopFiles {
			fmt.Fprintf(w, "%.2f%% (%d) %s\n", fh.Percent, fh.Hits, fh.Path)
		}
		fmt.Fprintln(w, "--------------------------------------------")
	}
}

func fmtPct(f float64) string {
	if math.IsNaN(f) {
		return "NA"
	}
	return fmt.Sprintf("%.1f", f)
}

// jsonReport is the --json output shape, an alternative to the
// plain-text default rendered via json-iterator.
type jsonReport struct {
	RunID           string          `json:"run_id"`
	Device          string          `json:"device"`
	SectorSize      int64           `json:"sector_size"`
	BucketSize      int64           `json:"bucket_size"`
	NumBuckets      int64           `json:"num_buckets"`
	IOTotal         uint64          `json:"io_total"`
	ReadTotal       uint64          `json:"read_total"`
	WriteTotal      uint64          `json:"write_total"`
	TotalBlocks     uint64          `json:"total_blocks"`
	BucketHitsTotal uint64          `json:"bucket_hits_total"`
	MaxBucketHits   uint64          `json:"max_bucket_hits"`
	IOPSHistogram   []HistogramRow  `json:"iops_histogram"`
	BWHistogram     []HistogramRow  `json:"bw_histogram"`
	Theta           ThetaEstimate   `json:"theta"`
	TopFiles        []FileHit       `json:"top_files,omitempty"`
}

// WriteJSON renders the report as JSON using json-iterator.
func WriteJSON(w io.Writer, rep *Report, runID string) error {
	jr := jsonReport{
		RunID:           runID,
		Device:          rep.Geometry.Device,
		SectorSize:      rep.Geometry.SectorSize,
		BucketSize:      rep.Geometry.BucketSize,
		NumBuckets:      rep.Geometry.NumBuckets,
		IOTotal:         rep.IOTotal,
		ReadTotal:       rep.ReadTotal,
		WriteTotal:      rep.WriteTotal,
		TotalBlocks:     rep.TotalBlocks,
		BucketHitsTotal: rep.BucketHitsTotal,
		MaxBucketHits:   rep.MaxBucketHits,
		IOPSHistogram:   rep.IOPSHistogram,
		BWHistogram:     rep.BWHistogram,
		Theta:           rep.Theta,
		TopFiles:        rep.TopFiles,
	}
	enc := jsonAPI.NewEncoder(w)
	return enc.Encode(jr)
}

// mergedSizeKeys returns the union of two I/O-size histogram key sets in
// ascending order, for side-by-side read/write rendering.
func mergedSizeKeys(a, b map[uint32]uint64) []uint32 {
	seen := make(map[uint32]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]uint32, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
