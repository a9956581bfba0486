package ioprof_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/NVIDIA/ioprof/ioprof"
)

// makeShardStates builds a fixed set of worker shard states from the same
// underlying records, used to check that GlobalState.Merge is commutative
// regardless of drain order.
func makeShardStates(geo *ioprof.Geometry) []*ioprof.ShardState {
	recs := [][]ioprof.Record{
		{
			{Op: ioprof.Read, StartLBA: 0, SectorCount: 8},
			{Op: ioprof.Write, StartLBA: 2040, SectorCount: 4096},
		},
		{
			{Op: ioprof.Read, StartLBA: 4096, SectorCount: 16},
			{Op: ioprof.Read, StartLBA: 0, SectorCount: 8},
		},
		{
			{Op: ioprof.Write, StartLBA: 100000, SectorCount: 32},
		},
	}
	states := make([]*ioprof.ShardState, len(recs))
	for i, rs := range recs {
		s := ioprof.NewShardState(geo)
		for j := range rs {
			s.Add(&rs[j])
		}
		states[i] = s
	}
	return states
}

var _ = Describe("GlobalState.Merge", func() {
	It("is order-independent across drain permutations", func() {
		geo, err := ioprof.NewGeometry("sdb", 512, 1<<20, 2048*2048)
		Expect(err).NotTo(HaveOccurred())

		ordered := makeShardStates(geo)
		baseline := ioprof.NewGlobalState(geo)
		for _, s := range ordered {
			baseline.Merge(s)
		}

		for trial := 0; trial < 5; trial++ {
			shuffled := makeShardStates(geo)
			rand.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			gs := ioprof.NewGlobalState(geo)
			for _, s := range shuffled {
				gs.Merge(s)
			}

			Expect(gs.IOTotal).To(Equal(baseline.IOTotal))
			Expect(gs.ReadTotal).To(Equal(baseline.ReadTotal))
			Expect(gs.WriteTotal).To(Equal(baseline.WriteTotal))
			Expect(gs.BucketHitsTotal).To(Equal(baseline.BucketHitsTotal))
			Expect(gs.MaxBucketHits).To(Equal(baseline.MaxBucketHits))
			for b := int64(0); b < geo.NumBuckets; b++ {
				Expect(gs.BucketHits(b)).To(Equal(baseline.BucketHits(b)), "bucket %d", b)
			}
		}
	})
})
