package ioprof_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/NVIDIA/ioprof/cmn/cos"
	"github.com/NVIDIA/ioprof/ioprof"
)

var _ = Describe("Attributor", func() {
	It("credits each file with the hit count of every bucket it maps to", func() {
		geo, err := ioprof.NewGeometry("sdb", 512, 1<<20, 2048*2048)
		Expect(err).NotTo(HaveOccurred())
		sectorsPerBucket := geo.BucketSize / geo.SectorSize // 2048

		gs := ioprof.NewGlobalState(geo)
		// /a spans buckets 0-1, /b spans buckets 1-2.
		gs.MergeExtents("/a", "0:4095")
		gs.MergeExtents("/b", "2048:6143")
		Expect(sectorsPerBucket).To(BeEquivalentTo(2048))

		// One read per bucket 0, 1, 2.
		for _, lba := range []uint64{0, uint64(sectorsPerBucket), uint64(2 * sectorsPerBucket)} {
			s := ioprof.NewShardState(geo)
			s.Add(&ioprof.Record{Op: ioprof.Read, StartLBA: lba, SectorCount: 8})
			gs.Merge(s)
		}

		attr := ioprof.NewAttributor(geo, gs)
		Expect(attr.BuildInvertedIndex(gs, nil)).To(Succeed())
		hits := attr.ComputeFileHits()

		Expect(hits["/a"]).To(BeEquivalentTo(2))
		Expect(hits["/b"]).To(BeEquivalentTo(2))
	})

	It("records an AttributionError for a path with no usable ranges, and skips it", func() {
		geo, err := ioprof.NewGeometry("sdb", 512, 1<<20, 2048*2048)
		Expect(err).NotTo(HaveOccurred())

		gs := ioprof.NewGlobalState(geo)
		gs.MergeExtents("/garbled", "not-a-range also-not")
		gs.MergeExtents("/a", "0:2047")

		var errs cos.Errs
		attr := ioprof.NewAttributor(geo, gs)
		Expect(attr.BuildInvertedIndex(gs, &errs)).To(Succeed())
		Expect(errs.Cnt()).To(Equal(1))
		Expect(errs.Error()).To(ContainSubstring("/garbled"))

		hits := attr.ComputeFileHits()
		Expect(hits).NotTo(HaveKey("/garbled"))
	})
})
