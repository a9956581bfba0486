// Package cos provides common low-level types and utilities for ioprof.
/*
 * Copyright (c) 2018-2022, NVIDIA CORPORATION. All rights reserved.
 */
package cos_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/NVIDIA/ioprof/cmn/cos"
)

var _ = Describe("ParseSize", func() {
	It("parses MiB/KiB/GiB suffixes", func() {
		n, err := cos.ParseSize("1MiB")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeEquivalentTo(cos.MiB))

		n, err = cos.ParseSize("512KiB")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeEquivalentTo(512 * cos.KiB))
	})

	It("parses a bare byte count", func() {
		n, err := cos.ParseSize("4096")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeEquivalentTo(4096))
	})

	It("rejects negative and garbage input", func() {
		_, err := cos.ParseSize("-1")
		Expect(err).To(HaveOccurred())

		_, err = cos.ParseSize("banana")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ParsePercent", func() {
	It("parses a percent suffix", func() {
		f, err := cos.ParsePercent("2%")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(BeNumerically("~", 0.02, 1e-9))
	})

	It("parses a bare fraction", func() {
		f, err := cos.ParsePercent("0.1")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(BeNumerically("~", 0.1, 1e-9))
	})

	It("rejects out-of-range fractions", func() {
		_, err := cos.ParsePercent("150%")
		Expect(err).To(HaveOccurred())
	})
})
