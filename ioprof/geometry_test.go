package ioprof_test

import (
	"testing"

	"github.com/NVIDIA/ioprof/ioprof"
)

func scenarioGeometry(t *testing.T) *ioprof.Geometry {
	t.Helper()
	geo, err := ioprof.NewGeometry("sdb", 512, 1<<20, 2048*2048)
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	if geo.NumBuckets != 2048 {
		t.Fatalf("num_buckets = %d, want 2048", geo.NumBuckets)
	}
	return geo
}

func TestNewGeometryComputesNumBuckets(t *testing.T) {
	scenarioGeometry(t)
}

func TestLBAToBucketRoundTrip(t *testing.T) {
	geo := scenarioGeometry(t)
	for b := int64(0); b < geo.NumBuckets; b++ {
		lba := geo.BucketToLBA(b)
		if got := geo.LBAToBucket(lba); got != b {
			t.Fatalf("lba_to_bucket(bucket_to_lba(%d)) = %d, want %d", b, got, b)
		}
	}
}

func TestLBAToBucketClampsAtDeviceEnd(t *testing.T) {
	// num_buckets=4, overflowing LBAs clamp to bucket 3.
	geo, err := ioprof.NewGeometry("sdb", 512, 1<<20, 4*2048)
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	if geo.NumBuckets != 4 {
		t.Fatalf("num_buckets = %d, want 4", geo.NumBuckets)
	}
	overflow := geo.LBAToBucket(int64(4*2048*10)) // far past device end
	if overflow != 3 {
		t.Fatalf("overflowing lba mapped to bucket %d, want 3", overflow)
	}
}

func TestParseDeviceMetadata(t *testing.T) {
	text := `
Disk /dev/sdb: 2147 GB, 2147483648 bytes
255 heads, 63 sectors/track, 261 cylinders, total 4194304 sectors
Units = sectors of 1 * 512 = 512 bytes
`
	sectorSize, totalLBAs, device, err := ioprof.ParseDeviceMetadata(text)
	if err != nil {
		t.Fatalf("ParseDeviceMetadata: %v", err)
	}
	if sectorSize != 512 || totalLBAs != 4194304 || device != "/dev/sdb" {
		t.Fatalf("got sector_size=%d total_lbas=%d device=%q", sectorSize, totalLBAs, device)
	}
}

func TestParseDeviceMetadataMissingField(t *testing.T) {
	_, _, _, err := ioprof.ParseDeviceMetadata("nothing useful here")
	if err == nil {
		t.Fatal("expected a GeometryError for unparsable metadata")
	}
}
