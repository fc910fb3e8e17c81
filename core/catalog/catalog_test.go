package catalog

import (
	"math"
	"testing"

	"instance-allocator/core/types"
	"instance-allocator/internal/errors"
)

// TestVocabularyCPUTable checks the fixed CPU counts
func TestVocabularyCPUTable(t *testing.T) {
	want := map[string]int{
		"large": 1, "xlarge": 2, "2xlarge": 4,
		"4xlarge": 8, "8xlarge": 16, "10xlarge": 32,
	}
	for name, cpus := range want {
		got, ok := CPUs(name)
		if !ok || got != cpus {
			t.Errorf("CPUs(%s) = %d, %v; want %d", name, got, ok, cpus)
		}
	}
	if _, ok := CPUs("3xlarge"); ok {
		t.Error("3xlarge should not be known")
	}

	v := Vocabulary()
	for i := 1; i < len(v); i++ {
		if v[i].CPUs <= v[i-1].CPUs {
			t.Errorf("vocabulary not ascending at %d", i)
		}
	}
	v[0].CPUs = 99
	if c, _ := CPUs("large"); c != 1 {
		t.Error("Vocabulary must return a copy")
	}
}

// TestNormalizeOrdersByCPU checks tiers come back ascending regardless of map order
func TestNormalizeOrdersByCPU(t *testing.T) {
	prices := types.RegionPrices{
		"10xlarge": 2.97,
		"large":    0.14,
		"8xlarge":  1.3,
		"2xlarge":  0.413,
		"4xlarge":  0.89,
	}

	tiers, err := Normalize("us-west", prices)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	wantTypes := []types.InstanceType{types.Large, types.XLarge2, types.XLarge4, types.XLarge8, types.XLarge10}
	if len(tiers) != len(wantTypes) {
		t.Fatalf("expected %d tiers, got %d", len(wantTypes), len(tiers))
	}
	for i, tier := range tiers {
		if tier.Type != wantTypes[i] {
			t.Errorf("tier %d = %s, want %s", i, tier.Type, wantTypes[i])
		}
		if tier.HourlyPrice != prices[string(tier.Type)] {
			t.Errorf("tier %d price = %v", i, tier.HourlyPrice)
		}
	}
}

// TestNormalizeEmptyRegion checks a region with no offers normalizes to no tiers
func TestNormalizeEmptyRegion(t *testing.T) {
	tiers, err := Normalize("nowhere", types.RegionPrices{})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(tiers) != 0 {
		t.Errorf("expected no tiers, got %v", tiers)
	}
}

// TestNormalizeRejectsUnknownType checks unknown names fail instead of corrupting the order
func TestNormalizeRejectsUnknownType(t *testing.T) {
	_, err := Normalize("us-east", types.RegionPrices{"large": 0.12, "3xlarge": 0.3})
	if !errors.IsType(err, errors.TypeUnknownInstanceType) {
		t.Fatalf("expected UNKNOWN_INSTANCE_TYPE, got %v", err)
	}
}

// TestNormalizeRejectsBadPrices checks non-positive and non-finite prices
func TestNormalizeRejectsBadPrices(t *testing.T) {
	for _, price := range []float64{0, -0.5, math.NaN(), math.Inf(1)} {
		_, err := Normalize("us-east", types.RegionPrices{"large": price})
		if !errors.IsType(err, errors.TypeInvalidPrice) {
			t.Errorf("price %v: expected INVALID_PRICE, got %v", price, err)
		}
	}
}

// TestValidateCollectsAllProblems checks every bad entry is reported in stable order
func TestValidateCollectsAllProblems(t *testing.T) {
	c := types.Catalog{
		"us-west": {"large": 0.14, "huge": 9},
		"us-east": {"xlarge": -1, "large": 0.12},
	}

	errs := Validate(c, DefaultValidationRules())
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if !errors.IsType(errs[0], errors.TypeInvalidPrice) {
		t.Errorf("first error should be the us-east price, got %v", errs[0])
	}
	if !errors.IsType(errs[1], errors.TypeUnknownInstanceType) {
		t.Errorf("second error should be the us-west type, got %v", errs[1])
	}
}

// TestNormalizeAll checks every region is normalized
func TestNormalizeAll(t *testing.T) {
	c := types.Catalog{
		"a": {"xlarge": 0.2, "large": 0.1},
		"b": {"8xlarge": 1.3},
	}
	all, err := NormalizeAll(c)
	if err != nil {
		t.Fatalf("NormalizeAll failed: %v", err)
	}
	if len(all) != 2 || all["a"][0].Type != types.Large || all["b"][0].CPUs != 16 {
		t.Errorf("unexpected result: %v", all)
	}
}
