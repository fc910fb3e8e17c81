package determinism

import (
	"slices"
	"testing"
)

func TestSortedKeys(t *testing.T) {
	m := map[string]float64{"us-west": 1, "eu-central": 2, "us-east": 3}

	got := SortedKeys(m)
	want := []string{"eu-central", "us-east", "us-west"}
	if !slices.Equal(got, want) {
		t.Errorf("SortedKeys = %v, want %v", got, want)
	}
}

// TestContentHashIgnoresInsertionOrder checks maps built in different orders hash equally
func TestContentHashIgnoresInsertionOrder(t *testing.T) {
	a := map[string]map[string]float64{}
	a["us-east"] = map[string]float64{"large": 0.12, "xlarge": 0.23}
	a["us-west"] = map[string]float64{"large": 0.14}

	b := map[string]map[string]float64{}
	b["us-west"] = map[string]float64{"large": 0.14}
	b["us-east"] = map[string]float64{"xlarge": 0.23, "large": 0.12}

	ha, err := ContentHash(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := ContentHash(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Errorf("hashes differ: %s vs %s", ha, hb)
	}
	if len(ha) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(ha))
	}
}
