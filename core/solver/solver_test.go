package solver

import (
	"reflect"
	"testing"

	"instance-allocator/core/catalog"
	"instance-allocator/core/types"
)

func usEast(t *testing.T) []types.Tier {
	t.Helper()
	tiers, err := catalog.Normalize("us-east", types.RegionPrices{
		"large": 0.12, "xlarge": 0.23, "2xlarge": 0.45,
		"4xlarge": 0.774, "8xlarge": 1.4, "10xlarge": 2.82,
	})
	if err != nil {
		t.Fatal(err)
	}
	return tiers
}

func usWest(t *testing.T) []types.Tier {
	t.Helper()
	tiers, err := catalog.Normalize("us-west", types.RegionPrices{
		"large": 0.14, "2xlarge": 0.413, "4xlarge": 0.89,
		"8xlarge": 1.3, "10xlarge": 2.97,
	})
	if err != nil {
		t.Fatal(err)
	}
	return tiers
}

func servers(pairs ...interface{}) []types.Server {
	out := []types.Server{}
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, types.Server{Type: types.InstanceType(pairs[i].(string)), Units: pairs[i+1].(int)})
	}
	return out
}

// TestMinCPUsUpgrade checks the single-tier upgrade replaces a costlier greedy plan
func TestMinCPUsUpgrade(t *testing.T) {
	plan := MinCPUs("us-east", usEast(t), 15, 1)

	if !reflect.DeepEqual(plan.Servers, servers("8xlarge", 1)) {
		t.Errorf("servers = %v", plan.Servers)
	}
	if plan.TotalCost != 1.4 {
		t.Errorf("total = %v, want 1.4", plan.TotalCost)
	}
	if !plan.Upgraded || plan.Feasibility != types.Satisfied {
		t.Errorf("expected satisfied upgrade, got %+v", plan)
	}
	if plan.ProvisionedCPUs != 16 {
		t.Errorf("provisioned = %d", plan.ProvisionedCPUs)
	}

	west := MinCPUs("us-west", usWest(t), 15, 1)
	if !reflect.DeepEqual(west.Servers, servers("8xlarge", 1)) || west.TotalCost != 1.3 {
		t.Errorf("us-west plan = %+v", west)
	}
}

// TestMinCPUsGreedyWithoutUpgrade checks the ascending server order when the greedy plan wins
func TestMinCPUsGreedyWithoutUpgrade(t *testing.T) {
	plan := MinCPUs("us-east", usEast(t), 40, 1)

	if !reflect.DeepEqual(plan.Servers, servers("4xlarge", 1, "10xlarge", 1)) {
		t.Errorf("servers = %v", plan.Servers)
	}
	if plan.TotalCost != 3.594 {
		t.Errorf("total = %v", plan.TotalCost)
	}
	if plan.Upgraded {
		t.Error("largest tier was used, no upgrade possible")
	}
	if plan.ProvisionedCPUs != 40 {
		t.Errorf("provisioned = %d", plan.ProvisionedCPUs)
	}
}

// TestMinCPUsScalesByHours checks the total is the hourly cost times hours
func TestMinCPUsScalesByHours(t *testing.T) {
	hourly := 1.3
	plan := MinCPUs("us-west", usWest(t), 15, 24)
	if want := hourly * 24; plan.TotalCost != want {
		t.Errorf("total = %v, want %v", plan.TotalCost, want)
	}
}

// TestMinCPUsBelowOne checks the empty zero-cost plan
func TestMinCPUsBelowOne(t *testing.T) {
	for _, cpus := range []int{0, -3} {
		plan := MinCPUs("us-east", usEast(t), cpus, 5)
		if len(plan.Servers) != 0 || plan.TotalCost != 0 || plan.Feasibility != types.Satisfied {
			t.Errorf("cpus=%d: unexpected plan %+v", cpus, plan)
		}
	}
}

// TestMinCPUsPartial checks a region that cannot reach the floor is reported, not hidden
func TestMinCPUsPartial(t *testing.T) {
	tiers, _ := catalog.Normalize("sparse", types.RegionPrices{"2xlarge": 0.4})

	plan := MinCPUs("sparse", tiers, 5, 1)
	if plan.Feasibility != types.PartiallySatisfied {
		t.Errorf("feasibility = %s", plan.Feasibility)
	}
	if !reflect.DeepEqual(plan.Servers, servers("2xlarge", 1)) {
		t.Errorf("servers = %v", plan.Servers)
	}
}

// TestMinCPUsInfeasible checks a region whose smallest tier exceeds the request
func TestMinCPUsInfeasible(t *testing.T) {
	tiers, _ := catalog.Normalize("big-only", types.RegionPrices{"8xlarge": 1.3})

	plan := MinCPUs("big-only", tiers, 15, 1)
	if plan.Feasibility != types.Infeasible || len(plan.Servers) != 0 || plan.TotalCost != 0 {
		t.Errorf("unexpected plan %+v", plan)
	}
}

// TestMaxPriceGolden checks the greedy spend in both regions
func TestMaxPriceGolden(t *testing.T) {
	west := MaxPrice("us-west", usWest(t), 10, 1)
	if !reflect.DeepEqual(west.Servers, servers("large", 1, "4xlarge", 1, "10xlarge", 3)) {
		t.Errorf("us-west servers = %v", west.Servers)
	}
	if west.TotalCost != 9.940000000000001 {
		t.Errorf("us-west total = %v", west.TotalCost)
	}

	east := MaxPrice("us-east", usEast(t), 10, 1)
	if !reflect.DeepEqual(east.Servers, servers("large", 1, "8xlarge", 1, "10xlarge", 3)) {
		t.Errorf("us-east servers = %v", east.Servers)
	}
	if east.TotalCost != 9.979999999999999 {
		t.Errorf("us-east total = %v", east.TotalCost)
	}
}

// TestMaxPriceNeverExceedsBudget checks the spend stays within the price for several durations
func TestMaxPriceNeverExceedsBudget(t *testing.T) {
	for _, hours := range []float64{1, 2, 7.5, 100} {
		for _, price := range []float64{0.5, 3, 10, 250} {
			plan := MaxPrice("us-east", usEast(t), price, hours)
			if plan.TotalCost > price+1e-9 {
				t.Errorf("hours=%v price=%v: total %v over budget", hours, price, plan.TotalCost)
			}
			for _, s := range plan.Servers {
				if s.Units < 1 {
					t.Errorf("non-positive units in %v", plan.Servers)
				}
			}
		}
	}
}

// TestMaxPriceNothingFits checks the plan is infeasible when the cheapest tier is too dear
func TestMaxPriceNothingFits(t *testing.T) {
	plan := MaxPrice("us-east", usEast(t), 0.1, 1)
	if plan.Feasibility != types.Infeasible || len(plan.Servers) != 0 {
		t.Errorf("unexpected plan %+v", plan)
	}
}

// TestMaxPriceHugeBudgetClampsUnits checks a budget far beyond int range still yields units in every tier
func TestMaxPriceHugeBudgetClampsUnits(t *testing.T) {
	tiers := []types.Tier{
		{Type: types.Large, CPUs: 1, HourlyPrice: 0.12},
		{Type: types.XLarge10, CPUs: 32, HourlyPrice: 2.82},
	}

	plan := MaxPrice("r", tiers, 1e20, 1)

	if plan.Feasibility != types.Satisfied {
		t.Fatalf("feasibility = %s, want satisfied", plan.Feasibility)
	}
	want := servers("large", MaxUnits, "10xlarge", MaxUnits)
	if !reflect.DeepEqual(plan.Servers, want) {
		t.Errorf("servers = %v, want %v", plan.Servers, want)
	}
	if plan.TotalCost <= 0 || plan.TotalCost > 1e20 {
		t.Errorf("total %v outside (0, 1e20]", plan.TotalCost)
	}
	if plan.ProvisionedCPUs != 33*MaxUnits {
		t.Errorf("provisioned = %d, want %d", plan.ProvisionedCPUs, 33*MaxUnits)
	}
}
