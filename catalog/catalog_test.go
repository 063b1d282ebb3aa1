package catalog

import "testing"

func TestValidDistrict(t *testing.T) {
	if !ValidDistrict("Bihar", "Patna") {
		t.Error("Patna should be a Bihar district")
	}
	if ValidDistrict("Bihar", "Mumbai") {
		t.Error("Mumbai is not a Bihar district")
	}
	if ValidDistrict("Unknown", "Patna") {
		t.Error("unknown state accepted")
	}
}

func TestInEnvelope(t *testing.T) {
	cases := []struct {
		lat, lon float64
		want     bool
	}{
		{25.6, 85.1, true},   // Patna
		{25.6, 77.2, false},  // longitude west of envelope
		{28.7, 85.1, false},  // latitude north of envelope
		{LatMin, LonMin, true},
		{LatMax, LonMax, true},
	}
	for _, c := range cases {
		if got := InEnvelope(c.lat, c.lon); got != c.want {
			t.Errorf("InEnvelope(%v, %v) = %v, want %v", c.lat, c.lon, got, c.want)
		}
	}
}

func TestParameters_NoDuplicates(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Parameters {
		if seen[p] {
			t.Errorf("duplicate parameter %q", p)
		}
		seen[p] = true
	}
	if !ValidParameter("H2S") || !ValidParameter("CL2") {
		t.Error("H2S and CL2 must be distinct species")
	}
}

func TestDistricts_ReturnsCopy(t *testing.T) {
	d := Districts("Bihar")
	if len(d) == 0 {
		t.Fatal("no districts")
	}
	d[0] = "mutated"
	if Districts("Bihar")[0] == "mutated" {
		t.Error("Districts must return a copy")
	}
}
