package curing

import (
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestCalculatePower_ReferenceExample(t *testing.T) {
	c := New("")

	result := c.CalculatePower(SubstrateCoated, InkUV, 6.4, RollerHexagonal, "10 cm³/m²")

	nearlyEqual(t, "BasePower", result.BasePower, 40)
	nearlyEqual(t, "SubstrateContribution", result.SubstrateContribution, 0)
	nearlyEqual(t, "InkContribution", result.InkContribution, 0)
	nearlyEqual(t, "BCMContribution", result.BCMContribution, 64)
	nearlyEqual(t, "TransferFactor", result.TransferFactor, 100*0.25*2.5/3.0)
	if result.TransferValue != "2.5 g/m²" {
		t.Fatalf("TransferValue = %q, want %q", result.TransferValue, "2.5 g/m²")
	}
	nearlyEqual(t, "FinalPower", result.FinalPower, 79.3)
}

func TestCalculatePower_FactorsRaisePower(t *testing.T) {
	c := New("")

	result := c.CalculatePower(SubstrateFoil, InkWaterborne, 4.5, RollerHachure, "7 cm³/m²")

	nearlyEqual(t, "SubstrateContribution", result.SubstrateContribution, 30)
	nearlyEqual(t, "InkContribution", result.InkContribution, 20)
	nearlyEqual(t, "BCMContribution", result.BCMContribution, 45)
	// Hachure window averages 0.375; 2.3 g/m² against the 3.0 reference.
	nearlyEqual(t, "TransferFactor", result.TransferFactor, 100*0.375*2.3/3.0)
}

func TestCalculatePower_ClampsToUpperBound(t *testing.T) {
	c := New("")

	result := c.CalculatePower(SubstrateFoil, InkWaterborne, 12.9, RollerARTTIF, "20 cm³/m²")

	// 40 * 1.3 * 1.2 * 2.29 * 2.125 is far above the ceiling.
	nearlyEqual(t, "FinalPower", result.FinalPower, 100)
}

func TestCalculatePower_IsDeterministic(t *testing.T) {
	c := New("")

	first := c.CalculatePower(SubstrateCarton, InkLEDUV, 8.4, RollerGTTUniCoat, "L")
	second := c.CalculatePower(SubstrateCarton, InkLEDUV, 8.4, RollerGTTUniCoat, "L")

	if first != second {
		t.Fatalf("identical inputs produced different results: %+v vs %+v", first, second)
	}
}

func TestCalculatePower_AllValidSelectionsStayWithinBounds(t *testing.T) {
	c := New("")

	for _, substraat := range Substrates {
		for _, inkt := range InkTypes {
			for _, roller := range RollerTypes {
				for _, spec := range c.VolumeSpecs(roller) {
					result := c.CalculatePower(substraat, inkt, spec.BCM, roller, spec.Volume)
					if result.FinalPower < 20 || result.FinalPower > 100 {
						t.Fatalf("final power %v out of [20,100] for %s/%s/%s/%s",
							result.FinalPower, substraat, inkt, roller, spec.Volume)
					}
				}
			}
		}
	}
}

func TestCalculatePower_UnknownKeysFallBackToDefaults(t *testing.T) {
	c := New("")

	result := c.CalculatePower("Vilt", "Olieverf", 5.0, "Onbekend", "99 cm³/m²")

	nearlyEqual(t, "SubstrateContribution", result.SubstrateContribution, 0)
	nearlyEqual(t, "InkContribution", result.InkContribution, 0)
	// Unknown roller: default window (0.25, 0.30), unknown volume leaves the
	// average unscaled.
	nearlyEqual(t, "TransferFactor", result.TransferFactor, 27.5)
	if result.TransferValue != "0.0 g/m²" {
		t.Fatalf("TransferValue = %q, want %q", result.TransferValue, "0.0 g/m²")
	}
}

func TestTransferFactor_HexagonalMediumVolume(t *testing.T) {
	c := New("")

	nearlyEqual(t, "TransferFactor", c.TransferFactor(RollerHexagonal, "10 cm³/m²"), 0.25*2.5/3.0)
}

func TestTransferFactor_UnknownVolumeReturnsWindowAverage(t *testing.T) {
	c := New("")

	nearlyEqual(t, "TransferFactor", c.TransferFactor(RollerARTTIF, "onbekend"), 0.45)
}

func TestBCMFromVolume(t *testing.T) {
	c := New("")

	nearlyEqual(t, "hexagonal 10 cm³/m²", c.BCMFromVolume(RollerHexagonal, "10 cm³/m²"), 6.4)
	nearlyEqual(t, "GTT XXL", c.BCMFromVolume(RollerGTTUniCoat, "XXL"), 12.9)
	nearlyEqual(t, "unknown volume", c.BCMFromVolume(RollerHexagonal, "12 cm³/m²"), 0)
	nearlyEqual(t, "unknown roller", c.BCMFromVolume("Onbekend", "10 cm³/m²"), 0)
}

func TestTransferFromVolume(t *testing.T) {
	c := New("")

	if got := c.TransferFromVolume(RollerHachure, "13 cm³/m²"); got != "4.3 g/m²" {
		t.Fatalf("TransferFromVolume = %q, want %q", got, "4.3 g/m²")
	}
	if got := c.TransferFromVolume(RollerHachure, "nee"); got != "0.0 g/m²" {
		t.Fatalf("TransferFromVolume miss = %q, want %q", got, "0.0 g/m²")
	}
}

func TestVolumeSpecs_OrderAndFallback(t *testing.T) {
	c := New("")

	specs := c.VolumeSpecs(RollerHexagonal)
	if len(specs) != 5 {
		t.Fatalf("expected 5 hexagonal specs, got %d", len(specs))
	}
	if specs[0].Volume != "7 cm³/m²" || specs[4].Volume != "20 cm³/m²" {
		t.Fatalf("specs out of display order: %+v", specs)
	}

	if got := c.VolumeSpecs("Onbekend"); len(got) != 0 {
		t.Fatalf("expected empty specs for unknown roller, got %+v", got)
	}
}

func TestVolumeSpecs_GTTUsesSymbolicSizes(t *testing.T) {
	c := New("")

	specs := c.VolumeSpecs(RollerGTTUniCoat)
	if specs[1].Volume != "M" {
		t.Fatalf("expected symbolic size M, got %q", specs[1].Volume)
	}
	if got := specs[1].DisplayVolume(); got != "10 cm³/m²" {
		t.Fatalf("DisplayVolume = %q, want %q", got, "10 cm³/m²")
	}
	if got := specs[1].Transfer; got != "2.5 g/m²" {
		t.Fatalf("Transfer = %q, want %q", got, "2.5 g/m²")
	}

	hexSpecs := c.VolumeSpecs(RollerHexagonal)
	if got := hexSpecs[1].DisplayVolume(); got != "10 cm³/m²" {
		t.Fatalf("non-GTT DisplayVolume = %q, want volume label itself", got)
	}
}

func TestValidBCM_Boundaries(t *testing.T) {
	cases := []struct {
		bcm  float64
		want bool
	}{
		{0, false},
		{0.01, true},
		{20, true},
		{20.01, false},
		{-1, false},
	}
	for _, tc := range cases {
		if got := ValidBCM(tc.bcm); got != tc.want {
			t.Fatalf("ValidBCM(%v) = %v, want %v", tc.bcm, got, tc.want)
		}
	}
}

func TestVolumeTables_AreWellFormed(t *testing.T) {
	for roller, specs := range volumeSpecs {
		seen := make(map[string]bool)
		prevBCM := 0.0
		for _, spec := range specs {
			if seen[spec.Volume] {
				t.Fatalf("%s: duplicate volume label %q", roller, spec.Volume)
			}
			seen[spec.Volume] = true

			if spec.BCM <= prevBCM {
				t.Fatalf("%s: BCM not increasing at volume %q", roller, spec.Volume)
			}
			prevBCM = spec.BCM

			// transferGrams panics on a malformed table constant.
			if grams := transferGrams(spec.Transfer); grams <= 0 {
				t.Fatalf("%s: non-positive transfer %q", roller, spec.Transfer)
			}
		}
	}
}
