package curing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Substrate identifies the material being printed on.
type Substrate string

// InkType identifies the ink family being cured.
type InkType string

// RollerType identifies the engraving geometry of a rasterwals, including its
// nominal ink transfer window as shown to the operator.
type RollerType string

const (
	SubstrateCoated   Substrate = "Gecoat papier"
	SubstrateUncoated Substrate = "Ongecoat papier"
	SubstrateFoil     Substrate = "Folie"
	SubstrateCarton   Substrate = "Karton"
)

const (
	InkUV         InkType = "UV-inkt"
	InkWaterborne InkType = "Watergedragen inkt"
	InkLEDUV      InkType = "LED-UV inkt"
)

const (
	RollerHexagonal  RollerType = "Hexagonal (20-30% transfer)"
	RollerHachure    RollerType = "Hachure / Trihelical (35-40% transfer)"
	RollerARTTIF     RollerType = "ART / TIF (40-50% transfer)"
	RollerGTTUniCoat RollerType = "GTT UniCoat (25-30% transfer)"
)

// Substrates lists the selectable substrates in display order.
var Substrates = []Substrate{SubstrateCoated, SubstrateUncoated, SubstrateFoil, SubstrateCarton}

// InkTypes lists the selectable ink types in display order.
var InkTypes = []InkType{InkUV, InkWaterborne, InkLEDUV}

// RollerTypes lists the selectable rasterwals types in display order.
var RollerTypes = []RollerType{RollerHexagonal, RollerHachure, RollerARTTIF, RollerGTTUniCoat}

// VolumeSpec describes one engraving volume available for a rasterwals type.
type VolumeSpec struct {
	// Volume is the label the operator selects. GTT rollers use symbolic
	// sizes (S..XXL), the others a nominal cm³/m² volume.
	Volume string
	// BCM is the cell capacity in billion cubic microns.
	BCM float64
	// Lines is the screen count label for the engraving.
	Lines string
	// Transfer is the ink lay-down for this volume, e.g. "2.5 g/m²".
	Transfer string
	// ActualVolume holds the real engraved volume for symbolic GTT sizes.
	ActualVolume string
}

// DisplayVolume returns the engraved volume to show for this spec. GTT sizes
// are symbolic; their real volume lives in ActualVolume.
func (v VolumeSpec) DisplayVolume() string {
	if v.ActualVolume != "" {
		return v.ActualVolume
	}
	return v.Volume
}

// transferRange is the fractional ink transfer efficiency window of a roller
// geometry.
type transferRange struct {
	low, high float64
}

const (
	// basePower is the UV power percentage every calculation starts from.
	basePower = 40.0
	// bcmWeight converts a BCM value into its fractional power contribution.
	bcmWeight = 0.1
	// mediumTransferGrams is the reference ink lay-down the transfer factor
	// is normalized against. Kept as-is from the supplier worksheet.
	mediumTransferGrams = 3.0
	// minPower and maxPower bound the recommended power percentage.
	minPower = 20.0
	maxPower = 100.0
	// maxBCM is the upper end of the plausible engraving range.
	maxBCM = 20.0
)

var substrateFactors = map[Substrate]float64{
	SubstrateCoated:   1.0,
	SubstrateUncoated: 1.2,
	SubstrateFoil:     1.3,
	SubstrateCarton:   1.1,
}

var inkFactors = map[InkType]float64{
	InkUV:         1.0,
	InkWaterborne: 1.2,
	InkLEDUV:      0.9,
}

var transferRanges = map[RollerType]transferRange{
	RollerHexagonal:  {0.20, 0.30},
	RollerHachure:    {0.35, 0.40},
	RollerARTTIF:     {0.40, 0.50},
	RollerGTTUniCoat: {0.25, 0.30},
}

// defaultTransferRange is assumed for unrecognized roller types.
var defaultTransferRange = transferRange{0.25, 0.30}

// volumeSpecs holds the fixed volume tables per rasterwals type, smallest to
// largest cell volume. Built once; treated as immutable.
var volumeSpecs = map[RollerType][]VolumeSpec{
	RollerHexagonal: {
		{Volume: "7 cm³/m²", BCM: 4.5, Lines: "160 L/cm", Transfer: "1.8 g/m²"},
		{Volume: "10 cm³/m²", BCM: 6.4, Lines: "120 L/cm", Transfer: "2.5 g/m²"},
		{Volume: "13 cm³/m²", BCM: 8.4, Lines: "100 L/cm", Transfer: "3.25 g/m²"},
		{Volume: "16 cm³/m²", BCM: 10.3, Lines: "80 L/cm", Transfer: "4.0 g/m²"},
		{Volume: "20 cm³/m²", BCM: 12.9, Lines: "60 L/cm", Transfer: "5.0 g/m²"},
	},
	RollerHachure: {
		{Volume: "7 cm³/m²", BCM: 4.5, Lines: "160 L/cm", Transfer: "2.3 g/m²"},
		{Volume: "10 cm³/m²", BCM: 6.4, Lines: "120 L/cm", Transfer: "3.3 g/m²"},
		{Volume: "13 cm³/m²", BCM: 8.4, Lines: "100 L/cm", Transfer: "4.3 g/m²"},
		{Volume: "16 cm³/m²", BCM: 10.3, Lines: "80 L/cm", Transfer: "5.3 g/m²"},
		{Volume: "20 cm³/m²", BCM: 12.9, Lines: "60 L/cm", Transfer: "6.5 g/m²"},
	},
	RollerARTTIF: {
		{Volume: "7 cm³/m²", BCM: 4.5, Lines: "160 L/cm", Transfer: "2.7 g/m²"},
		{Volume: "10 cm³/m²", BCM: 6.4, Lines: "120 L/cm", Transfer: "3.7 g/m²"},
		{Volume: "13 cm³/m²", BCM: 8.4, Lines: "100 L/cm", Transfer: "5.0 g/m²"},
		{Volume: "16 cm³/m²", BCM: 10.3, Lines: "80 L/cm", Transfer: "6.0 g/m²"},
		{Volume: "20 cm³/m²", BCM: 12.9, Lines: "60 L/cm", Transfer: "7.5 g/m²"},
	},
	RollerGTTUniCoat: {
		{Volume: "S", BCM: 4.5, Lines: "GTT", Transfer: "1.8 g/m²", ActualVolume: "7 cm³/m²"},
		{Volume: "M", BCM: 6.4, Lines: "GTT", Transfer: "2.5 g/m²", ActualVolume: "10 cm³/m²"},
		{Volume: "L", BCM: 8.4, Lines: "GTT", Transfer: "3.25 g/m²", ActualVolume: "13 cm³/m²"},
		{Volume: "XL", BCM: 10.3, Lines: "GTT", Transfer: "4.0 g/m²", ActualVolume: "16 cm³/m²"},
		{Volume: "XXL", BCM: 12.9, Lines: "GTT", Transfer: "5.0 g/m²", ActualVolume: "20 cm³/m²"},
	},
}

// Result groups the recommended power with the contribution of every input,
// in percentage points, so the operator can see why the number came out the
// way it did.
type Result struct {
	BasePower             float64 `json:"base_power"`
	SubstrateContribution float64 `json:"substrate_contribution"`
	InkContribution       float64 `json:"ink_contribution"`
	BCMContribution       float64 `json:"bcm_contribution"`
	TransferFactor        float64 `json:"transfer_factor"`
	TransferValue         string  `json:"transfer_value"`
	FinalPower            float64 `json:"final_power"`
}

// Calculator evaluates UV curing power recommendations from the fixed
// rasterwals tables. The zero value is not usable; construct with New.
type Calculator struct {
	anilox []AniloxEntry
}

// ValidBCM reports whether a BCM value is inside the plausible engraving
// range for flexographic anilox rollers.
func ValidBCM(bcm float64) bool {
	return bcm > 0 && bcm <= maxBCM
}

// VolumeSpecs returns the volume table for a rasterwals type in display
// order, or an empty table for an unrecognized type. Callers must not modify
// the returned slice.
func (c *Calculator) VolumeSpecs(roller RollerType) []VolumeSpec {
	return volumeSpecs[roller]
}

// BCMFromVolume returns the BCM capacity for a volume selection, or 0.0 when
// the roller type or volume label is unrecognized.
func (c *Calculator) BCMFromVolume(roller RollerType, volume string) float64 {
	for _, spec := range volumeSpecs[roller] {
		if spec.Volume == volume {
			return spec.BCM
		}
	}
	return 0.0
}

// TransferFromVolume returns the ink lay-down display string for a volume
// selection, or "0.0 g/m²" when the selection is unrecognized.
func (c *Calculator) TransferFromVolume(roller RollerType, volume string) string {
	for _, spec := range volumeSpecs[roller] {
		if spec.Volume == volume {
			return spec.Transfer
		}
	}
	return "0.0 g/m²"
}

// TransferFactor couples the efficiency window of the roller geometry with
// the ink weight delivered by the chosen volume into one dimensionless
// scaling factor. Unknown roller types fall back to the default window;
// an unknown volume leaves the window average unscaled.
func (c *Calculator) TransferFactor(roller RollerType, volume string) float64 {
	r, ok := transferRanges[roller]
	if !ok {
		r = defaultTransferRange
	}
	avg := (r.low + r.high) / 2

	for _, spec := range volumeSpecs[roller] {
		if spec.Volume == volume {
			return avg * (transferGrams(spec.Transfer) / mediumTransferGrams)
		}
	}
	return avg
}

// CalculatePower evaluates the curing formula. Unrecognized substrates and
// ink types contribute a neutral factor of 1.0; the calculation never fails.
func (c *Calculator) CalculatePower(substraat Substrate, inkt InkType, bcm float64, roller RollerType, volume string) Result {
	substrateFactor, ok := substrateFactors[substraat]
	if !ok {
		substrateFactor = 1.0
	}
	inkFactor, ok := inkFactors[inkt]
	if !ok {
		inkFactor = 1.0
	}

	transferFactor := c.TransferFactor(roller, volume)
	bcmFactor := bcm * bcmWeight

	power := basePower * substrateFactor * inkFactor * (1 + bcmFactor)
	power *= 1 + transferFactor
	if power < minPower {
		power = minPower
	}
	if power > maxPower {
		power = maxPower
	}

	return Result{
		BasePower:             basePower,
		SubstrateContribution: (substrateFactor - 1) * 100,
		InkContribution:       (inkFactor - 1) * 100,
		BCMContribution:       bcmFactor * 100,
		TransferFactor:        transferFactor * 100,
		TransferValue:         c.TransferFromVolume(roller, volume),
		FinalPower:            math.Round(power*10) / 10,
	}
}

// transferGrams extracts the numeric lay-down from a table transfer string
// such as "2.5 g/m²". The tables are compile-time constants, so a value that
// does not parse is a programmer error and panics rather than degrading.
func transferGrams(transfer string) float64 {
	fields := strings.Fields(transfer)
	if len(fields) == 0 {
		panic("curing: empty transfer value in volume table")
	}
	grams, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		panic(fmt.Sprintf("curing: malformed transfer value %q in volume table", transfer))
	}
	return grams
}
