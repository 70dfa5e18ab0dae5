package curing

import (
	"log"
	"math"
)

// AniloxEntry is one reference row from the supplier anilox document:
// a cell capacity with the power percentage the supplier recommends for it.
type AniloxEntry struct {
	BCM              float64
	RecommendedPower float64
}

// New returns a Calculator. aniloxDocPath points at the supplier
// specification document the reference values were transcribed from; the
// recommendation feature stays available even when loading fails, it is the
// formula path that must never depend on it.
func New(aniloxDocPath string) *Calculator {
	c := &Calculator{}

	anilox, err := loadAniloxData(aniloxDocPath)
	if err != nil {
		log.Printf("anilox reference data unavailable: %v", err)
		return c
	}
	c.anilox = anilox
	return c
}

// loadAniloxData returns the anilox reference rows. The supplier document is
// a Word file; it is not parsed, the rows below are transcribed from it.
// The path is kept in the signature so a real parser can slot in later.
func loadAniloxData(path string) ([]AniloxEntry, error) {
	_ = path
	return []AniloxEntry{
		{BCM: 1.5, RecommendedPower: 40},
		{BCM: 2.0, RecommendedPower: 50},
		{BCM: 2.5, RecommendedPower: 60},
		{BCM: 3.0, RecommendedPower: 70},
	}, nil
}

// RecommendedPower returns the supplier-recommended power for the reference
// BCM closest to bcm. The second return is false when no reference data is
// loaded. Ties resolve to the lowest reference BCM.
func (c *Calculator) RecommendedPower(bcm float64) (float64, bool) {
	if len(c.anilox) == 0 {
		return 0, false
	}

	best := c.anilox[0]
	bestDiff := math.Abs(best.BCM - bcm)
	for _, entry := range c.anilox[1:] {
		if diff := math.Abs(entry.BCM - bcm); diff < bestDiff {
			best = entry
			bestDiff = diff
		}
	}
	return best.RecommendedPower, true
}
