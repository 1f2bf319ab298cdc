package journal

import "math"

// MoodBand is the colour band a mood score falls into.
type MoodBand string

const (
	MoodBandGood MoodBand = "good"
	MoodBandWarn MoodBand = "warn"
	MoodBandBad  MoodBand = "bad"
)

type moodTier struct {
	threshold float64
	label     string
}

// Ordered highest threshold first; the last tier catches everything below.
var moodTiers = []moodTier{
	{threshold: 85, label: "🔥 top"},
	{threshold: 70, label: "😄 bra"},
	{threshold: 55, label: "🙂 okej"},
	{threshold: 40, label: "😕 segt"},
	{threshold: 25, label: "🥶 tungt"},
}

const moodFloorLabel = "🫠 botten"

type moodBandTier struct {
	threshold float64
	band      MoodBand
}

var moodBands = []moodBandTier{
	{threshold: 70, band: MoodBandGood},
	{threshold: 45, band: MoodBandWarn},
}

// MoodLabel maps a score to its labeled tier.
func MoodLabel(value float64) string {
	for _, tier := range moodTiers {
		if value >= tier.threshold {
			return tier.label
		}
	}
	return moodFloorLabel
}

// MoodBandFor maps a score to its colour band.
func MoodBandFor(value float64) MoodBand {
	for _, tier := range moodBands {
		if value >= tier.threshold {
			return tier.band
		}
	}
	return MoodBandBad
}

// IsFiniteMood reports whether value can be stored as a JSON number.
func IsFiniteMood(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
