package forecast

// Tier labels volumes strictly below Below.
type Tier struct {
	Below float64
	Label string
}

// Ladder buckets a continuous volume into a traffic level. Tiers must be in
// ascending order; volumes at or above the last tier get Top.
type Ladder struct {
	Tiers []Tier
	Top   string
}

var DefaultLadder = Ladder{
	Tiers: []Tier{
		{Below: 20000, Label: "Low"},
		{Below: 40000, Label: "Moderate"},
		{Below: 60000, Label: "High"},
	},
	Top: "Very High",
}

func (l Ladder) Level(volume float64) string {
	for _, t := range l.Tiers {
		if volume < t.Below {
			return t.Label
		}
	}
	return l.Top
}
