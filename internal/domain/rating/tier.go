package rating

// Tier is one band of the display ladder.
type Tier struct {
	Name      string
	Threshold float64 // inclusive lower bound
}

// tiers is the fixed ladder, ascending by threshold. The first entry is
// the lowest tier and doubles as the fallback for ratings below every
// threshold.
var tiers = []Tier{
	{Name: "Iron", Threshold: 100},
	{Name: "Bronze", Threshold: 600},
	{Name: "Silver", Threshold: 1000},
	{Name: "Gold", Threshold: 1400},
	{Name: "Platinum", Threshold: 1800},
	{Name: "Diamond", Threshold: 2200},
	{Name: "Legend", Threshold: 2600},
}

// TierFor returns the name of the highest tier whose threshold does not
// exceed the rating. A rating exactly equal to a threshold belongs to that
// tier; a rating below every threshold belongs to the lowest tier.
func TierFor(rating float64) string {
	name := tiers[0].Name
	for _, t := range tiers {
		if rating < t.Threshold {
			break
		}
		name = t.Name
	}
	return name
}

// Tiers returns a copy of the ladder for display layers.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}
