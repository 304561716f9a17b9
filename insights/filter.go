package insights

// Filter narrows the profile table; empty fields match everything. Period
// matches a profile's dominant period key.
type Filter struct {
	Zone    string
	Segment Segment
	Period  string
}

// Apply returns the profiles matching every set predicate. An empty result is
// not an error; callers render it as a "no matching data" state.
func (f Filter) Apply(profiles []CustomerProfile) []CustomerProfile {
	matched := make([]CustomerProfile, 0, len(profiles))
	for _, profile := range profiles {
		if f.Zone != "" && profile.Zone != f.Zone {
			continue
		}
		if f.Segment != "" && profile.Segment != f.Segment {
			continue
		}
		if f.Period != "" && profile.DominantPeriod != f.Period {
			continue
		}
		matched = append(matched, profile)
	}
	return matched
}
