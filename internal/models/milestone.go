package models

// Milestone is a badge unlocked when a user's points reach Threshold exactly
type Milestone struct {
	Threshold int
	Label     string
}

// Milestones in ascending threshold order
var Milestones = []Milestone{
	{5, "Bronze"},
	{10, "Silver"},
	{20, "Gold"},
}

// MilestoneFor returns the milestone whose threshold equals points exactly
func MilestoneFor(points int) (Milestone, bool) {
	for _, m := range Milestones {
		if m.Threshold == points {
			return m, true
		}
	}
	return Milestone{}, false
}

// NextMilestone returns the first milestone above points
func NextMilestone(points int) (Milestone, bool) {
	for _, m := range Milestones {
		if m.Threshold > points {
			return m, true
		}
	}
	return Milestone{}, false
}

// MilestoneRank returns the position of label in the table, or -1
func MilestoneRank(label string) int {
	for i, m := range Milestones {
		if m.Label == label {
			return i
		}
	}
	return -1
}
