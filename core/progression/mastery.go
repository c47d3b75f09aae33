package progression

// MasteryLevel derives the 1-6 discrete mastery level from a student's
// overall progress, average grade and average quiz score (all on a 0-100
// scale). It is a pure function: no persisted level is authoritative, the
// level is re-derivable at any time from current aggregates.
func MasteryLevel(overallProgress, averageGrade, averageQuizScore float64) int {
	composite := 0.4*overallProgress + 0.3*averageGrade + 0.3*averageQuizScore

	switch {
	case composite >= 90:
		return 6
	case composite >= 80:
		return 5
	case composite >= 70:
		return 4
	case composite >= 60:
		return 3
	case composite >= 40:
		return 2
	default:
		return 1
	}
}
