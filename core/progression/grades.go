package progression

import "github.com/elimucd/maendeleo/core"

// summarize merges a student's grades and quiz results into summary
// statistics. Aggregations are total over possibly-empty input: empty
// slices yield zero averages and counts, never NaN.
func summarize(grades []Grade, results []QuizResult, quizScorePolicy string) StudentSummary {
	var sum StudentSummary

	var gradeTotal int
	for _, g := range grades {
		gradeTotal += g.Grade
		sum.Distribution.Add(g.Grade)
	}
	sum.GradeCount = len(grades)
	if sum.GradeCount > 0 {
		sum.AverageGrade = float64(gradeTotal) / float64(sum.GradeCount)
	}

	if quizScorePolicy != core.QuizScorePolicyAll {
		results = latestResults(results)
	}
	var quizTotal int
	for _, r := range results {
		quizTotal += r.Score
		sum.Distribution.Add(r.Score)
	}
	sum.QuizCount = len(results)
	if sum.QuizCount > 0 {
		sum.AverageQuizScore = float64(quizTotal) / float64(sum.QuizCount)
	}
	return sum
}

// latestResults reduces attempt history to the most recent attempt per quiz.
// Older attempts stay on record for audit but do not count towards averages.
func latestResults(results []QuizResult) []QuizResult {
	latest := make(map[string]QuizResult, len(results))
	order := make([]string, 0, len(results))
	for _, r := range results {
		prev, ok := latest[r.QuizID]
		if !ok {
			order = append(order, r.QuizID)
		}
		if !ok || r.SubmittedAt.After(prev.SubmittedAt) {
			latest[r.QuizID] = r
		}
	}
	reduced := make([]QuizResult, 0, len(order))
	for _, quizID := range order {
		reduced = append(reduced, latest[quizID])
	}
	return reduced
}
