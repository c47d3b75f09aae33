package progression

import (
	"errors"
	"math"

	"github.com/elimucd/maendeleo/core/course"
)

// ErrEmptyQuiz is returned when a zero-question quiz is submitted;
// a content-authoring defect, surfaced to staff rather than the student.
var ErrEmptyQuiz = errors.New("quiz has no questions")

// GradeQuiz scores a submission against the quiz's answer key.
// Answers are selected option indexes in question order. A missing or
// out-of-range answer counts as incorrect, never as an error: the engine
// only ever fails to credit the mark. Score is 0-100, rounded half up.
func GradeQuiz(qz course.Quiz, answers []int) (QuizGrade, error) {
	total := len(qz.Questions)
	if total == 0 {
		return QuizGrade{}, ErrEmptyQuiz
	}

	grade := QuizGrade{
		TotalQuestions: total,
		PerQuestion:    make([]bool, total),
	}
	for i, q := range qz.Questions {
		if i >= len(answers) {
			break
		}
		sel := answers[i]
		if sel < 0 || sel >= len(q.Options) {
			continue
		}
		if q.Options[sel].IsCorrect {
			grade.PerQuestion[i] = true
			grade.CorrectCount++
		}
	}
	grade.Score = int(math.Round(100 * float64(grade.CorrectCount) / float64(total)))
	return grade, nil
}
