package progression

import (
	"testing"

	"github.com/elimucd/maendeleo/core/course"
)

func twoOptionQuestion(correct int) course.Question {
	opts := []course.Option{{Text: "a"}, {Text: "b"}}
	opts[correct].IsCorrect = true
	return course.Question{Text: "pick one", Options: opts}
}

func Test_GradeQuiz(t *testing.T) {
	quiz := course.Quiz{
		Name:      "Basics",
		Questions: []course.Question{twoOptionQuestion(0), twoOptionQuestion(1)},
	}

	tests := []struct {
		name        string
		qz          course.Quiz
		answers     []int
		wantScore   int
		wantCorrect int
		wantErr     error
	}{
		{name: "all correct", qz: quiz, answers: []int{0, 1}, wantScore: 100, wantCorrect: 2},
		{name: "half correct", qz: quiz, answers: []int{1, 1}, wantScore: 50, wantCorrect: 1},
		{name: "none correct", qz: quiz, answers: []int{1, 0}, wantScore: 0},
		{name: "missing answers are incorrect", qz: quiz, answers: []int{0}, wantScore: 50, wantCorrect: 1},
		{name: "skipped answer is incorrect", qz: quiz, answers: []int{-1, 1}, wantScore: 50, wantCorrect: 1},
		{name: "out of range answer is incorrect", qz: quiz, answers: []int{5, 1}, wantScore: 50, wantCorrect: 1},
		{name: "extra answers are ignored", qz: quiz, answers: []int{0, 1, 0, 0}, wantScore: 100, wantCorrect: 2},
		{name: "no answers at all", qz: quiz, answers: nil, wantScore: 0},
		{name: "empty quiz", qz: course.Quiz{Name: "Empty"}, answers: []int{0}, wantErr: ErrEmptyQuiz},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grade, err := GradeQuiz(tt.qz, tt.answers)
			if err != tt.wantErr {
				t.Fatalf("GradeQuiz() error = %v; want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if grade.Score != tt.wantScore {
				t.Errorf("Score = %d; want %d", grade.Score, tt.wantScore)
			}
			if grade.CorrectCount != tt.wantCorrect {
				t.Errorf("CorrectCount = %d; want %d", grade.CorrectCount, tt.wantCorrect)
			}
			if grade.TotalQuestions != len(tt.qz.Questions) {
				t.Errorf("TotalQuestions = %d; want %d", grade.TotalQuestions, len(tt.qz.Questions))
			}
		})
	}
}

func Test_GradeQuiz_rounding(t *testing.T) {
	quiz := course.Quiz{
		Questions: []course.Question{twoOptionQuestion(0), twoOptionQuestion(0), twoOptionQuestion(0)},
	}

	// 1/3 rounds to 33, 2/3 rounds to 67
	grade, err := GradeQuiz(quiz, []int{0, 1, 1})
	if err != nil {
		t.Fatalf("GradeQuiz() failed: %v", err)
	}
	if grade.Score != 33 {
		t.Errorf("Score = %d; want 33", grade.Score)
	}

	grade, err = GradeQuiz(quiz, []int{0, 0, 1})
	if err != nil {
		t.Fatalf("GradeQuiz() failed: %v", err)
	}
	if grade.Score != 67 {
		t.Errorf("Score = %d; want 67", grade.Score)
	}
}
