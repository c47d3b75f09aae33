package progression

import "testing"

func Test_MasteryLevel(t *testing.T) {
	tests := []struct {
		name                       string
		progress, grade, quizScore float64
		want                       int
	}{
		{name: "everything perfect", progress: 100, grade: 100, quizScore: 100, want: 6},
		{name: "nothing done", want: 1},
		{name: "uniform 90", progress: 90, grade: 90, quizScore: 90, want: 6},
		{name: "uniform 80", progress: 80, grade: 80, quizScore: 80, want: 5},
		{name: "uniform 75", progress: 75, grade: 75, quizScore: 75, want: 4},
		{name: "uniform 70", progress: 70, grade: 70, quizScore: 70, want: 4},
		{name: "uniform 60", progress: 60, grade: 60, quizScore: 60, want: 3},
		{name: "uniform 40", progress: 40, grade: 40, quizScore: 40, want: 2},
		{name: "just below 40", progress: 39, grade: 39, quizScore: 39, want: 1},
		{name: "progress carries most weight", progress: 100, grade: 50, quizScore: 50, want: 4}, // 40 + 15 + 15
		{name: "grades alone are not enough", grade: 100, quizScore: 100, want: 3},               // 0 + 30 + 30
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MasteryLevel(tt.progress, tt.grade, tt.quizScore); got != tt.want {
				t.Errorf("MasteryLevel(%v, %v, %v) = %d; want %d", tt.progress, tt.grade, tt.quizScore, got, tt.want)
			}
		})
	}
}
