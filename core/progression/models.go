package progression

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/elimucd/maendeleo/core"
	"github.com/elimucd/maendeleo/core/course"
)

// Progress records a student's completion of a single lesson.
// One record per (user, lesson); created on first completion.
type Progress struct {
	UserID      string    `json:"user_id"`
	LessonID    string    `json:"lesson_id"`
	IsCompleted bool      `json:"is_completed"`
	CompletedAt time.Time `json:"completed_at"` // UTC
}

// QuizResult kinds. Embedded results live in a separate stream: they never
// participate in module gating, only in quiz analytics.
const (
	QuizResultStandalone = "standalone"
	QuizResultEmbedded   = "embedded"
)

// QuizResult is one graded quiz attempt. Attempt history is append-only.
type QuizResult struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	QuizID         string    `json:"quiz_id"`
	LessonID       string    `json:"lesson_id,omitempty"` // set for embedded attempts
	Kind           string    `json:"kind"`
	Answers        []int     `json:"answers"` // selected option index per question
	Score          int       `json:"score"`   // 0-100, rounded half up
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"` // UTC
}

// QuizGrade is the outcome of scoring a submission against a quiz's answer key.
type QuizGrade struct {
	Score          int    `json:"score"`
	CorrectCount   int    `json:"correct_count"`
	TotalQuestions int    `json:"total_questions"`
	PerQuestion    []bool `json:"per_question"`
}

// Grade targets.
const (
	GradeTargetLesson  = "lesson"
	GradeTargetModule  = "module"
	GradeTargetProject = "project"
)

// Grade is a staff-assigned mark for a lesson, module or project.
// Re-grading the same target overwrites the previous record.
type Grade struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	TargetKind string    `json:"target_kind"`
	TargetID   string    `json:"target_id"`
	Grade      int       `json:"grade"` // 0-100
	Comment    string    `json:"comment,omitempty"`
	GradedBy   string    `json:"graded_by"`
	GradedAt   time.Time `json:"graded_at"` // UTC
}

// Approval request statuses.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// ApprovalRequest is a student's request to unlock an approval-gated module.
// Lifecycle: pending -> approved|rejected (terminal); decided records are
// immutable, a re-request after rejection creates a new record.
type ApprovalRequest struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ModuleID    string    `json:"module_id"`
	Status      string    `json:"status"`
	Comment     string    `json:"comment,omitempty"`
	RequestedAt time.Time `json:"requested_at"` // UTC
	DecidedAt   time.Time `json:"decided_at"`   // UTC; zero until decided
	DecidedBy   string    `json:"decided_by,omitempty"`
}

func (ar ApprovalRequest) IsPending() bool { return ar.Status == ApprovalPending }

// Project submission statuses (owned by the external project workflow).
const (
	SubmissionDraft         = "draft"
	SubmissionSubmitted     = "submitted"
	SubmissionApproved      = "approved"
	SubmissionNeedsRevision = "needs-revision"
	SubmissionRejected      = "rejected"
)

// ProjectSubmission is read by the engine to evaluate project gates;
// its status is mutated by the external project workflow only.
type ProjectSubmission struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ProjectID   string    `json:"project_id"`
	Status      string    `json:"status"`
	Grade       int       `json:"grade"`
	SubmittedAt time.Time `json:"submitted_at"` // UTC
}

// ModuleAccess is the engine's accessibility decision for (student, module).
// Accessible governs progress-affecting actions; content stays viewable.
type ModuleAccess struct {
	Accessible bool `json:"accessible"`
	// ApprovalStatus is empty when no approval request exists (or the
	// module carries no approval gate).
	ApprovalStatus string `json:"approval_status,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// Access reasons.
const (
	ReasonOK                 = ""
	ReasonPreviousIncomplete = "previous module not completed"
	ReasonProjectNotApproved = "previous module project not approved"
	ReasonApprovalMissing    = "approval not requested"
	ReasonApprovalPending    = "approval pending"
	ReasonApprovalRejected   = "approval rejected"
)

// NeighborModule is a module adjacent in sequence order, with the
// student's accessibility of it.
type NeighborModule struct {
	Module     course.Module `json:"module"`
	Accessible bool          `json:"accessible"`
}

// ModuleView is the read model returned to the UI layer for one module.
type ModuleView struct {
	Module          course.Module   `json:"module"`
	Lessons         []course.Lesson `json:"lessons"`
	Accessible      bool            `json:"accessible"`
	ApprovalStatus  string          `json:"approval_status,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	CompletionRatio float64         `json:"completion_ratio"`
	Previous        *NeighborModule `json:"previous_module,omitempty"`
	Next            *NeighborModule `json:"next_module,omitempty"`
}

// Distribution buckets scores into four bands:
// [0,40) poor, [40,60) average, [60,80) good, [80,100] excellent.
type Distribution struct {
	Poor      int `json:"poor"`
	Average   int `json:"average"`
	Good      int `json:"good"`
	Excellent int `json:"excellent"`
}

func (d *Distribution) Add(score int) {
	switch {
	case score < 40:
		d.Poor++
	case score < 60:
		d.Average++
	case score < 80:
		d.Good++
	default:
		d.Excellent++
	}
}

// StudentSummary aggregates a student's progress, grades and quiz scores.
type StudentSummary struct {
	AverageGrade     float64      `json:"average_grade"`
	AverageQuizScore float64      `json:"average_quiz_score"`
	GradeCount       int          `json:"grade_count"`
	QuizCount        int          `json:"quiz_count"`
	CompletedLessons int          `json:"completed_lessons"`
	Distribution     Distribution `json:"distribution"`
	OverallProgress  float64      `json:"overall_progress"` // 0-100
	MasteryLevel     int          `json:"mastery_level"`    // 1-6
}

// NewGrade contains information needed to record a Grade.
type NewGrade struct {
	UserID     string `json:"user_id" validate:"required"`
	TargetKind string `json:"target_kind" validate:"required,gradetarget"`
	TargetID   string `json:"target_id" validate:"required"`
	Grade      int    `json:"grade" validate:"min=0,max=100"`
	Comment    string `json:"comment"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Comment = core.CleanString(ng.Comment)
	return validate.Struct(ng)
}

// Approval decisions.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// ApprovalDecision is a staff decision on a pending ApprovalRequest.
// A rejection requires a student-facing comment.
type ApprovalDecision struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Comment  string `json:"comment"`
}

func (ad *ApprovalDecision) Validate(validate *validator.Validate) error {
	ad.Comment = core.CleanString(ad.Comment)
	return validate.Struct(ad)
}
