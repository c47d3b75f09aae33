package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/elimucd/maendeleo/core"
)

// UnlockMode governs how a Module becomes accessible to a student.
const (
	UnlockAuto     = "auto"     // unlocks when the previous module is completed
	UnlockApproval = "approval" // additionally requires a staff approval
)

var UnlockModes = []string{UnlockAuto, UnlockApproval}

// Module is a top-level curriculum unit containing ordered lessons and,
// optionally, a gating quiz/project.
type Module struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Order            int       `json:"order"` // unique per track; defines the sequence
	UnlockMode       string    `json:"unlock_mode"`
	ApprovalRequired bool      `json:"approval_required"`
	ProjectRequired  bool      `json:"project_required"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at"` // UTC

	// AutoUnlockOnProjectValidation makes project validation part of the
	// gate for unlocking *this* module (consulted together with the
	// previous project's AutoUnlockNextOnValidation flag).
	AutoUnlockOnProjectValidation bool `json:"auto_unlock_on_project_validation"`
}

// NeedsApproval reports whether the module carries an approval gate.
func (m Module) NeedsApproval() bool {
	return m.UnlockMode == UnlockApproval || m.ApprovalRequired
}

// EmbeddedQuiz places a quiz inline within a lesson's content.
type EmbeddedQuiz struct {
	QuizID       string `json:"quiz_id"`
	Position     int    `json:"position"`
	DisplayAfter bool   `json:"display_after"` // render after the lesson body
}

// Lesson belongs to exactly one Module; deleting a Module deletes its Lessons.
type Lesson struct {
	ID        string         `json:"id"`
	ModuleID  string         `json:"module_id"`
	Name      string         `json:"name"`
	Order     int            `json:"order"` // sequence within the module
	Quizzes   []EmbeddedQuiz `json:"quizzes,omitempty"`
	CreatedAt time.Time      `json:"created_at"` // UTC
	UpdatedAt time.Time      `json:"updated_at"` // UTC
}

type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type Question struct {
	Text    string   `json:"text"`
	Options []Option `json:"options"` // stored order is the answer key
}

// CorrectOption returns the index of the first correct option, or -1.
func (q Question) CorrectOption() int {
	for i, opt := range q.Options {
		if opt.IsCorrect {
			return i
		}
	}
	return -1
}

// Quiz may be attached to a module (standalone) or embedded in a lesson.
type Quiz struct {
	ID        string     `json:"id"`
	ModuleID  string     `json:"module_id,omitempty"` // empty: standalone or lesson-embedded
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"` // UTC
	UpdatedAt time.Time  `json:"updated_at"` // UTC
}

// Project is a module's graded deliverable.
type Project struct {
	ID       string `json:"id"`
	ModuleID string `json:"module_id"`
	Name     string `json:"name"`

	// AutoUnlockNextOnValidation makes this project's validation part of
	// the gate for unlocking the module that follows its own.
	AutoUnlockNextOnValidation bool `json:"auto_unlock_next_on_validation"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewModule contains information needed to create a new Module.
type NewModule struct {
	Name             string `json:"name" validate:"required"`
	Order            int    `json:"order" validate:"min=0"`
	UnlockMode       string `json:"unlock_mode" validate:"omitempty,unlockmode"`
	ApprovalRequired bool   `json:"approval_required"`
	ProjectRequired  bool   `json:"project_required"`

	AutoUnlockOnProjectValidation bool `json:"auto_unlock_on_project_validation"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	if nm.UnlockMode == "" {
		nm.UnlockMode = UnlockAuto
	}
	return validate.Struct(nm)
}

// NewLesson contains information needed to create a new Lesson.
type NewLesson struct {
	ModuleID string         `json:"module_id" validate:"required"`
	Name     string         `json:"name" validate:"required"`
	Order    int            `json:"order" validate:"min=0"`
	Quizzes  []EmbeddedQuiz `json:"quizzes"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Name = core.CleanString(nl.Name)
	return validate.Struct(nl)
}

// NewQuiz contains information needed to create a new Quiz.
type NewQuiz struct {
	ModuleID  string     `json:"module_id"`
	Name      string     `json:"name" validate:"required"`
	Questions []Question `json:"questions" validate:"required,min=1"`
}

func (nq *NewQuiz) Validate(validate *validator.Validate) error {
	nq.Name = core.CleanString(nq.Name)
	return validate.Struct(nq)
}

// NewProject contains information needed to create a new Project.
type NewProject struct {
	ModuleID string `json:"module_id" validate:"required"`
	Name     string `json:"name" validate:"required"`

	AutoUnlockNextOnValidation bool `json:"auto_unlock_next_on_validation"`
}

func (np *NewProject) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	return validate.Struct(np)
}
