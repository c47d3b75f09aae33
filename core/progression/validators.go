package progression

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/elimucd/maendeleo/core"
)

var (
	gradeTargetTag  = "gradetarget"
	gradeTargetText = "invalid grade target"

	rejectCommentTag  = "rejectcomment"
	rejectCommentText = "a rejection requires a comment"

	unknownDecisionText = "decision must be approve or reject"
)

// InitValidators registers the progression validators & translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(gradeTargetTag, gradeTargetValidation)
	core.RegisterCustomTranslation(validate, translator, gradeTargetTag, gradeTargetText)

	validate.RegisterStructValidation(decisionStructValidation, ApprovalDecision{})
	core.RegisterCustomTranslation(validate, translator, rejectCommentTag, rejectCommentText)
}

// gradeTargetValidation checks that the grade target kind is known.
func gradeTargetValidation(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case GradeTargetLesson, GradeTargetModule, GradeTargetProject:
		return true
	}
	return false
}

// decisionStructValidation enforces the student-facing justification on
// rejections.
func decisionStructValidation(sl validator.StructLevel) {
	if dec, ok := sl.Current().Interface().(ApprovalDecision); ok {
		if dec.Decision == DecisionReject && dec.Comment == "" {
			sl.ReportError(dec.Comment, "comment", "Comment", rejectCommentTag, "")
		}
	}
}
