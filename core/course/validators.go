package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/elimucd/maendeleo/core"
)

var (
	unlockModeTag  = "unlockmode"
	unlockModeText = "invalid unlock mode"

	answerKeyTag  = "answerkey"
	answerKeyText = "every question requires at least one correct option"
)

// InitValidators registers the course validators & translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(unlockModeTag, unlockModeValidation)
	core.RegisterCustomTranslation(validate, translator, unlockModeTag, unlockModeText)

	validate.RegisterStructValidation(quizStructValidation, NewQuiz{})
	core.RegisterCustomTranslation(validate, translator, answerKeyTag, answerKeyText)
}

// unlockModeValidation checks that the provided unlock mode is known.
func unlockModeValidation(fl validator.FieldLevel) bool {
	mode := fl.Field().String()
	for _, m := range UnlockModes {
		if mode == m {
			return true
		}
	}
	return false
}

// quizStructValidation enforces the answer-key invariant: each question
// must carry at least one option flagged correct (the stored option order
// is the key, so a keyless question could never be credited).
func quizStructValidation(sl validator.StructLevel) {
	nq, ok := sl.Current().Interface().(NewQuiz)
	if !ok {
		return
	}
	for _, q := range nq.Questions {
		if len(q.Options) == 0 || q.CorrectOption() < 0 {
			sl.ReportError(nq.Questions, "questions", "Questions", answerKeyTag, "")
			return
		}
	}
}
