package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/elimucd/maendeleo/core"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true)
	return validate.Struct(lr)
}

type LoginResponse struct {
	Token string `json:"token"`
}

type QuizSubmission struct {
	// Answers holds the selected option index per question; -1 (or a
	// missing trailing entry) marks a skipped question.
	Answers []int `json:"answers"`
}
