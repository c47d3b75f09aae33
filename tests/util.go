// Package testutil provides shared fixtures for service and API tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/elimucd/maendeleo/core"
	"github.com/elimucd/maendeleo/core/course"
	"github.com/elimucd/maendeleo/core/user"
	inmemdb "github.com/elimucd/maendeleo/storage/database/inmem"
)

// NewConfig returns a config suitable for tests.
func NewConfig() *core.Config {
	return &core.Config{
		Debug:     true,
		TestMode:  true,
		Env:       "test",
		AppName:   "Maendeleo",
		SecretKey: "secret",
		Server: core.ServerConfig{
			JWTExpirationDelta: 10 * time.Minute,
		},
		Progression: core.ProgressionConfig{
			QuizScorePolicy:   core.QuizScorePolicyLatest,
			ProjectGatePolicy: core.ProjectGatePolicyAny,
		},
	}
}

// OpenDB opens a fresh in-memory database.
func OpenDB(t *testing.T) *inmemdb.DB {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateModule(t *testing.T, repo course.Repository, mod course.Module) course.Module {
	t.Helper()
	now := time.Now().UTC()
	if mod.ID == "" {
		mod.ID = uuid.New().String()
	}
	if mod.UnlockMode == "" {
		mod.UnlockMode = course.UnlockAuto
	}
	mod.CreatedAt, mod.UpdatedAt = now, now
	mod, err := repo.CreateModule(context.Background(), mod)
	if err != nil {
		t.Fatalf("CreateModule() failed: %v", err)
	}
	return mod
}

func CreateLesson(t *testing.T, repo course.Repository, lsn course.Lesson) course.Lesson {
	t.Helper()
	now := time.Now().UTC()
	if lsn.ID == "" {
		lsn.ID = uuid.New().String()
	}
	lsn.CreatedAt, lsn.UpdatedAt = now, now
	lsn, err := repo.CreateLesson(context.Background(), lsn)
	if err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	return lsn
}

func CreateQuiz(t *testing.T, repo course.Repository, qz course.Quiz) course.Quiz {
	t.Helper()
	now := time.Now().UTC()
	if qz.ID == "" {
		qz.ID = uuid.New().String()
	}
	qz.CreatedAt, qz.UpdatedAt = now, now
	qz, err := repo.CreateQuiz(context.Background(), qz)
	if err != nil {
		t.Fatalf("CreateQuiz() failed: %v", err)
	}
	return qz
}

func CreateProject(t *testing.T, repo course.Repository, prj course.Project) course.Project {
	t.Helper()
	now := time.Now().UTC()
	if prj.ID == "" {
		prj.ID = uuid.New().String()
	}
	prj.CreatedAt, prj.UpdatedAt = now, now
	prj, err := repo.CreateProject(context.Background(), prj)
	if err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}
	return prj
}

// TwoOptionQuestion builds a question whose first option is correct.
func TwoOptionQuestion(text string) course.Question {
	return course.Question{
		Text: text,
		Options: []course.Option{
			{Text: "right", IsCorrect: true},
			{Text: "wrong"},
		},
	}
}
