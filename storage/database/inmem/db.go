package inmemdb

import (
	"sync"

	"github.com/elimucd/maendeleo/core/course"
	"github.com/elimucd/maendeleo/core/progression"
	"github.com/elimucd/maendeleo/core/user"
)

type (
	// DB is an in-memory store used by tests and local development.
	DB struct {
		user        *userTable
		content     *contentTable
		progression *progressionTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	contentTable struct {
		sync.RWMutex
		modules  map[string]*course.Module
		lessons  map[string]*course.Lesson
		quizzes  map[string]*course.Quiz
		projects map[string]*course.Project
	}

	progressionTable struct {
		sync.RWMutex
		progress    map[string]*progression.Progress // (userID, lessonID)
		quizResults []*progression.QuizResult
		grades      map[string]*progression.Grade // (userID, targetKind, targetID)
		approvals   []*progression.ApprovalRequest
		submissions map[string]*progression.ProjectSubmission // (userID, projectID)
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		content: &contentTable{
			modules:  make(map[string]*course.Module),
			lessons:  make(map[string]*course.Lesson),
			quizzes:  make(map[string]*course.Quiz),
			projects: make(map[string]*course.Project),
		},
		progression: &progressionTable{
			progress:    make(map[string]*progression.Progress),
			grades:      make(map[string]*progression.Grade),
			submissions: make(map[string]*progression.ProjectSubmission),
		},
	}
	return db, nil
}

func key(parts ...string) string {
	k := parts[0]
	for _, p := range parts[1:] {
		k += "\x00" + p
	}
	return k
}
