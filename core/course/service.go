package course

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/elimucd/maendeleo/core"
)

var (
	// ErrNotFound is returned when referenced content does not (or no longer does) exist.
	ErrNotFound = errors.New("content not found")
)

type (
	Repository interface {
		CreateModule(ctx context.Context, mod Module, exec ...core.DBExecutor) (Module, error)
		GetModuleByID(ctx context.Context, id string, exec ...core.DBExecutor) (Module, error)
		// QueryActiveModules returns active modules sorted by their sequence order.
		QueryActiveModules(ctx context.Context, exec ...core.DBExecutor) ([]Module, error)

		CreateLesson(ctx context.Context, lsn Lesson, exec ...core.DBExecutor) (Lesson, error)
		GetLessonByID(ctx context.Context, id string, exec ...core.DBExecutor) (Lesson, error)
		QueryLessonsByModule(ctx context.Context, moduleID string, exec ...core.DBExecutor) ([]Lesson, error)
		// GetLessonEmbedding returns the lesson embedding the given quiz;
		// ErrNotFound if the quiz is standalone.
		GetLessonEmbedding(ctx context.Context, quizID string, exec ...core.DBExecutor) (Lesson, error)

		CreateQuiz(ctx context.Context, qz Quiz, exec ...core.DBExecutor) (Quiz, error)
		GetQuizByID(ctx context.Context, id string, exec ...core.DBExecutor) (Quiz, error)

		CreateProject(ctx context.Context, prj Project, exec ...core.DBExecutor) (Project, error)
		GetProjectByModule(ctx context.Context, moduleID string, exec ...core.DBExecutor) (Project, error)
	}

	ServiceInterface interface {
		CreateModule(ctx context.Context, nm NewModule) (Module, error)
		GetModule(ctx context.Context, id string) (Module, error)
		ActiveModules(ctx context.Context) ([]Module, error)
		// PreviousModule returns the active module immediately preceding mod
		// in sequence order; ErrNotFound if mod is the first active module.
		PreviousModule(ctx context.Context, mod Module) (Module, error)
		// NextModule returns the active module immediately following mod
		// in sequence order; ErrNotFound if mod is the last active module.
		NextModule(ctx context.Context, mod Module) (Module, error)

		CreateLesson(ctx context.Context, nl NewLesson) (Lesson, error)
		GetLesson(ctx context.Context, id string) (Lesson, error)
		LessonsByModule(ctx context.Context, moduleID string) ([]Lesson, error)
		LessonEmbedding(ctx context.Context, quizID string) (Lesson, error)

		CreateQuiz(ctx context.Context, nq NewQuiz) (Quiz, error)
		GetQuiz(ctx context.Context, id string) (Quiz, error)

		CreateProject(ctx context.Context, np NewProject) (Project, error)
		ProjectByModule(ctx context.Context, moduleID string) (Project, error)
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) CreateModule(ctx context.Context, nm NewModule) (Module, error) {
	now := time.Now().UTC()
	mod := Module{
		ID:               uuid.New().String(),
		Name:             nm.Name,
		Order:            nm.Order,
		UnlockMode:       nm.UnlockMode,
		ApprovalRequired: nm.ApprovalRequired,
		ProjectRequired:  nm.ProjectRequired,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,

		AutoUnlockOnProjectValidation: nm.AutoUnlockOnProjectValidation,
	}
	return svc.repo.CreateModule(ctx, mod)
}

func (svc *service) GetModule(ctx context.Context, id string) (Module, error) {
	return svc.repo.GetModuleByID(ctx, id)
}

func (svc *service) ActiveModules(ctx context.Context) ([]Module, error) {
	return svc.repo.QueryActiveModules(ctx)
}

func (svc *service) PreviousModule(ctx context.Context, mod Module) (Module, error) {
	mods, err := svc.repo.QueryActiveModules(ctx)
	if err != nil {
		return Module{}, err
	}
	prev := Module{}
	found := false
	for _, m := range mods {
		if m.ID == mod.ID {
			continue
		}
		if m.Order < mod.Order && (!found || m.Order > prev.Order) {
			prev = m
			found = true
		}
	}
	if !found {
		return Module{}, ErrNotFound
	}
	return prev, nil
}

func (svc *service) NextModule(ctx context.Context, mod Module) (Module, error) {
	mods, err := svc.repo.QueryActiveModules(ctx)
	if err != nil {
		return Module{}, err
	}
	next := Module{}
	found := false
	for _, m := range mods {
		if m.ID == mod.ID {
			continue
		}
		if m.Order > mod.Order && (!found || m.Order < next.Order) {
			next = m
			found = true
		}
	}
	if !found {
		return Module{}, ErrNotFound
	}
	return next, nil
}

func (svc *service) CreateLesson(ctx context.Context, nl NewLesson) (Lesson, error) {
	if _, err := svc.repo.GetModuleByID(ctx, nl.ModuleID); err != nil {
		return Lesson{}, err
	}
	now := time.Now().UTC()
	lsn := Lesson{
		ID:        uuid.New().String(),
		ModuleID:  nl.ModuleID,
		Name:      nl.Name,
		Order:     nl.Order,
		Quizzes:   nl.Quizzes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateLesson(ctx, lsn)
}

func (svc *service) GetLesson(ctx context.Context, id string) (Lesson, error) {
	return svc.repo.GetLessonByID(ctx, id)
}

func (svc *service) LessonsByModule(ctx context.Context, moduleID string) ([]Lesson, error) {
	return svc.repo.QueryLessonsByModule(ctx, moduleID)
}

func (svc *service) LessonEmbedding(ctx context.Context, quizID string) (Lesson, error) {
	return svc.repo.GetLessonEmbedding(ctx, quizID)
}

func (svc *service) CreateQuiz(ctx context.Context, nq NewQuiz) (Quiz, error) {
	now := time.Now().UTC()
	qz := Quiz{
		ID:        uuid.New().String(),
		ModuleID:  nq.ModuleID,
		Name:      nq.Name,
		Questions: nq.Questions,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateQuiz(ctx, qz)
}

func (svc *service) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	return svc.repo.GetQuizByID(ctx, id)
}

func (svc *service) CreateProject(ctx context.Context, np NewProject) (Project, error) {
	if _, err := svc.repo.GetModuleByID(ctx, np.ModuleID); err != nil {
		return Project{}, err
	}
	now := time.Now().UTC()
	prj := Project{
		ID:        uuid.New().String(),
		ModuleID:  np.ModuleID,
		Name:      np.Name,
		CreatedAt: now,
		UpdatedAt: now,

		AutoUnlockNextOnValidation: np.AutoUnlockNextOnValidation,
	}
	return svc.repo.CreateProject(ctx, prj)
}

func (svc *service) ProjectByModule(ctx context.Context, moduleID string) (Project, error) {
	return svc.repo.GetProjectByModule(ctx, moduleID)
}
