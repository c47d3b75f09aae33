package inmemdb

import (
	"context"
	"sort"

	"github.com/elimucd/maendeleo/core"
	"github.com/elimucd/maendeleo/core/course"
)

type contentRepository struct {
	db *contentTable
}

var _ course.Repository = (*contentRepository)(nil)

func NewContentRepository(db *DB) *contentRepository {
	return &contentRepository{db: db.content}
}

func (repo *contentRepository) CreateModule(ctx context.Context, mod course.Module, exec ...core.DBExecutor) (course.Module, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.modules[mod.ID] = &mod
	return mod, nil
}

func (repo *contentRepository) GetModuleByID(ctx context.Context, id string, exec ...core.DBExecutor) (course.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mod, ok := repo.db.modules[id]; ok {
		return *mod, nil
	}
	return course.Module{}, course.ErrNotFound
}

func (repo *contentRepository) QueryActiveModules(ctx context.Context, exec ...core.DBExecutor) ([]course.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mods := make([]course.Module, 0, len(repo.db.modules))
	for _, mod := range repo.db.modules {
		if mod.IsActive {
			mods = append(mods, *mod)
		}
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].Order < mods[j].Order })
	return mods, nil
}

func (repo *contentRepository) CreateLesson(ctx context.Context, lsn course.Lesson, exec ...core.DBExecutor) (course.Lesson, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.lessons[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *contentRepository) GetLessonByID(ctx context.Context, id string, exec ...core.DBExecutor) (course.Lesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if lsn, ok := repo.db.lessons[id]; ok {
		return *lsn, nil
	}
	return course.Lesson{}, course.ErrNotFound
}

func (repo *contentRepository) QueryLessonsByModule(ctx context.Context, moduleID string, exec ...core.DBExecutor) ([]course.Lesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	lessons := make([]course.Lesson, 0)
	for _, lsn := range repo.db.lessons {
		if lsn.ModuleID == moduleID {
			lessons = append(lessons, *lsn)
		}
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Order < lessons[j].Order })
	return lessons, nil
}

func (repo *contentRepository) GetLessonEmbedding(ctx context.Context, quizID string, exec ...core.DBExecutor) (course.Lesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, lsn := range repo.db.lessons {
		for _, eq := range lsn.Quizzes {
			if eq.QuizID == quizID {
				return *lsn, nil
			}
		}
	}
	return course.Lesson{}, course.ErrNotFound
}

func (repo *contentRepository) CreateQuiz(ctx context.Context, qz course.Quiz, exec ...core.DBExecutor) (course.Quiz, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.quizzes[qz.ID] = &qz
	return qz, nil
}

func (repo *contentRepository) GetQuizByID(ctx context.Context, id string, exec ...core.DBExecutor) (course.Quiz, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if qz, ok := repo.db.quizzes[id]; ok {
		return *qz, nil
	}
	return course.Quiz{}, course.ErrNotFound
}

func (repo *contentRepository) CreateProject(ctx context.Context, prj course.Project, exec ...core.DBExecutor) (course.Project, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.projects[prj.ID] = &prj
	return prj, nil
}

func (repo *contentRepository) GetProjectByModule(ctx context.Context, moduleID string, exec ...core.DBExecutor) (course.Project, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, prj := range repo.db.projects {
		if prj.ModuleID == moduleID {
			return *prj, nil
		}
	}
	return course.Project{}, course.ErrNotFound
}
