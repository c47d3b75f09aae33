package inmemdb

import (
	"context"
	"sort"

	"github.com/elimucd/maendeleo/core"
	"github.com/elimucd/maendeleo/core/progression"
)

type progressionRepository struct {
	db *progressionTable
}

var _ progression.Repository = (*progressionRepository)(nil)

func NewProgressionRepository(db *DB) *progressionRepository {
	return &progressionRepository{db: db.progression}
}

func (repo *progressionRepository) GetProgress(ctx context.Context, userID, lessonID string, exec ...core.DBExecutor) (progression.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.progress[key(userID, lessonID)]; ok {
		return *p, nil
	}
	return progression.Progress{}, progression.ErrNotFound
}

func (repo *progressionRepository) UpsertProgress(ctx context.Context, p progression.Progress, exec ...core.DBExecutor) (progression.Progress, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	k := key(p.UserID, p.LessonID)
	if existing, ok := repo.db.progress[k]; ok {
		return *existing, nil
	}
	repo.db.progress[k] = &p
	return p, nil
}

func (repo *progressionRepository) QueryProgressByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]progression.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	res := make([]progression.Progress, 0)
	for _, p := range repo.db.progress {
		if p.UserID == userID {
			res = append(res, *p)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CompletedAt.Before(res[j].CompletedAt) })
	return res, nil
}

func (repo *progressionRepository) CountCompletedLessons(ctx context.Context, userID string, lessonIDs []string, exec ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, lessonID := range lessonIDs {
		if p, ok := repo.db.progress[key(userID, lessonID)]; ok && p.IsCompleted {
			count++
		}
	}
	return count, nil
}

func (repo *progressionRepository) CreateQuizResult(ctx context.Context, res progression.QuizResult, exec ...core.DBExecutor) (progression.QuizResult, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.quizResults = append(repo.db.quizResults, &res)
	return res, nil
}

func (repo *progressionRepository) QueryQuizResultsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]progression.QuizResult, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	res := make([]progression.QuizResult, 0)
	for _, r := range repo.db.quizResults {
		if r.UserID == userID {
			res = append(res, *r)
		}
	}
	return res, nil
}

func (repo *progressionRepository) UpsertGrade(ctx context.Context, g progression.Grade, exec ...core.DBExecutor) (progression.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	k := key(g.UserID, g.TargetKind, g.TargetID)
	if existing, ok := repo.db.grades[k]; ok {
		g.ID = existing.ID
	}
	repo.db.grades[k] = &g
	return g, nil
}

func (repo *progressionRepository) QueryGradesByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]progression.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	res := make([]progression.Grade, 0)
	for _, g := range repo.db.grades {
		if g.UserID == userID {
			res = append(res, *g)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].GradedAt.Before(res[j].GradedAt) })
	return res, nil
}

func (repo *progressionRepository) CreateApprovalRequest(ctx context.Context, req progression.ApprovalRequest, exec ...core.DBExecutor) (progression.ApprovalRequest, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// at most one pending request per (user, module)
	for _, r := range repo.db.approvals {
		if r.UserID == req.UserID && r.ModuleID == req.ModuleID && r.IsPending() {
			return progression.ApprovalRequest{}, progression.ErrDuplicateRequest
		}
	}
	repo.db.approvals = append(repo.db.approvals, &req)
	return req, nil
}

func (repo *progressionRepository) GetApprovalRequestByID(ctx context.Context, id string, exec ...core.DBExecutor) (progression.ApprovalRequest, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, r := range repo.db.approvals {
		if r.ID == id {
			return *r, nil
		}
	}
	return progression.ApprovalRequest{}, progression.ErrNotFound
}

func (repo *progressionRepository) GetLatestApprovalRequest(ctx context.Context, userID, moduleID string, exec ...core.DBExecutor) (progression.ApprovalRequest, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var latest *progression.ApprovalRequest
	for _, r := range repo.db.approvals {
		if r.UserID != userID || r.ModuleID != moduleID {
			continue
		}
		if latest == nil || r.RequestedAt.After(latest.RequestedAt) {
			latest = r
		}
	}
	if latest == nil {
		return progression.ApprovalRequest{}, progression.ErrNotFound
	}
	return *latest, nil
}

func (repo *progressionRepository) QueryApprovalRequests(ctx context.Context, userID, moduleID string, exec ...core.DBExecutor) ([]progression.ApprovalRequest, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	res := make([]progression.ApprovalRequest, 0)
	for _, r := range repo.db.approvals {
		if r.UserID == userID && r.ModuleID == moduleID {
			res = append(res, *r)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].RequestedAt.Before(res[j].RequestedAt) })
	return res, nil
}

func (repo *progressionRepository) UpdateApprovalRequest(ctx context.Context, req progression.ApprovalRequest, exec ...core.DBExecutor) (progression.ApprovalRequest, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, r := range repo.db.approvals {
		if r.ID == req.ID {
			repo.db.approvals[i] = &req
			return req, nil
		}
	}
	return progression.ApprovalRequest{}, progression.ErrNotFound
}

func (repo *progressionRepository) GetProjectSubmission(ctx context.Context, userID, projectID string, exec ...core.DBExecutor) (progression.ProjectSubmission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.submissions[key(userID, projectID)]; ok {
		return *sub, nil
	}
	return progression.ProjectSubmission{}, progression.ErrNotFound
}

func (repo *progressionRepository) SaveProjectSubmission(ctx context.Context, sub progression.ProjectSubmission, exec ...core.DBExecutor) (progression.ProjectSubmission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.submissions[key(sub.UserID, sub.ProjectID)] = &sub
	return sub, nil
}
