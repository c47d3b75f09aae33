package progression

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/elimucd/maendeleo/core"
	"github.com/elimucd/maendeleo/core/course"
)

var (
	// errors
	ErrNotFound          = errors.New("record not found")
	ErrModuleLocked      = errors.New("module is locked")
	ErrDuplicateRequest  = errors.New("an approval request is already pending")
	ErrAlreadyApproved   = errors.New("module approval has already been granted")
	ErrInvalidTransition = errors.New("approval request has already been decided")

	// NowFunc is mockable for tests.
	NowFunc = time.Now
)

type (
	// Repository persists the per-student facts owned by the engine.
	// Content (modules/lessons/quizzes) is referenced by id only.
	Repository interface {
		// lesson completion facts
		GetProgress(ctx context.Context, userID, lessonID string, exec ...core.DBExecutor) (Progress, error)
		// UpsertProgress is an idempotent insert keyed on (user, lesson).
		UpsertProgress(ctx context.Context, p Progress, exec ...core.DBExecutor) (Progress, error)
		QueryProgressByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Progress, error)
		CountCompletedLessons(ctx context.Context, userID string, lessonIDs []string, exec ...core.DBExecutor) (int, error)

		// quiz attempt history (append-only)
		CreateQuizResult(ctx context.Context, res QuizResult, exec ...core.DBExecutor) (QuizResult, error)
		QueryQuizResultsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]QuizResult, error)

		// grades (re-grade overwrites per (user, target))
		UpsertGrade(ctx context.Context, g Grade, exec ...core.DBExecutor) (Grade, error)
		QueryGradesByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Grade, error)

		// approval requests. CreateApprovalRequest must be serialized per
		// (user, module): it fails with ErrDuplicateRequest when a pending
		// request already exists (partial unique index or equivalent guard).
		CreateApprovalRequest(ctx context.Context, req ApprovalRequest, exec ...core.DBExecutor) (ApprovalRequest, error)
		GetApprovalRequestByID(ctx context.Context, id string, exec ...core.DBExecutor) (ApprovalRequest, error)
		GetLatestApprovalRequest(ctx context.Context, userID, moduleID string, exec ...core.DBExecutor) (ApprovalRequest, error)
		QueryApprovalRequests(ctx context.Context, userID, moduleID string, exec ...core.DBExecutor) ([]ApprovalRequest, error)
		UpdateApprovalRequest(ctx context.Context, req ApprovalRequest, exec ...core.DBExecutor) (ApprovalRequest, error)

		// project submissions: written by the external project workflow,
		// read here to evaluate project gates.
		GetProjectSubmission(ctx context.Context, userID, projectID string, exec ...core.DBExecutor) (ProjectSubmission, error)
		SaveProjectSubmission(ctx context.Context, sub ProjectSubmission, exec ...core.DBExecutor) (ProjectSubmission, error)
	}

	ServiceInterface interface {
		ResolveModuleAccess(ctx context.Context, studentID string, mod course.Module) (ModuleAccess, error)
		GetModuleView(ctx context.Context, studentID, moduleID string) (ModuleView, error)
		CompleteLesson(ctx context.Context, studentID, lessonID string) (Progress, error)
		CompletionRatio(ctx context.Context, studentID, moduleID string) (float64, error)
		OverallCompletionRatio(ctx context.Context, studentID string) (float64, error)
		SubmitQuiz(ctx context.Context, studentID, quizID string, answers []int) (QuizResult, error)
		RecordGrade(ctx context.Context, staffID string, ng NewGrade) (Grade, error)
		RequestModuleApproval(ctx context.Context, studentID, moduleID string) (ApprovalRequest, error)
		DecideModuleApproval(ctx context.Context, staffID, requestID string, dec ApprovalDecision) (ApprovalRequest, error)
		ApprovalHistory(ctx context.Context, studentID, moduleID string) ([]ApprovalRequest, error)
		StudentSummary(ctx context.Context, studentID string) (StudentSummary, error)
	}

	service struct {
		repo       Repository
		contentSvc course.ServiceInterface
		notifSvc   core.NotificationService
		conf       *core.Config
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(
	repo Repository,
	contentSvc course.ServiceInterface,
	notifSvc core.NotificationService,
	conf *core.Config,
) *service {
	return &service{
		repo:       repo,
		contentSvc: contentSvc,
		notifSvc:   notifSvc,
		conf:       conf,
	}
}

func (svc *service) notify(events ...*core.Event) {
	if svc.notifSvc != nil {
		svc.notifSvc.SendEvents(events...)
	}
}

func (svc *service) GetModuleView(ctx context.Context, studentID, moduleID string) (ModuleView, error) {
	mod, err := svc.contentSvc.GetModule(ctx, moduleID)
	if err != nil {
		return ModuleView{}, err
	}

	access, err := svc.ResolveModuleAccess(ctx, studentID, mod)
	if err != nil {
		return ModuleView{}, err
	}
	lessons, err := svc.contentSvc.LessonsByModule(ctx, mod.ID)
	if err != nil {
		return ModuleView{}, err
	}
	ratio, err := svc.CompletionRatio(ctx, studentID, mod.ID)
	if err != nil {
		return ModuleView{}, err
	}

	view := ModuleView{
		Module:          mod,
		Lessons:         lessons,
		Accessible:      access.Accessible,
		ApprovalStatus:  access.ApprovalStatus,
		Reason:          access.Reason,
		CompletionRatio: ratio,
	}

	if prev, err := svc.contentSvc.PreviousModule(ctx, mod); err == nil {
		prevAccess, err := svc.ResolveModuleAccess(ctx, studentID, prev)
		if err != nil {
			return ModuleView{}, err
		}
		view.Previous = &NeighborModule{Module: prev, Accessible: prevAccess.Accessible}
	} else if err != course.ErrNotFound {
		return ModuleView{}, err
	}

	if next, err := svc.contentSvc.NextModule(ctx, mod); err == nil {
		nextAccess, err := svc.ResolveModuleAccess(ctx, studentID, next)
		if err != nil {
			return ModuleView{}, err
		}
		view.Next = &NeighborModule{Module: next, Accessible: nextAccess.Accessible}
	} else if err != course.ErrNotFound {
		return ModuleView{}, err
	}

	return view, nil
}

func (svc *service) SubmitQuiz(ctx context.Context, studentID, quizID string, answers []int) (QuizResult, error) {
	qz, err := svc.contentSvc.GetQuiz(ctx, quizID)
	if err != nil {
		return QuizResult{}, err
	}

	res := QuizResult{
		ID:          uuid.New().String(),
		UserID:      studentID,
		QuizID:      qz.ID,
		Kind:        QuizResultStandalone,
		Answers:     answers,
		SubmittedAt: NowFunc().UTC(),
	}

	// Embedded quizzes bypass the accessibility gate: they reinforce
	// content the student is actively viewing.
	if lsn, err := svc.contentSvc.LessonEmbedding(ctx, qz.ID); err == nil {
		res.Kind = QuizResultEmbedded
		res.LessonID = lsn.ID
	} else if err != course.ErrNotFound {
		return QuizResult{}, err
	} else if qz.ModuleID != "" {
		mod, err := svc.contentSvc.GetModule(ctx, qz.ModuleID)
		if err != nil {
			return QuizResult{}, err
		}
		access, err := svc.ResolveModuleAccess(ctx, studentID, mod)
		if err != nil {
			return QuizResult{}, err
		}
		if !access.Accessible {
			return QuizResult{}, ErrModuleLocked
		}
	}

	grade, err := GradeQuiz(qz, answers)
	if err != nil {
		return QuizResult{}, err
	}
	res.Score = grade.Score
	res.CorrectCount = grade.CorrectCount
	res.TotalQuestions = grade.TotalQuestions

	res, err = svc.repo.CreateQuizResult(ctx, res)
	if err != nil {
		return QuizResult{}, err
	}

	svc.notify(core.NewEvent(core.EventQuizGraded, studentID, map[string]interface{}{
		"quiz_id":       res.QuizID,
		"score":         res.Score,
		"correct_count": res.CorrectCount,
		"total":         res.TotalQuestions,
	}))
	return res, nil
}

func (svc *service) RecordGrade(ctx context.Context, staffID string, ng NewGrade) (Grade, error) {
	g := Grade{
		ID:         uuid.New().String(),
		UserID:     ng.UserID,
		TargetKind: ng.TargetKind,
		TargetID:   ng.TargetID,
		Grade:      ng.Grade,
		Comment:    ng.Comment,
		GradedBy:   staffID,
		GradedAt:   NowFunc().UTC(),
	}
	g, err := svc.repo.UpsertGrade(ctx, g)
	if err != nil {
		return Grade{}, err
	}

	svc.notify(core.NewEvent(core.EventGradeReceived, g.UserID, map[string]interface{}{
		"target_kind": g.TargetKind,
		"target_id":   g.TargetID,
		"grade":       g.Grade,
	}))
	return g, nil
}

func (svc *service) StudentSummary(ctx context.Context, studentID string) (StudentSummary, error) {
	grades, err := svc.repo.QueryGradesByUser(ctx, studentID)
	if err != nil {
		return StudentSummary{}, err
	}
	results, err := svc.repo.QueryQuizResultsByUser(ctx, studentID)
	if err != nil {
		return StudentSummary{}, err
	}

	sum := summarize(grades, results, svc.conf.Progression.QuizScorePolicy)

	progress, err := svc.repo.QueryProgressByUser(ctx, studentID)
	if err != nil {
		return StudentSummary{}, err
	}
	for _, p := range progress {
		if p.IsCompleted {
			sum.CompletedLessons++
		}
	}

	ratio, err := svc.OverallCompletionRatio(ctx, studentID)
	if err != nil {
		return StudentSummary{}, err
	}
	sum.OverallProgress = 100 * ratio
	sum.MasteryLevel = MasteryLevel(sum.OverallProgress, sum.AverageGrade, sum.AverageQuizScore)
	return sum, nil
}
