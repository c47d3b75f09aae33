package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/elimucd/maendeleo/core"
	"github.com/elimucd/maendeleo/core/progression"
)

const uniqueViolation = "23505"

// chronological orderings for the per-student history queries
var (
	byCompletedAt = core.DBOrdering{Field: "completed_at", Ascending: true}
	bySubmittedAt = core.DBOrdering{Field: "submitted_at", Ascending: true}
	byGradedAt    = core.DBOrdering{Field: "graded_at", Ascending: true}
	byRequestedAt = core.DBOrdering{Field: "requested_at", Ascending: true}
	byNewestFirst = core.DBOrdering{Field: "requested_at"}
)

type progressionRepository struct {
	db *sqlx.DB
}

var _ progression.Repository = (*progressionRepository)(nil)

func NewProgressionRepository(db *sql.DB) *progressionRepository {
	return &progressionRepository{db: sqlx.NewDb(db, driverName)}
}

func (repo progressionRepository) ext(exec []core.DBExecutor) sqlx.ExtContext {
	if len(exec) > 0 {
		if e, ok := exec[0].(sqlx.ExtContext); ok {
			return e
		}
	}
	return repo.db
}

// ------------------------------------------------------------------ progress

type progressRow struct {
	UserID      string    `db:"user_id"`
	LessonID    string    `db:"lesson_id"`
	IsCompleted bool      `db:"is_completed"`
	CompletedAt time.Time `db:"completed_at"`
}

func (r progressRow) progress() progression.Progress {
	return progression.Progress{
		UserID:      r.UserID,
		LessonID:    r.LessonID,
		IsCompleted: r.IsCompleted,
		CompletedAt: r.CompletedAt,
	}
}

func (repo progressionRepository) GetProgress(ctx context.Context, userID, lessonID string, exec ...core.DBExecutor) (progression.Progress, error) {
	const q = `SELECT user_id, lesson_id, is_completed, completed_at FROM progress WHERE user_id = $1 AND lesson_id = $2`
	var row progressRow
	if err := sqlx.GetContext(ctx, repo.ext(exec), &row, q, userID, lessonID); err != nil {
		return progression.Progress{}, trapNoRowsErr(err, progression.ErrNotFound, "getting progress")
	}
	return row.progress(), nil
}

func (repo progressionRepository) UpsertProgress(ctx context.Context, p progression.Progress, exec ...core.DBExecutor) (progression.Progress, error) {
	e := repo.ext(exec)

	// ON CONFLICT DO NOTHING keeps the original completion timestamp; the
	// follow-up read returns whichever row won.
	const q = `INSERT INTO progress (user_id, lesson_id, is_completed, completed_at)
		VALUES (:user_id, :lesson_id, :is_completed, :completed_at)
		ON CONFLICT (user_id, lesson_id) DO NOTHING`
	row := progressRow{
		UserID:      p.UserID,
		LessonID:    p.LessonID,
		IsCompleted: p.IsCompleted,
		CompletedAt: p.CompletedAt.UTC(),
	}
	if _, err := sqlx.NamedExecContext(ctx, e, q, row); err != nil {
		return progression.Progress{}, errors.Wrap(err, "upserting progress")
	}
	return repo.GetProgress(ctx, p.UserID, p.LessonID, exec...)
}

func (repo progressionRepository) QueryProgressByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]progression.Progress, error) {
	q := `SELECT user_id, lesson_id, is_completed, completed_at FROM progress WHERE user_id = $1 ORDER BY ` + byCompletedAt.String()
	var rows []progressRow
	if err := sqlx.SelectContext(ctx, repo.ext(exec), &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	ps := make([]progression.Progress, 0, len(rows))
	for _, r := range rows {
		ps = append(ps, r.progress())
	}
	return ps, nil
}

func (repo progressionRepository) CountCompletedLessons(ctx context.Context, userID string, lessonIDs []string, exec ...core.DBExecutor) (int, error) {
	if len(lessonIDs) == 0 {
		return 0, nil
	}
	e := repo.ext(exec)

	q, args, err := sqlx.In(`SELECT COUNT(*) FROM progress WHERE user_id = ? AND is_completed AND lesson_id IN (?)`, userID, lessonIDs)
	if err != nil {
		return 0, errors.Wrap(err, "building completed lessons query")
	}
	var count int
	if err := sqlx.GetContext(ctx, e, &count, e.Rebind(q), args...); err != nil {
		return 0, errors.Wrap(err, "counting completed lessons")
	}
	return count, nil
}

// -------------------------------------------------------------- quiz results

type quizResultRow struct {
	ID             string        `db:"id"`
	UserID         string        `db:"user_id"`
	QuizID         string        `db:"quiz_id"`
	LessonID       null.String   `db:"lesson_id"`
	Kind           string        `db:"kind"`
	Answers        pq.Int64Array `db:"answers"`
	Score          int           `db:"score"`
	CorrectCount   int           `db:"correct_count"`
	TotalQuestions int           `db:"total_questions"`
	SubmittedAt    time.Time     `db:"submitted_at"`
}

func (r quizResultRow) result() progression.QuizResult {
	answers := make([]int, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, int(a))
	}
	return progression.QuizResult{
		ID:             r.ID,
		UserID:         r.UserID,
		QuizID:         r.QuizID,
		LessonID:       r.LessonID.String,
		Kind:           r.Kind,
		Answers:        answers,
		Score:          r.Score,
		CorrectCount:   r.CorrectCount,
		TotalQuestions: r.TotalQuestions,
		SubmittedAt:    r.SubmittedAt,
	}
}

func (repo progressionRepository) CreateQuizResult(ctx context.Context, res progression.QuizResult, exec ...core.DBExecutor) (progression.QuizResult, error) {
	const q = `INSERT INTO quiz_result (id, user_id, quiz_id, lesson_id, kind, answers, score, correct_count, total_questions, submitted_at)
		VALUES (:id, :user_id, :quiz_id, :lesson_id, :kind, :answers, :score, :correct_count, :total_questions, :submitted_at)`
	answers := make(pq.Int64Array, 0, len(res.Answers))
	for _, a := range res.Answers {
		answers = append(answers, int64(a))
	}
	row := quizResultRow{
		ID:             res.ID,
		UserID:         res.UserID,
		QuizID:         res.QuizID,
		LessonID:       null.NewString(res.LessonID, res.LessonID != ""),
		Kind:           res.Kind,
		Answers:        answers,
		Score:          res.Score,
		CorrectCount:   res.CorrectCount,
		TotalQuestions: res.TotalQuestions,
		SubmittedAt:    res.SubmittedAt.UTC(),
	}
	if _, err := sqlx.NamedExecContext(ctx, repo.ext(exec), q, row); err != nil {
		return progression.QuizResult{}, errors.Wrap(err, "inserting quiz result")
	}
	return res, nil
}

func (repo progressionRepository) QueryQuizResultsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]progression.QuizResult, error) {
	q := `SELECT id, user_id, quiz_id, lesson_id, kind, answers, score, correct_count, total_questions, submitted_at
		FROM quiz_result WHERE user_id = $1 ORDER BY ` + bySubmittedAt.String()
	var rows []quizResultRow
	if err := sqlx.SelectContext(ctx, repo.ext(exec), &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying quiz results")
	}
	results := make([]progression.QuizResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.result())
	}
	return results, nil
}

// -------------------------------------------------------------------- grades

type gradeRow struct {
	ID         string      `db:"id"`
	UserID     string      `db:"user_id"`
	TargetKind string      `db:"target_kind"`
	TargetID   string      `db:"target_id"`
	Grade      int         `db:"grade"`
	Comment    null.String `db:"comment"`
	GradedBy   null.String `db:"graded_by"`
	GradedAt   time.Time   `db:"graded_at"`
}

func (r gradeRow) grade() progression.Grade {
	return progression.Grade{
		ID:         r.ID,
		UserID:     r.UserID,
		TargetKind: r.TargetKind,
		TargetID:   r.TargetID,
		Grade:      r.Grade,
		Comment:    r.Comment.String,
		GradedBy:   r.GradedBy.String,
		GradedAt:   r.GradedAt,
	}
}

func (repo progressionRepository) UpsertGrade(ctx context.Context, g progression.Grade, exec ...core.DBExecutor) (progression.Grade, error) {
	e := repo.ext(exec)

	// a re-grade keeps the existing row id
	const q = `INSERT INTO grade (id, user_id, target_kind, target_id, grade, comment, graded_by, graded_at)
		VALUES (:id, :user_id, :target_kind, :target_id, :grade, :comment, :graded_by, :graded_at)
		ON CONFLICT (user_id, target_kind, target_id) DO UPDATE
		SET grade = EXCLUDED.grade, comment = EXCLUDED.comment, graded_by = EXCLUDED.graded_by, graded_at = EXCLUDED.graded_at`
	row := gradeRow{
		ID:         g.ID,
		UserID:     g.UserID,
		TargetKind: g.TargetKind,
		TargetID:   g.TargetID,
		Grade:      g.Grade,
		Comment:    null.NewString(g.Comment, g.Comment != ""),
		GradedBy:   null.NewString(g.GradedBy, g.GradedBy != ""),
		GradedAt:   g.GradedAt.UTC(),
	}
	if _, err := sqlx.NamedExecContext(ctx, e, q, row); err != nil {
		return progression.Grade{}, errors.Wrap(err, "upserting grade")
	}

	const get = `SELECT id, user_id, target_kind, target_id, grade, comment, graded_by, graded_at
		FROM grade WHERE user_id = $1 AND target_kind = $2 AND target_id = $3`
	var saved gradeRow
	if err := sqlx.GetContext(ctx, e, &saved, get, g.UserID, g.TargetKind, g.TargetID); err != nil {
		return progression.Grade{}, errors.Wrap(err, "getting saved grade")
	}
	return saved.grade(), nil
}

func (repo progressionRepository) QueryGradesByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]progression.Grade, error) {
	q := `SELECT id, user_id, target_kind, target_id, grade, comment, graded_by, graded_at
		FROM grade WHERE user_id = $1 ORDER BY ` + byGradedAt.String()
	var rows []gradeRow
	if err := sqlx.SelectContext(ctx, repo.ext(exec), &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]progression.Grade, 0, len(rows))
	for _, r := range rows {
		grades = append(grades, r.grade())
	}
	return grades, nil
}

// ---------------------------------------------------------------- approvals

type approvalRow struct {
	ID          string      `db:"id"`
	UserID      string      `db:"user_id"`
	ModuleID    string      `db:"module_id"`
	Status      string      `db:"status"`
	Comment     null.String `db:"comment"`
	RequestedAt time.Time   `db:"requested_at"`
	DecidedAt   null.Time   `db:"decided_at"`
	DecidedBy   null.String `db:"decided_by"`
}

func (r approvalRow) request() progression.ApprovalRequest {
	return progression.ApprovalRequest{
		ID:          r.ID,
		UserID:      r.UserID,
		ModuleID:    r.ModuleID,
		Status:      r.Status,
		Comment:     r.Comment.String,
		RequestedAt: r.RequestedAt,
		DecidedAt:   r.DecidedAt.Time,
		DecidedBy:   r.DecidedBy.String,
	}
}

const approvalColumns = `id, user_id, module_id, status, comment, requested_at, decided_at, decided_by`

func (repo progressionRepository) CreateApprovalRequest(ctx context.Context, req progression.ApprovalRequest, exec ...core.DBExecutor) (progression.ApprovalRequest, error) {
	// the partial unique index on (user_id, module_id) WHERE status = 'pending'
	// serializes concurrent requests
	const q = `INSERT INTO approval_request (` + approvalColumns + `)
		VALUES (:id, :user_id, :module_id, :status, :comment, :requested_at, :decided_at, :decided_by)`
	row := approvalRow{
		ID:          req.ID,
		UserID:      req.UserID,
		ModuleID:    req.ModuleID,
		Status:      req.Status,
		Comment:     null.NewString(req.Comment, req.Comment != ""),
		RequestedAt: req.RequestedAt.UTC(),
		DecidedAt:   null.NewTime(req.DecidedAt.UTC(), !req.DecidedAt.IsZero()),
		DecidedBy:   null.NewString(req.DecidedBy, req.DecidedBy != ""),
	}
	if _, err := sqlx.NamedExecContext(ctx, repo.ext(exec), q, row); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return progression.ApprovalRequest{}, progression.ErrDuplicateRequest
		}
		return progression.ApprovalRequest{}, errors.Wrap(err, "inserting approval request")
	}
	return req, nil
}

func (repo progressionRepository) GetApprovalRequestByID(ctx context.Context, id string, exec ...core.DBExecutor) (progression.ApprovalRequest, error) {
	const q = `SELECT ` + approvalColumns + ` FROM approval_request WHERE id = $1`
	var row approvalRow
	if err := sqlx.GetContext(ctx, repo.ext(exec), &row, q, id); err != nil {
		return progression.ApprovalRequest{}, trapNoRowsErr(err, progression.ErrNotFound, "getting approval request")
	}
	return row.request(), nil
}

func (repo progressionRepository) GetLatestApprovalRequest(ctx context.Context, userID, moduleID string, exec ...core.DBExecutor) (progression.ApprovalRequest, error) {
	q := `SELECT ` + approvalColumns + ` FROM approval_request
		WHERE user_id = $1 AND module_id = $2 ORDER BY ` + byNewestFirst.String() + ` LIMIT 1`
	var row approvalRow
	if err := sqlx.GetContext(ctx, repo.ext(exec), &row, q, userID, moduleID); err != nil {
		return progression.ApprovalRequest{}, trapNoRowsErr(err, progression.ErrNotFound, "getting latest approval request")
	}
	return row.request(), nil
}

func (repo progressionRepository) QueryApprovalRequests(ctx context.Context, userID, moduleID string, exec ...core.DBExecutor) ([]progression.ApprovalRequest, error) {
	q := `SELECT ` + approvalColumns + ` FROM approval_request WHERE 1=1`
	args := make([]interface{}, 0, 2)
	if userID != "" {
		args = append(args, userID)
		q += ` AND user_id = $1`
	}
	if moduleID != "" {
		args = append(args, moduleID)
		if len(args) == 1 {
			q += ` AND module_id = $1`
		} else {
			q += ` AND module_id = $2`
		}
	}
	q += ` ORDER BY ` + byRequestedAt.String()

	var rows []approvalRow
	if err := sqlx.SelectContext(ctx, repo.ext(exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying approval requests")
	}
	reqs := make([]progression.ApprovalRequest, 0, len(rows))
	for _, r := range rows {
		reqs = append(reqs, r.request())
	}
	return reqs, nil
}

func (repo progressionRepository) UpdateApprovalRequest(ctx context.Context, req progression.ApprovalRequest, exec ...core.DBExecutor) (progression.ApprovalRequest, error) {
	const q = `UPDATE approval_request
		SET status = :status, comment = :comment, decided_at = :decided_at, decided_by = :decided_by
		WHERE id = :id`
	row := approvalRow{
		ID:        req.ID,
		Status:    req.Status,
		Comment:   null.NewString(req.Comment, req.Comment != ""),
		DecidedAt: null.NewTime(req.DecidedAt.UTC(), !req.DecidedAt.IsZero()),
		DecidedBy: null.NewString(req.DecidedBy, req.DecidedBy != ""),
	}
	res, err := sqlx.NamedExecContext(ctx, repo.ext(exec), q, row)
	if err != nil {
		return progression.ApprovalRequest{}, errors.Wrap(err, "updating approval request")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return progression.ApprovalRequest{}, progression.ErrNotFound
	}
	return req, nil
}

// -------------------------------------------------------------- submissions

type submissionRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	ProjectID   string    `db:"project_id"`
	Status      string    `db:"status"`
	Grade       int       `db:"grade"`
	SubmittedAt time.Time `db:"submitted_at"`
}

func (r submissionRow) submission() progression.ProjectSubmission {
	return progression.ProjectSubmission{
		ID:          r.ID,
		UserID:      r.UserID,
		ProjectID:   r.ProjectID,
		Status:      r.Status,
		Grade:       r.Grade,
		SubmittedAt: r.SubmittedAt,
	}
}

func (repo progressionRepository) GetProjectSubmission(ctx context.Context, userID, projectID string, exec ...core.DBExecutor) (progression.ProjectSubmission, error) {
	const q = `SELECT id, user_id, project_id, status, grade, submitted_at
		FROM project_submission WHERE user_id = $1 AND project_id = $2`
	var row submissionRow
	if err := sqlx.GetContext(ctx, repo.ext(exec), &row, q, userID, projectID); err != nil {
		return progression.ProjectSubmission{}, trapNoRowsErr(err, progression.ErrNotFound, "getting project submission")
	}
	return row.submission(), nil
}

func (repo progressionRepository) SaveProjectSubmission(ctx context.Context, sub progression.ProjectSubmission, exec ...core.DBExecutor) (progression.ProjectSubmission, error) {
	const q = `INSERT INTO project_submission (id, user_id, project_id, status, grade, submitted_at)
		VALUES (:id, :user_id, :project_id, :status, :grade, :submitted_at)
		ON CONFLICT (user_id, project_id) DO UPDATE
		SET status = EXCLUDED.status, grade = EXCLUDED.grade, submitted_at = EXCLUDED.submitted_at`
	row := submissionRow{
		ID:          sub.ID,
		UserID:      sub.UserID,
		ProjectID:   sub.ProjectID,
		Status:      sub.Status,
		Grade:       sub.Grade,
		SubmittedAt: sub.SubmittedAt.UTC(),
	}
	if _, err := sqlx.NamedExecContext(ctx, repo.ext(exec), q, row); err != nil {
		return progression.ProjectSubmission{}, errors.Wrap(err, "saving project submission")
	}
	return sub, nil
}
