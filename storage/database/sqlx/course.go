package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/elimucd/maendeleo/core"
	"github.com/elimucd/maendeleo/core/course"
)

type contentRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*contentRepository)(nil)

func NewContentRepository(db *sql.DB) *contentRepository {
	return &contentRepository{db: sqlx.NewDb(db, driverName)}
}

func (repo contentRepository) ext(exec []core.DBExecutor) sqlx.ExtContext {
	if len(exec) > 0 {
		if e, ok := exec[0].(sqlx.ExtContext); ok {
			return e
		}
	}
	return repo.db
}

type moduleRow struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	Order            int       `db:"order"`
	UnlockMode       string    `db:"unlock_mode"`
	ApprovalRequired bool      `db:"approval_required"`
	ProjectRequired  bool      `db:"project_required"`
	AutoUnlock       bool      `db:"auto_unlock_on_project_validation"`
	IsActive         bool      `db:"is_active"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r moduleRow) module() course.Module {
	return course.Module{
		ID:               r.ID,
		Name:             r.Name,
		Order:            r.Order,
		UnlockMode:       r.UnlockMode,
		ApprovalRequired: r.ApprovalRequired,
		ProjectRequired:  r.ProjectRequired,
		IsActive:         r.IsActive,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,

		AutoUnlockOnProjectValidation: r.AutoUnlock,
	}
}

const moduleColumns = `id, name, "order", unlock_mode, approval_required, project_required, auto_unlock_on_project_validation, is_active, created_at, updated_at`

func (repo contentRepository) CreateModule(ctx context.Context, mod course.Module, exec ...core.DBExecutor) (course.Module, error) {
	const q = `INSERT INTO module (` + moduleColumns + `)
		VALUES (:id, :name, :order, :unlock_mode, :approval_required, :project_required, :auto_unlock_on_project_validation, :is_active, :created_at, :updated_at)`
	row := moduleRow{
		ID:               mod.ID,
		Name:             mod.Name,
		Order:            mod.Order,
		UnlockMode:       mod.UnlockMode,
		ApprovalRequired: mod.ApprovalRequired,
		ProjectRequired:  mod.ProjectRequired,
		AutoUnlock:       mod.AutoUnlockOnProjectValidation,
		IsActive:         mod.IsActive,
		CreatedAt:        mod.CreatedAt.UTC(),
		UpdatedAt:        mod.UpdatedAt.UTC(),
	}
	if _, err := sqlx.NamedExecContext(ctx, repo.ext(exec), q, row); err != nil {
		return course.Module{}, errors.Wrap(err, "inserting module")
	}
	return mod, nil
}

func (repo contentRepository) GetModuleByID(ctx context.Context, id string, exec ...core.DBExecutor) (course.Module, error) {
	const q = `SELECT ` + moduleColumns + ` FROM module WHERE id = $1`
	var row moduleRow
	if err := sqlx.GetContext(ctx, repo.ext(exec), &row, q, id); err != nil {
		return course.Module{}, trapNoRowsErr(err, course.ErrNotFound, "getting module")
	}
	return row.module(), nil
}

func (repo contentRepository) QueryActiveModules(ctx context.Context, exec ...core.DBExecutor) ([]course.Module, error) {
	const q = `SELECT ` + moduleColumns + ` FROM module WHERE is_active ORDER BY "order"`
	var rows []moduleRow
	if err := sqlx.SelectContext(ctx, repo.ext(exec), &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying active modules")
	}
	mods := make([]course.Module, 0, len(rows))
	for _, r := range rows {
		mods = append(mods, r.module())
	}
	return mods, nil
}

type lessonRow struct {
	ID        string    `db:"id"`
	ModuleID  string    `db:"module_id"`
	Name      string    `db:"name"`
	Order     int       `db:"order"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type lessonQuizRow struct {
	LessonID     string `db:"lesson_id"`
	QuizID       string `db:"quiz_id"`
	Position     int    `db:"position"`
	DisplayAfter bool   `db:"display_after"`
}

func (r lessonRow) lesson(quizzes []course.EmbeddedQuiz) course.Lesson {
	return course.Lesson{
		ID:        r.ID,
		ModuleID:  r.ModuleID,
		Name:      r.Name,
		Order:     r.Order,
		Quizzes:   quizzes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

const lessonColumns = `id, module_id, name, "order", created_at, updated_at`

func (repo contentRepository) CreateLesson(ctx context.Context, lsn course.Lesson, exec ...core.DBExecutor) (course.Lesson, error) {
	e := repo.ext(exec)

	const q = `INSERT INTO lesson (` + lessonColumns + `)
		VALUES (:id, :module_id, :name, :order, :created_at, :updated_at)`
	row := lessonRow{
		ID:        lsn.ID,
		ModuleID:  lsn.ModuleID,
		Name:      lsn.Name,
		Order:     lsn.Order,
		CreatedAt: lsn.CreatedAt.UTC(),
		UpdatedAt: lsn.UpdatedAt.UTC(),
	}
	if _, err := sqlx.NamedExecContext(ctx, e, q, row); err != nil {
		return course.Lesson{}, errors.Wrap(err, "inserting lesson")
	}

	const lq = `INSERT INTO lesson_quiz (lesson_id, quiz_id, position, display_after)
		VALUES (:lesson_id, :quiz_id, :position, :display_after)`
	for _, eq := range lsn.Quizzes {
		row := lessonQuizRow{LessonID: lsn.ID, QuizID: eq.QuizID, Position: eq.Position, DisplayAfter: eq.DisplayAfter}
		if _, err := sqlx.NamedExecContext(ctx, e, lq, row); err != nil {
			return course.Lesson{}, errors.Wrap(err, "inserting lesson quiz")
		}
	}
	return lsn, nil
}

func (repo contentRepository) embeddings(ctx context.Context, e sqlx.ExtContext, lessonIDs []string) (map[string][]course.EmbeddedQuiz, error) {
	byLesson := make(map[string][]course.EmbeddedQuiz, len(lessonIDs))
	if len(lessonIDs) == 0 {
		return byLesson, nil
	}

	q, args, err := sqlx.In(`SELECT lesson_id, quiz_id, position, display_after FROM lesson_quiz WHERE lesson_id IN (?) ORDER BY position`, lessonIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building lesson quiz query")
	}
	var rows []lessonQuizRow
	if err := sqlx.SelectContext(ctx, e, &rows, e.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying lesson quizzes")
	}
	for _, r := range rows {
		byLesson[r.LessonID] = append(byLesson[r.LessonID], course.EmbeddedQuiz{
			QuizID:       r.QuizID,
			Position:     r.Position,
			DisplayAfter: r.DisplayAfter,
		})
	}
	return byLesson, nil
}

func (repo contentRepository) GetLessonByID(ctx context.Context, id string, exec ...core.DBExecutor) (course.Lesson, error) {
	e := repo.ext(exec)

	const q = `SELECT ` + lessonColumns + ` FROM lesson WHERE id = $1`
	var row lessonRow
	if err := sqlx.GetContext(ctx, e, &row, q, id); err != nil {
		return course.Lesson{}, trapNoRowsErr(err, course.ErrNotFound, "getting lesson")
	}
	byLesson, err := repo.embeddings(ctx, e, []string{row.ID})
	if err != nil {
		return course.Lesson{}, err
	}
	return row.lesson(byLesson[row.ID]), nil
}

func (repo contentRepository) QueryLessonsByModule(ctx context.Context, moduleID string, exec ...core.DBExecutor) ([]course.Lesson, error) {
	e := repo.ext(exec)

	const q = `SELECT ` + lessonColumns + ` FROM lesson WHERE module_id = $1 ORDER BY "order"`
	var rows []lessonRow
	if err := sqlx.SelectContext(ctx, e, &rows, q, moduleID); err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	byLesson, err := repo.embeddings(ctx, e, ids)
	if err != nil {
		return nil, err
	}

	lessons := make([]course.Lesson, 0, len(rows))
	for _, r := range rows {
		lessons = append(lessons, r.lesson(byLesson[r.ID]))
	}
	return lessons, nil
}

func (repo contentRepository) GetLessonEmbedding(ctx context.Context, quizID string, exec ...core.DBExecutor) (course.Lesson, error) {
	e := repo.ext(exec)

	const q = `SELECT l.id, l.module_id, l.name, l."order", l.created_at, l.updated_at
		FROM lesson l JOIN lesson_quiz lq ON lq.lesson_id = l.id
		WHERE lq.quiz_id = $1 LIMIT 1`
	var row lessonRow
	if err := sqlx.GetContext(ctx, e, &row, q, quizID); err != nil {
		return course.Lesson{}, trapNoRowsErr(err, course.ErrNotFound, "getting embedding lesson")
	}
	byLesson, err := repo.embeddings(ctx, e, []string{row.ID})
	if err != nil {
		return course.Lesson{}, err
	}
	return row.lesson(byLesson[row.ID]), nil
}

type quizRow struct {
	ID        string      `db:"id"`
	ModuleID  null.String `db:"module_id"`
	Name      string      `db:"name"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

type questionRow struct {
	ID     string `db:"id"`
	QuizID string `db:"quiz_id"`
	Order  int    `db:"order"`
	Text   string `db:"text"`
}

type optionRow struct {
	ID         string `db:"id"`
	QuestionID string `db:"question_id"`
	Order      int    `db:"order"`
	Text       string `db:"text"`
	IsCorrect  bool   `db:"is_correct"`
}

func (repo contentRepository) CreateQuiz(ctx context.Context, qz course.Quiz, exec ...core.DBExecutor) (course.Quiz, error) {
	e := repo.ext(exec)

	const q = `INSERT INTO quiz (id, module_id, name, created_at, updated_at)
		VALUES (:id, :module_id, :name, :created_at, :updated_at)`
	row := quizRow{
		ID:        qz.ID,
		ModuleID:  null.NewString(qz.ModuleID, qz.ModuleID != ""),
		Name:      qz.Name,
		CreatedAt: qz.CreatedAt.UTC(),
		UpdatedAt: qz.UpdatedAt.UTC(),
	}
	if _, err := sqlx.NamedExecContext(ctx, e, q, row); err != nil {
		return course.Quiz{}, errors.Wrap(err, "inserting quiz")
	}

	const qq = `INSERT INTO question (id, quiz_id, "order", text) VALUES (:id, :quiz_id, :order, :text)`
	const qo = `INSERT INTO question_option (id, question_id, "order", text, is_correct)
		VALUES (:id, :question_id, :order, :text, :is_correct)`
	for i, question := range qz.Questions {
		qrow := questionRow{ID: uuid.New().String(), QuizID: qz.ID, Order: i, Text: question.Text}
		if _, err := sqlx.NamedExecContext(ctx, e, qq, qrow); err != nil {
			return course.Quiz{}, errors.Wrap(err, "inserting question")
		}
		for j, opt := range question.Options {
			orow := optionRow{ID: uuid.New().String(), QuestionID: qrow.ID, Order: j, Text: opt.Text, IsCorrect: opt.IsCorrect}
			if _, err := sqlx.NamedExecContext(ctx, e, qo, orow); err != nil {
				return course.Quiz{}, errors.Wrap(err, "inserting question option")
			}
		}
	}
	return qz, nil
}

func (repo contentRepository) GetQuizByID(ctx context.Context, id string, exec ...core.DBExecutor) (course.Quiz, error) {
	e := repo.ext(exec)

	const q = `SELECT id, module_id, name, created_at, updated_at FROM quiz WHERE id = $1`
	var row quizRow
	if err := sqlx.GetContext(ctx, e, &row, q, id); err != nil {
		return course.Quiz{}, trapNoRowsErr(err, course.ErrNotFound, "getting quiz")
	}

	const qq = `SELECT id, quiz_id, "order", text FROM question WHERE quiz_id = $1 ORDER BY "order"`
	var qrows []questionRow
	if err := sqlx.SelectContext(ctx, e, &qrows, qq, id); err != nil {
		return course.Quiz{}, errors.Wrap(err, "querying questions")
	}

	questions := make([]course.Question, 0, len(qrows))
	for _, qrow := range qrows {
		const qo = `SELECT id, question_id, "order", text, is_correct FROM question_option WHERE question_id = $1 ORDER BY "order"`
		var orows []optionRow
		if err := sqlx.SelectContext(ctx, e, &orows, qo, qrow.ID); err != nil {
			return course.Quiz{}, errors.Wrap(err, "querying question options")
		}
		opts := make([]course.Option, 0, len(orows))
		for _, orow := range orows {
			opts = append(opts, course.Option{Text: orow.Text, IsCorrect: orow.IsCorrect})
		}
		questions = append(questions, course.Question{Text: qrow.Text, Options: opts})
	}

	return course.Quiz{
		ID:        row.ID,
		ModuleID:  row.ModuleID.String,
		Name:      row.Name,
		Questions: questions,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

type projectRow struct {
	ID         string    `db:"id"`
	ModuleID   string    `db:"module_id"`
	Name       string    `db:"name"`
	AutoUnlock bool      `db:"auto_unlock_next_on_validation"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r projectRow) project() course.Project {
	return course.Project{
		ID:        r.ID,
		ModuleID:  r.ModuleID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,

		AutoUnlockNextOnValidation: r.AutoUnlock,
	}
}

func (repo contentRepository) CreateProject(ctx context.Context, prj course.Project, exec ...core.DBExecutor) (course.Project, error) {
	const q = `INSERT INTO project (id, module_id, name, auto_unlock_next_on_validation, created_at, updated_at)
		VALUES (:id, :module_id, :name, :auto_unlock_next_on_validation, :created_at, :updated_at)`
	row := projectRow{
		ID:         prj.ID,
		ModuleID:   prj.ModuleID,
		Name:       prj.Name,
		AutoUnlock: prj.AutoUnlockNextOnValidation,
		CreatedAt:  prj.CreatedAt.UTC(),
		UpdatedAt:  prj.UpdatedAt.UTC(),
	}
	if _, err := sqlx.NamedExecContext(ctx, repo.ext(exec), q, row); err != nil {
		return course.Project{}, errors.Wrap(err, "inserting project")
	}
	return prj, nil
}

func (repo contentRepository) GetProjectByModule(ctx context.Context, moduleID string, exec ...core.DBExecutor) (course.Project, error) {
	const q = `SELECT id, module_id, name, auto_unlock_next_on_validation, created_at, updated_at FROM project WHERE module_id = $1`
	var row projectRow
	if err := sqlx.GetContext(ctx, repo.ext(exec), &row, q, moduleID); err != nil {
		return course.Project{}, trapNoRowsErr(err, course.ErrNotFound, "getting project")
	}
	return row.project(), nil
}
