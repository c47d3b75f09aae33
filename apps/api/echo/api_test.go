package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/elimucd/maendeleo/core"
	"github.com/elimucd/maendeleo/core/course"
	"github.com/elimucd/maendeleo/core/progression"
	"github.com/elimucd/maendeleo/core/user"
	notifsvc "github.com/elimucd/maendeleo/services/notification"
	inmemdb "github.com/elimucd/maendeleo/storage/database/inmem"
	"github.com/elimucd/maendeleo/tests"
)

type apiFixture struct {
	srv         *server
	contentRepo course.Repository
	usrRepo     user.Repository
}

func setup(t *testing.T) *apiFixture {
	t.Helper()
	conf := testutil.NewConfig()

	db := testutil.OpenDB(t)
	contentRepo := inmemdb.NewContentRepository(db)
	usrRepo := inmemdb.NewUserRepository(db)

	contentSvc := course.NewService(contentRepo)
	usrSvc := user.NewService(usrRepo)
	notifMock := notifsvc.NewConsoleServiceMock(conf)
	progSvc := progression.NewService(inmemdb.NewProgressionRepository(db), contentSvc, notifMock, conf)

	validate := validator.New()
	translator := newTestTranslator()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	progression.InitValidators(validate, translator)

	srv := NewServer(&Options{
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         testLogger{},
		UserSvc:        usrSvc,
		ProgSvc:        progSvc,
		Validate:       validate,
		Translator:     translator,
	})
	return &apiFixture{srv: srv, contentRepo: contentRepo, usrRepo: usrRepo}
}

func newTestTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) {}

func (f *apiFixture) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := f.srv.GenerateToken(GetUserClaims(f.srv.opts.Conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func (f *apiFixture) do(t *testing.T, method, path, token string, data ...interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if len(data) > 0 {
		if err := json.NewEncoder(&body).Encode(data[0]); err != nil {
			t.Fatalf("encoding request body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func Test_userApi_login(t *testing.T) {
	f := setup(t)
	testutil.CreateUser(t, f.usrRepo, "Student", "student", "student@test.cd", "Str0ng.Pwd!", user.StudentRoles, true)
	testutil.CreateUser(t, f.usrRepo, "Lazy", "lazybones", "lazy@test.cd", "Str0ng.Pwd!", user.StudentRoles, false)

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
	}{
		{name: "valid credentials", body: LoginRequest{Username: "student", Password: "Str0ng.Pwd!"}, wantCode: http.StatusOK},
		{name: "by email", body: LoginRequest{Username: "student@test.cd", Password: "Str0ng.Pwd!"}, wantCode: http.StatusOK},
		{name: "wrong password", body: LoginRequest{Username: "student", Password: "nope"}, wantCode: http.StatusBadRequest},
		{name: "unknown user", body: LoginRequest{Username: "ghost", Password: "nope"}, wantCode: http.StatusBadRequest},
		{name: "deactivated account", body: LoginRequest{Username: "lazybones", Password: "Str0ng.Pwd!"}, wantCode: http.StatusForbidden},
		{name: "missing fields", body: LoginRequest{}, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/v1/users/login", "", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}

func Test_progressionApi(t *testing.T) {
	f := setup(t)

	student := testutil.CreateUser(t, f.usrRepo, "Student", "student", "student@test.cd", "", user.StudentRoles, true)
	other := testutil.CreateUser(t, f.usrRepo, "Other", "otherkid", "other@test.cd", "", user.StudentRoles, true)
	teacher := testutil.CreateUser(t, f.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", user.TeacherRoles, true)

	studentToken := f.getToken(t, student)
	otherToken := f.getToken(t, other)
	teacherToken := f.getToken(t, teacher)

	m1 := testutil.CreateModule(t, f.contentRepo, course.Module{Name: "M1", Order: 1, IsActive: true})
	l1 := testutil.CreateLesson(t, f.contentRepo, course.Lesson{ModuleID: m1.ID, Name: "L1", Order: 1})
	m2 := testutil.CreateModule(t, f.contentRepo, course.Module{
		Name: "M2", Order: 2, UnlockMode: course.UnlockApproval, ApprovalRequired: true, IsActive: true,
	})
	l2 := testutil.CreateLesson(t, f.contentRepo, course.Lesson{ModuleID: m2.ID, Name: "L2", Order: 1})
	quiz := testutil.CreateQuiz(t, f.contentRepo, course.Quiz{
		ModuleID: m1.ID, Name: "Q1", Questions: []course.Question{testutil.TwoOptionQuestion("pick")},
	})

	t.Run("auth required", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/progression/modules/"+m1.ID, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("module view", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/progression/modules/"+m1.ID, studentToken)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var view progression.ModuleView
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.True(t, view.Accessible)
		assert.Len(t, view.Lessons, 1)
		assert.Nil(t, view.Previous)
		assert.NotNil(t, view.Next)
	})

	t.Run("unknown module is 404", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/progression/modules/nope", studentToken)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("locked lesson completion is 403", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/progression/lessons/"+l2.ID+"/complete", studentToken)
		assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	})

	t.Run("complete lesson", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/progression/lessons/"+l1.ID+"/complete", studentToken)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var prog progression.Progress
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prog))
		assert.Equal(t, student.ID, prog.UserID)
		assert.True(t, prog.IsCompleted)
	})

	t.Run("submit quiz", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/progression/quizzes/"+quiz.ID+"/submit", studentToken, QuizSubmission{Answers: []int{0}})
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var res progression.QuizResult
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, 100, res.Score)
	})

	var requestID string
	t.Run("request approval", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/progression/modules/"+m2.ID+"/approval-requests", studentToken)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var req progression.ApprovalRequest
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &req))
		assert.Equal(t, progression.ApprovalPending, req.Status)
		requestID = req.ID

		// duplicate pending request conflicts
		rec = f.do(t, http.MethodPost, "/v1/progression/modules/"+m2.ID+"/approval-requests", studentToken)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("decision is staff only", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/progression/approval-requests/"+requestID+"/decision", studentToken,
			progression.ApprovalDecision{Decision: progression.DecisionApprove})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("reject without comment is 400", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/progression/approval-requests/"+requestID+"/decision", teacherToken,
			progression.ApprovalDecision{Decision: progression.DecisionReject})
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("approve", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/progression/approval-requests/"+requestID+"/decision", teacherToken,
			progression.ApprovalDecision{Decision: progression.DecisionApprove})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		// settled requests cannot be re-decided
		rec = f.do(t, http.MethodPost, "/v1/progression/approval-requests/"+requestID+"/decision", teacherToken,
			progression.ApprovalDecision{Decision: progression.DecisionApprove})
		assert.Equal(t, http.StatusConflict, rec.Code)

		// and a granted approval cannot be re-requested
		rec = f.do(t, http.MethodPost, "/v1/progression/modules/"+m2.ID+"/approval-requests", studentToken)
		assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	})

	t.Run("approval history", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/progression/modules/"+m2.ID+"/approval-requests", studentToken)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var history []progression.ApprovalRequest
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
		assert.Len(t, history, 1)
		assert.Equal(t, progression.ApprovalApproved, history[0].Status)
		assert.Equal(t, teacher.ID, history[0].DecidedBy)
	})

	t.Run("grades are staff only", func(t *testing.T) {
		ng := progression.NewGrade{UserID: student.ID, TargetKind: progression.GradeTargetModule, TargetID: m1.ID, Grade: 80}

		rec := f.do(t, http.MethodPost, "/v1/progression/grades", studentToken, ng)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = f.do(t, http.MethodPost, "/v1/progression/grades", teacherToken, ng)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var grade progression.Grade
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grade))
		assert.Equal(t, teacher.ID, grade.GradedBy)
	})

	t.Run("invalid grade payload is 400", func(t *testing.T) {
		ng := progression.NewGrade{UserID: student.ID, TargetKind: "bogus", TargetID: m1.ID, Grade: 300}
		rec := f.do(t, http.MethodPost, "/v1/progression/grades", teacherToken, ng)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("summary is self or staff", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/progression/students/"+student.ID+"/summary", otherToken)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = f.do(t, http.MethodGet, "/v1/progression/students/"+student.ID+"/summary", studentToken)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var sum progression.StudentSummary
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
		assert.Equal(t, 80.0, sum.AverageGrade)
		assert.Equal(t, 100.0, sum.AverageQuizScore)
		assert.Equal(t, 1, sum.CompletedLessons)

		rec = f.do(t, http.MethodGet, "/v1/progression/students/"+student.ID+"/summary", teacherToken)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
