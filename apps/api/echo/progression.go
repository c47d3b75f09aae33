package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elimucd/maendeleo/core/progression"
)

type progressionApi struct {
	srv *server
}

func registerProgressionAPI(g *echo.Group, jwt echo.MiddlewareFunc, srv *server) {
	api := progressionApi{srv: srv}

	pg := g.Group("/progression", jwt)

	// student endpoints: the acting student comes from the JWT claims
	pg.GET("/modules/:id", api.moduleView)
	pg.POST("/modules/:id/approval-requests", api.requestApproval)
	pg.GET("/modules/:id/approval-requests", api.approvalHistory)
	pg.POST("/lessons/:id/complete", api.completeLesson)
	pg.POST("/quizzes/:id/submit", api.submitQuiz)

	// staff endpoints
	pg.POST("/approval-requests/:id/decision", api.decideApproval, staffMiddleware())
	pg.POST("/grades", api.recordGrade, staffMiddleware())

	pg.GET("/students/:id/summary", api.studentSummary, selfOrStaffMiddleware())
}

func (api *progressionApi) moduleView(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	view, err := api.srv.opts.ProgSvc.GetModuleView(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting module view")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *progressionApi) completeLesson(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	prog, err := api.srv.opts.ProgSvc.CompleteLesson(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *progressionApi) submitQuiz(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data QuizSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizSubmission")
	}

	res, err := api.srv.opts.ProgSvc.SubmitQuiz(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data.Answers)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *progressionApi) requestApproval(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	req, err := api.srv.opts.ProgSvc.RequestModuleApproval(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *progressionApi) approvalHistory(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqs, err := api.srv.opts.ProgSvc.ApprovalHistory(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting approval history")
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *progressionApi) decideApproval(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data progression.ApprovalDecision
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ApprovalDecision")
	}
	if err := data.Validate(api.srv.opts.Validate); err != nil {
		return err
	}

	req, err := api.srv.opts.ProgSvc.DecideModuleApproval(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *progressionApi) recordGrade(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data progression.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(api.srv.opts.Validate); err != nil {
		return err
	}

	grade, err := api.srv.opts.ProgSvc.RecordGrade(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, grade)
}

func (api *progressionApi) studentSummary(ctx echo.Context) error {
	summary, err := api.srv.opts.ProgSvc.StudentSummary(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting student summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}
