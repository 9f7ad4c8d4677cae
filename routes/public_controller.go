package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/mbolis/survey-api/app"
	"github.com/mbolis/survey-api/database"
	"github.com/mbolis/survey-api/httpx"
	"github.com/mbolis/survey-api/log"
	"github.com/mbolis/survey-api/submission"
)

func PublicListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := database.ListSurveys(r.Context(), app)
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"surveys": surveys,
		})
	}
}

func PublicGetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlID(w, r)
		if !ok {
			return
		}

		survey, err := database.GetSurvey(r.Context(), app, surveyId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "get_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		render.JSON(w, r, survey)
	}
}

type submissionRequest struct {
	Survey int64              `json:"survey" validate:"required"`
	User   *int64             `json:"user"`
	Data   []submission.Entry `json:"data" validate:"required,dive"`
}

// PublicSubmitSurvey validates the answers against the survey before storing
// anything, then creates the submission in one transaction.
func PublicSubmitSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := submissionRequest{}
		if !decode(w, r, &req) {
			return
		}

		survey, err := database.GetSurvey(r.Context(), app, req.Survey)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.submit.survey", "survey %d not found", req.Survey)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		if req.User != nil {
			exists, err := database.UserExists(r.Context(), app, *req.User)
			if err != nil {
				httpx.LogInternalError(w, "db.get_user", err)
				return
			}
			if !exists {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.submit.user", "user %d not found", *req.User)
				return
			}
		}

		batch, err := submission.Validate(survey, req.User, req.Data)
		if err != nil {
			httpx.LogInvalid(w, r, "request.submit.validate", submission.Failures(err))
			return
		}

		submissionId, err := submission.Create(r.Context(), app.DB, batch)
		if errors.Is(err, submission.ErrPersistenceConflict) {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "db.insert_submission", "%s", err)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_submission", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":  submissionId,
			"url": fmt.Sprintf("/api/submissions/%d", submissionId),
		})
	}
}

// PublicListSubmissions lists submissions, optionally only those of ?user=ID.
func PublicListSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := database.SubmissionFilter{}
		if user := r.URL.Query().Get("user"); user != "" {
			userId, err := strconv.ParseInt(user, 10, 64)
			if err != nil {
				httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_query_param.user")
				return
			}
			filter.UserID = userId
		}

		submissions, err := database.ListSubmissions(r.Context(), app, filter)
		if err != nil {
			httpx.LogInternalError(w, "db.get_submissions", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"submissions": submissions,
		})
	}
}

func PublicGetSubmissionById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionId, ok := urlID(w, r)
		if !ok {
			return
		}

		report, err := submission.Load(r.Context(), app, submissionId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "get_submission", submissionId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_submission", err)
			return
		}

		render.JSON(w, r, report)
	}
}
