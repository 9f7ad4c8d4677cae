package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/survey-api/app"
	"github.com/mbolis/survey-api/database"
	"github.com/mbolis/survey-api/httpx"
	"github.com/mbolis/survey-api/log"
	"github.com/mbolis/survey-api/model"
)

// start_date <= end_date is deliberately not checked.
type surveyRequest struct {
	Title       string      `json:"title" validate:"required,max=140"`
	StartDate   *model.Date `json:"start_date" validate:"required"`
	EndDate     *model.Date `json:"end_date" validate:"required"`
	Description string      `json:"description" validate:"max=140"`
}

// start_date is not part of an update.
type surveyUpdateRequest struct {
	Title       string      `json:"title" validate:"required,max=140"`
	EndDate     *model.Date `json:"end_date" validate:"required"`
	Description string      `json:"description" validate:"max=140"`
}

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := surveyRequest{}
		if !decode(w, r, &req) {
			return
		}

		survey := model.Survey{
			Title:       req.Title,
			StartDate:   *req.StartDate,
			EndDate:     *req.EndDate,
			Description: req.Description,
			Questions:   []model.Question{},
		}
		err := database.InsertSurvey(r.Context(), app, &survey)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}

		log.WithField("survey", survey.ID).Info("admin.create_survey")
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, survey)
	}
}

// UpdateSurvey replaces title, end date and description. The start date of
// a survey can't be changed once created; it is ignored if sent.
func UpdateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlID(w, r)
		if !ok {
			return
		}

		req := surveyUpdateRequest{}
		if !decode(w, r, &req) {
			return
		}

		survey := model.Survey{
			ID:          surveyId,
			Title:       req.Title,
			EndDate:     *req.EndDate,
			Description: req.Description,
		}
		err := database.UpdateSurvey(r.Context(), app, &survey)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "update_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.update_survey", err)
			return
		}

		full, err := database.GetSurvey(r.Context(), app, surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.update_survey.reload", err)
			return
		}
		render.JSON(w, r, full)
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlID(w, r)
		if !ok {
			return
		}

		// questions, options and submissions go with it
		err := database.DeleteSurvey(r.Context(), app, surveyId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "delete_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_survey", err)
			return
		}

		log.WithField("survey", surveyId).Info("admin.delete_survey")
		w.WriteHeader(http.StatusNoContent)
	}
}

func GetSurveySubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlID(w, r)
		if !ok {
			return
		}

		_, err := database.GetSurvey(r.Context(), app, surveyId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "get_submissions", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		submissions, err := database.ListSubmissions(r.Context(), app, database.SubmissionFilter{SurveyID: surveyId})
		if err != nil {
			httpx.LogInternalError(w, "db.get_submissions", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"submissions": submissions,
		})
	}
}

func DeleteSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionId, ok := urlID(w, r)
		if !ok {
			return
		}

		err := database.DeleteSubmission(r.Context(), app, submissionId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "delete_submission", submissionId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_submission", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
