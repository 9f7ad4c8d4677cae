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

type questionRequest struct {
	Survey  int64               `json:"survey" validate:"required"`
	Title   string              `json:"title" validate:"required,max=140"`
	Type    *model.QuestionType `json:"q_type" validate:"required"`
	Options []string            `json:"options" validate:"omitempty,dive,required,max=140"`
}

// CreateQuestion accepts the option texts of a choice question as plain
// strings and stores them along with the question.
func CreateQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := questionRequest{}
		if !decode(w, r, &req) {
			return
		}
		if req.Type.IsChoice() && len(req.Options) == 0 {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.create_question", "can't add select question without options")
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		question := model.Question{SurveyID: req.Survey, Title: req.Title, Type: *req.Type}
		err = database.InsertQuestion(r.Context(), tx, &question, req.Options)
		if database.IsForeignKeyViolation(err) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "db.insert_question", "survey %d not found", req.Survey)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_question", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_question.commit", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, question)
	}
}

func ListQuestions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := database.ListQuestions(r.Context(), app)
		if err != nil {
			httpx.LogInternalError(w, "db.get_questions", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"questions": questions,
		})
	}
}

func GetQuestionById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, ok := urlID(w, r)
		if !ok {
			return
		}

		question, err := database.GetQuestion(r.Context(), app, questionId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "get_question", questionId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_question", err)
			return
		}

		render.JSON(w, r, question)
	}
}

type questionUpdateRequest struct {
	Title string              `json:"title" validate:"required,max=140"`
	Type  *model.QuestionType `json:"q_type" validate:"required"`
}

// UpdateQuestion changes title and type. A question can become a choice
// question only if it already owns options.
func UpdateQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, ok := urlID(w, r)
		if !ok {
			return
		}

		req := questionUpdateRequest{}
		if !decode(w, r, &req) {
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		if req.Type.IsChoice() {
			n, err := database.CountOptions(r.Context(), tx, questionId)
			if err != nil {
				httpx.LogInternalError(w, "db.update_question.count_options", err)
				return
			}
			if n == 0 {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.update_question", "can't turn question %d into a select question without options", questionId)
				return
			}
		}

		question := model.Question{ID: questionId, Title: req.Title, Type: *req.Type}
		err = database.UpdateQuestion(r.Context(), tx, &question)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "update_question", questionId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.update_question", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.update_question.commit", err)
			return
		}

		render.JSON(w, r, question)
	}
}

func DeleteQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, ok := urlID(w, r)
		if !ok {
			return
		}

		err := database.DeleteQuestion(r.Context(), app, questionId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "delete_question", questionId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_question", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
