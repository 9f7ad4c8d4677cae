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

type optionRequest struct {
	Question int64  `json:"question" validate:"required"`
	Text     string `json:"text" validate:"required,max=140"`
}

func CreateOption(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := optionRequest{}
		if !decode(w, r, &req) {
			return
		}

		question, err := database.GetQuestion(r.Context(), app, req.Question)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.create_option", "question %d not found", req.Question)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_question", err)
			return
		}
		if !question.Type.IsChoice() {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.create_option", "can't add option for non-select question")
			return
		}

		option := model.Option{QuestionID: question.ID, Text: req.Text}
		err = database.InsertOption(r.Context(), app, &option)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_option", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, option)
	}
}

func ListOptions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options, err := database.ListOptions(r.Context(), app)
		if err != nil {
			httpx.LogInternalError(w, "db.get_options", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"options": options,
		})
	}
}

func GetOptionById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		optionId, ok := urlID(w, r)
		if !ok {
			return
		}

		option, err := database.GetOption(r.Context(), app, optionId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "get_option", optionId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_option", err)
			return
		}

		render.JSON(w, r, option)
	}
}

type optionUpdateRequest struct {
	Text string `json:"text" validate:"required,max=140"`
}

func UpdateOption(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		optionId, ok := urlID(w, r)
		if !ok {
			return
		}

		req := optionUpdateRequest{}
		if !decode(w, r, &req) {
			return
		}

		option := model.Option{ID: optionId, Text: req.Text}
		err := database.UpdateOption(r.Context(), app, &option)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "update_option", optionId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.update_option", err)
			return
		}

		render.JSON(w, r, option)
	}
}

func DeleteOption(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		optionId, ok := urlID(w, r)
		if !ok {
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		option, err := database.GetOption(r.Context(), tx, optionId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "delete_option", optionId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_option", err)
			return
		}

		question, err := database.GetQuestion(r.Context(), tx, option.QuestionID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_question", err)
			return
		}
		if question.Type.IsChoice() && len(question.Options) <= 1 {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.delete_option", "can't delete the last option of select question %d", question.ID)
			return
		}

		err = database.DeleteOption(r.Context(), tx, optionId)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_option", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_option.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
