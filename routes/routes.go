package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/survey-api/app"
	"github.com/mbolis/survey-api/log"
	"github.com/mbolis/survey-api/routes/middlewares"
	"github.com/rs/cors"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(
		middleware.RequestID,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Logger, NoColor: true}),
		middleware.Recoverer,
		cors.New(cors.Options{
			AllowedOrigins:   app.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler,
	)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Get("/surveys", PublicListSurveys(app))
	api.Get(`/surveys/{id:^\d+$}`, PublicGetSurveyById(app))

	api.Post("/submissions", PublicSubmitSurvey(app))
	api.Get("/submissions", PublicListSubmissions(app))
	api.Get(`/submissions/{id:^\d+$}`, PublicGetSubmissionById(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		// CRUD survey
		r.Post("/surveys", CreateSurvey(app))
		r.Put(`/surveys/{id:^\d+$}`, UpdateSurvey(app))
		r.Delete(`/surveys/{id:^\d+$}`, DeleteSurvey(app))
		r.Get(`/surveys/{id:^\d+$}/submissions`, GetSurveySubmissions(app))

		// CRUD question
		r.Post("/questions", CreateQuestion(app))
		r.Get("/questions", ListQuestions(app))
		r.Get(`/questions/{id:^\d+$}`, GetQuestionById(app))
		r.Put(`/questions/{id:^\d+$}`, UpdateQuestion(app))
		r.Delete(`/questions/{id:^\d+$}`, DeleteQuestion(app))

		// CRUD option
		r.Post("/options", CreateOption(app))
		r.Get("/options", ListOptions(app))
		r.Get(`/options/{id:^\d+$}`, GetOptionById(app))
		r.Put(`/options/{id:^\d+$}`, UpdateOption(app))
		r.Delete(`/options/{id:^\d+$}`, DeleteOption(app))

		// submissions are never updated
		r.Delete(`/submissions/{id:^\d+$}`, DeleteSubmission(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}
