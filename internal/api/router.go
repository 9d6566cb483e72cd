package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/lexiflow/lexiflow/internal/api/middleware"
	"github.com/lexiflow/lexiflow/internal/api/shared"
	"github.com/lexiflow/lexiflow/internal/enrichment"
	"github.com/lexiflow/lexiflow/internal/practice"
	"github.com/lexiflow/lexiflow/internal/store"
)

// Deps bundles everything the router needs.
type Deps struct {
	Store    *store.Store
	Queue    *enrichment.Controller
	Enricher enrichment.Enricher
	Session  *practice.Session
}

// NewRouter builds the full API route tree.
func NewRouter(deps Deps) chi.Router {
	wordHandler := NewWordHandler(deps.Store, deps.Queue)
	questionHandler := NewQuestionHandler(deps.Store, deps.Enricher)
	categoryHandler := NewCategoryHandler(deps.Store)
	practiceHandler := NewPracticeHandler(deps.Store, deps.Session)
	settingsHandler := NewSettingsHandler(deps.Store)
	snapshotHandler := NewSnapshotHandler(deps.Store)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/words", func(r chi.Router) {
			r.Post("/", wordHandler.EnqueueWords)
			r.Get("/", wordHandler.ListWords)
			r.Delete("/", wordHandler.ClearWords)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", wordHandler.GetWord)
				r.Delete("/", wordHandler.DeleteWord)
				r.Post("/toggle", wordHandler.ToggleWord)
				r.Post("/reset", wordHandler.ResetWordStats)

				r.Route("/questions", func(r chi.Router) {
					r.Post("/", questionHandler.AddQuestion)
					r.Post("/generate", questionHandler.GenerateQuestion)
					r.Patch("/{question_id}", questionHandler.UpdateQuestion)
					r.Delete("/{question_id}", questionHandler.DeleteQuestion)
				})
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.ListCategories)
			r.Post("/", categoryHandler.CreateCategory)
			r.Put("/selection", categoryHandler.SelectCategories)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", categoryHandler.RenameCategory)
				r.Delete("/", categoryHandler.DeleteCategory)
				r.Post("/move", categoryHandler.MoveCategory)
				r.Put("/words/{word_id}", categoryHandler.AssignWord)
				r.Delete("/words/{word_id}", categoryHandler.UnassignWord)
			})
		})

		r.Route("/practice", func(r chi.Router) {
			r.Post("/next", practiceHandler.NextWord)
			r.Get("/current", practiceHandler.CurrentAttempt)
			r.Post("/hint", practiceHandler.Hint)
			r.Post("/answer", practiceHandler.SubmitAnswer)
			r.Post("/give-up", practiceHandler.GiveUp)
			r.Post("/acknowledge", practiceHandler.Acknowledge)
		})

		r.Get("/reviews/due", practiceHandler.DueReviews)
		r.Get("/queue", wordHandler.QueueStatus)

		r.Get("/settings", settingsHandler.GetSettings)
		r.Patch("/settings", settingsHandler.UpdateSettings)

		r.Get("/export", snapshotHandler.Export)
		r.Post("/import", snapshotHandler.Import)
	})

	return r
}
