package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
)

// QuestionHandler serves the static survey catalog: questions, categories
// and departments. Form clients render from this instead of hardcoding it.
type QuestionHandler struct{}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler() *QuestionHandler {
	return &QuestionHandler{}
}

// Router sets up a new chi Router for the catalog routes.
func (h *QuestionHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for the catalog endpoints.
func (h *QuestionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListQuestions)
}

// QuestionDTO describes one survey question.
type QuestionDTO struct {
	ID       string `json:"id"`
	Stem     string `json:"stem"`
	Category string `json:"category"`
}

// CatalogDTO is the full survey catalog.
type CatalogDTO struct {
	Questions   []QuestionDTO `json:"questions"`
	Categories  []string      `json:"categories"`
	Departments []string      `json:"departments"`
	ScaleMin    int           `json:"scaleMin"`
	ScaleMax    int           `json:"scaleMax"`
}

// HandleListQuestions handles GET /questions
func (h *QuestionHandler) HandleListQuestions(w http.ResponseWriter, r *http.Request) {
	catalog := CatalogDTO{
		ScaleMin: domain.ScaleMin,
		ScaleMax: domain.ScaleMax,
	}

	categoryOf := make(map[string]string)
	for _, c := range domain.Categories {
		catalog.Categories = append(catalog.Categories, c.Name)
		for _, qid := range c.Questions {
			categoryOf[qid] = c.Name
		}
	}
	for _, qid := range domain.QuestionIDs {
		catalog.Questions = append(catalog.Questions, QuestionDTO{
			ID:       qid,
			Stem:     domain.QuestionStem(qid),
			Category: categoryOf[qid],
		})
	}
	catalog.Departments = append(catalog.Departments, domain.Departments...)

	WriteJSON(w, http.StatusOK, catalog)
}
