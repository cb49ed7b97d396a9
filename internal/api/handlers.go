package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/completion"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/tracker"
)

type handlers struct {
	svc   *tracker.Service
	today func() (time.Time, error)
}

type toggleRequest struct {
	Date string `json:"date"`
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// requestDay resolves the "today" a view is computed for: the date query
// parameter when present, otherwise the server's configured today.
func (h *handlers) requestDay(r *http.Request) (time.Time, error) {
	if date := r.URL.Query().Get("date"); date != "" {
		return completion.ParseTarget(date)
	}
	return h.today()
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": constants.Version})
}

func (h *handlers) createHabit(w http.ResponseWriter, r *http.Request) {
	var in models.NewHabit
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	id, err := h.svc.CreateHabit(r.Context(), auth.ForContext(r.Context()), in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *handlers) listHabits(w http.ResponseWriter, r *http.Request) {
	day, err := h.requestDay(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := tracker.Filter{
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
		Status:     q.Get("status"),
	}
	rows, err := h.svc.FilterHabits(r.Context(), auth.ForContext(r.Context()), filter, day)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rows)
}

func (h *handlers) listStreaks(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListAllStreakRecords(r.Context(), auth.ForContext(r.Context()))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, records)
}

func (h *handlers) lastCompletion(w http.ResponseWriter, r *http.Request) {
	record, err := h.svc.GetLastCompletion(r.Context(), auth.ForContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, record)
}

func (h *handlers) toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	res, err := h.svc.ToggleCompletion(r.Context(), auth.ForContext(r.Context()), chi.URLParam(r, "id"), strings.TrimSpace(req.Date))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	day, err := h.requestDay(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	dash, err := h.svc.Dashboard(r.Context(), auth.ForContext(r.Context()), day)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, dash)
}

func (h *handlers) calendar(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		day, err := h.today()
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		month = day.Format(constants.MonthFormat)
	}

	cal, err := h.svc.Calendar(r.Context(), auth.ForContext(r.Context()), month)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, cal)
}

func (h *handlers) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	category, err := h.svc.CreateCategory(r.Context(), auth.ForContext(r.Context()), req.Name, req.Color)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, category)
}

func (h *handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context(), auth.ForContext(r.Context()))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}
