package handler

import (
	"net/http"
	"strconv"

	"github.com/pledgeline/pledgeline/internal/ctxkeys"
	"github.com/pledgeline/pledgeline/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	goals, err := h.goalService.Goals(userID, r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var params service.GoalParams
	err := decodeJSON(w, r, &params)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := h.goalService.Create(userID, params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"goal": goal})
}

func (h *GoalHandler) Show(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	goal, err := h.goalService.ByID(userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"goal": goal})
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var update service.GoalUpdate
	err := decodeJSON(w, r, &update)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := h.goalService.Update(userID, r.PathValue("id"), update)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"goal": goal})
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	err := h.goalService.Delete(userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GoalHandler) Pause(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	goal, err := h.goalService.Pause(userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"goal": goal})
}

func (h *GoalHandler) Resume(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	goal, err := h.goalService.Resume(userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"goal": goal})
}

func (h *GoalHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	status, err := h.goalService.Status(userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": status})
}

// Chart accepts ?points_per_day=N (default 1, at most 24).
func (h *GoalHandler) Chart(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	pointsPerDay := 1.0
	if raw := r.URL.Query().Get("points_per_day"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || v > 24 {
			writeMessage(w, http.StatusBadRequest, "points_per_day must be a number in (0, 24]")
			return
		}
		pointsPerDay = v
	}

	chart, err := h.goalService.Chart(userID, r.PathValue("id"), pointsPerDay)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chart)
}

func (h *GoalHandler) AddSegment(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var params service.SegmentParams
	err := decodeJSON(w, r, &params)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	segment, err := h.goalService.AddSegment(userID, r.PathValue("id"), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"segment": segment})
}

func (h *GoalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	stats, err := h.goalService.Stats(userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}
