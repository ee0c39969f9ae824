package handler

import (
	"net/http"

	"github.com/pledgeline/pledgeline/internal/ctxkeys"
	"github.com/pledgeline/pledgeline/internal/service"
)

type CheckInHandler struct {
	goalService *service.GoalService
}

func NewCheckInHandler(goalService *service.GoalService) *CheckInHandler {
	return &CheckInHandler{
		goalService: goalService,
	}
}

func (h *CheckInHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	checkIns, err := h.goalService.CheckIns(userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"check_ins": checkIns})
}

func (h *CheckInHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var params service.CheckInParams
	err := decodeJSON(w, r, &params)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	checkIn, err := h.goalService.AddCheckIn(userID, r.PathValue("id"), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"check_in": checkIn})
}

func (h *CheckInHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	err := h.goalService.DeleteCheckIn(userID, r.PathValue("id"), r.PathValue("checkInID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
