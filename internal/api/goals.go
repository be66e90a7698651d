package api

import (
	"net/http"

	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/service"
)

func (h *Handler) listGoals(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.reader(w, r)
	if !ok {
		return
	}
	goals, err := h.service.ListGoals(r.Context(), actorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(goals))
}

func (h *Handler) createGoal(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.writer(w, r)
	if !ok {
		return
	}
	var req GoalRequest
	if !decode(w, r, &req) {
		return
	}
	goal, effects, err := h.service.CreateGoal(r.Context(), actorID, service.GoalInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.GoalType(req.Type),
		Target:      req.Target,
		Current:     req.Current,
		Deadline:    req.Deadline,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	markDegraded(w, effects)
	writeJSON(w, http.StatusCreated, goal)
}

func (h *Handler) updateGoal(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.writer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req GoalPatchRequest
	if !decode(w, r, &req) {
		return
	}
	goal, effects, err := h.service.UpdateGoal(r.Context(), actorID, id, req.patch())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	markDegraded(w, effects)
	writeJSON(w, http.StatusOK, goal)
}

func (h *Handler) deleteGoal(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.writer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteGoal(r.Context(), actorID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
