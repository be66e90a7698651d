package api

import (
	"net/http"

	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/service"
)

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.reader(w, r)
	if !ok {
		return
	}
	workouts, err := h.service.ListWorkouts(r.Context(), actorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(workouts))
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.reader(w, r); !ok {
		return
	}
	templates, err := h.service.ListTemplates(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(templates))
}

func (h *Handler) createWorkout(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.writer(w, r)
	if !ok {
		return
	}
	var req WorkoutRequest
	if !decode(w, r, &req) {
		return
	}
	workout, effects, err := h.service.CreateWorkout(r.Context(), actorID, service.WorkoutInput{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Difficulty:  domain.Difficulty(req.Difficulty),
		Type:        domain.WorkoutType(req.Type),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	markDegraded(w, effects)
	writeJSON(w, http.StatusCreated, workout)
}

func (h *Handler) getWorkout(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.reader(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	workout, err := h.service.GetWorkout(r.Context(), actorID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (h *Handler) updateWorkout(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.writer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req WorkoutPatchRequest
	if !decode(w, r, &req) {
		return
	}
	workout, effects, err := h.service.UpdateWorkout(r.Context(), actorID, id, req.patch())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	markDegraded(w, effects)
	writeJSON(w, http.StatusOK, workout)
}

func (h *Handler) deleteWorkout(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.writer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteWorkout(r.Context(), actorID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cloneTemplate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.writer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	workout, effects, err := h.service.CloneTemplate(r.Context(), actorID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	markDegraded(w, effects)
	writeJSON(w, http.StatusCreated, workout)
}

func (h *Handler) listExercises(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.reader(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	exercises, err := h.service.ListExercises(r.Context(), actorID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(exercises))
}

func (h *Handler) createExercise(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.writer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ExerciseRequest
	if !decode(w, r, &req) {
		return
	}
	exercise, err := h.service.CreateExercise(r.Context(), actorID, id, service.ExerciseInput{
		Name:     req.Name,
		Sets:     req.Sets,
		Reps:     req.Reps,
		Weight:   req.Weight,
		Duration: req.Duration,
		RestTime: req.RestTime,
		Notes:    req.Notes,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, exercise)
}

func (h *Handler) updateExercise(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.writer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ExercisePatchRequest
	if !decode(w, r, &req) {
		return
	}
	exercise, effects, err := h.service.UpdateExercise(r.Context(), actorID, id, req.patch())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	markDegraded(w, effects)
	writeJSON(w, http.StatusOK, exercise)
}

func (h *Handler) deleteExercise(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.writer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteExercise(r.Context(), actorID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
