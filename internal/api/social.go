package api

import (
	"net/http"
	"strconv"

	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/feed"
)

const maxFeedLimit = 100

func (h *Handler) listFriends(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.reader(w, r)
	if !ok {
		return
	}
	friends, err := h.service.ListFriends(r.Context(), actorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(friends))
}

func (h *Handler) requestFriend(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.writer(w, r)
	if !ok {
		return
	}
	var req FriendRequest
	if !decode(w, r, &req) {
		return
	}
	link, err := h.service.RequestFriend(r.Context(), actorID, req.FriendID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *Handler) respondToFriend(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.writer(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req FriendResponseRequest
	if !decode(w, r, &req) {
		return
	}
	link, effects, err := h.service.RespondToFriend(r.Context(), actorID, id, domain.FriendStatus(req.Status))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	markDegraded(w, effects)
	writeJSON(w, http.StatusOK, link)
}

func (h *Handler) importContacts(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.writer(w, r)
	if !ok {
		return
	}
	var req ImportContactsRequest
	if !decode(w, r, &req) {
		return
	}
	result, effects, err := h.service.ImportContacts(r.Context(), actorID, req.Source, req.Contacts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	markDegraded(w, effects)
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.reader(w, r)
	if !ok {
		return
	}

	var q feed.Query
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > maxFeedLimit {
				parsed = maxFeedLimit
			}
			q.Limit = parsed
		}
	}
	cursor, err := feed.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}
	q.Cursor = cursor

	page, err := h.service.Feed(r.Context(), actorID, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := list(page.Items)
	resp.NextCursor = feed.EncodeCursor(page.NextCursor)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.reader(w, r)
	if !ok {
		return
	}
	activities, err := h.service.ListActivities(r.Context(), actorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(activities))
}

func (h *Handler) postActivity(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.writer(w, r)
	if !ok {
		return
	}
	var req ActivityRequest
	if !decode(w, r, &req) {
		return
	}
	item, err := h.service.PostActivity(r.Context(), actorID, domain.ActivityType(req.Type), req.Content, req.Metadata)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) listAchievements(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.reader(w, r)
	if !ok {
		return
	}
	achievements, err := h.service.ListAchievements(r.Context(), actorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(achievements))
}

func (h *Handler) summaryStats(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.reader(w, r)
	if !ok {
		return
	}
	summary, err := h.service.SummaryStats(r.Context(), actorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) workoutStats(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.reader(w, r)
	if !ok {
		return
	}
	stats, err := h.service.WorkoutStats(r.Context(), actorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
