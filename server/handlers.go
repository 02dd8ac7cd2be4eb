package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-pkgz/lgr"

	"github.com/feedpulse/feedpulse/pkg/domain"
)

// createFeedHandler subscribes to a new feed. The URL is probed first so a
// bad address is rejected before it lands in the schedule.
func (s *Server) createFeedHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RenderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		RenderError(w, r, fmt.Errorf("url is required"), http.StatusBadRequest)
		return
	}

	probe, err := s.prober.Probe(r.Context(), req.URL)
	if err != nil {
		RenderError(w, r, fmt.Errorf("not a valid feed: %w", err), http.StatusUnprocessableEntity)
		return
	}

	f := &domain.Feed{URL: req.URL, Title: probe.Title, Description: probe.Description}
	if err := s.feeds.CreateFeed(r.Context(), f); err != nil {
		RenderError(w, r, fmt.Errorf("create feed: %w", err), http.StatusConflict)
		return
	}

	lgr.Printf("[INFO] subscribed to feed %s (id %d)", f.URL, f.ID)
	RenderJSON(w, r, http.StatusCreated, f)
}

// listFeedsHandler returns all active feeds, ?all=true includes retired ones
func (s *Server) listFeedsHandler(w http.ResponseWriter, r *http.Request) {
	includeRetired := r.URL.Query().Get("all") == "true"
	feeds, err := s.feeds.ListFeeds(r.Context(), includeRetired)
	if err != nil {
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}
	RenderJSON(w, r, http.StatusOK, feeds)
}

func (s *Server) getFeedHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}
	f, err := s.feeds.GetFeed(r.Context(), id)
	if err != nil {
		RenderError(w, r, err, http.StatusNotFound)
		return
	}
	RenderJSON(w, r, http.StatusOK, f)
}

// retireFeedHandler soft-retires a feed; an active push subscription is
// dropped at the hub first
func (s *Server) retireFeedHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}

	f, err := s.feeds.GetFeed(r.Context(), id)
	if err != nil {
		RenderError(w, r, err, http.StatusNotFound)
		return
	}

	if f.WebSubSubscribed && s.subs != nil {
		if err := s.subs.Unsubscribe(r.Context(), f); err != nil {
			lgr.Printf("[WARN] unsubscribe failed for feed %d: %v", id, err)
		}
	}

	if err := s.feeds.RetireFeed(r.Context(), id); err != nil {
		RenderError(w, r, err, http.StatusNotFound)
		return
	}

	lgr.Printf("[INFO] retired feed %d", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) feedEntriesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}

	limit := s.config.PageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := s.entries.GetEntries(r.Context(), id, limit)
	if err != nil {
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}
	RenderJSON(w, r, http.StatusOK, entries)
}

// refreshFeedHandler triggers an immediate fetch attempt for one feed
func (s *Server) refreshFeedHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.scheduler.FetchFeedNow(r.Context(), id); err != nil {
		RenderError(w, r, err, http.StatusConflict)
		return
	}
	RenderJSON(w, r, http.StatusAccepted, map[string]string{"status": "refresh started"})
}

// websubVerifyHandler answers hub verification challenges. A valid pending
// request gets the challenge echoed back, anything else gets 404 so the hub
// treats the operation as refused.
func (s *Server) websubVerifyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}

	res := s.subs.HandleVerify(r.Context(), id, r.URL.Query())
	if !res.OK {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(res.Challenge))
}

// websubDeliveryHandler accepts a content push from the hub
func (s *Server) websubDeliveryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxBodySize))
	if err != nil {
		RenderError(w, r, fmt.Errorf("read delivery body: %w", err), http.StatusBadRequest)
		return
	}

	if err := s.subs.HandleDelivery(id, body); err != nil {
		// 5xx makes a compliant hub retry the delivery later
		RenderError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid feed id %q", r.PathValue("id"))
	}
	return id, nil
}
