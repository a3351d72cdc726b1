// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ManuGH/sportsdvr/internal/dvr"
	"github.com/ManuGH/sportsdvr/internal/log"
	"github.com/ManuGH/sportsdvr/internal/model"
)

const maxClassifyBody = 64 << 10

// handleScan runs a scan synchronously and answers with its report. The scan
// outlives a client disconnect so timers are never left half-committed.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	ctx := context.WithoutCancel(r.Context())

	report, err := s.scanner.Run(ctx, dvr.RunRequest{Trigger: dvr.TriggerAPI, Mode: mode})
	switch {
	case errors.Is(err, dvr.ErrScanInProgress):
		writeProblem(w, http.StatusConflict, "scan_in_progress", err.Error())
	case errors.Is(err, dvr.ErrInvalidMode):
		writeBadRequest(w, err)
	case err != nil && report != nil:
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Warn().Err(err).Str(log.FieldRunID, report.RunID).Msg("api scan failed")
		writeJSON(w, http.StatusBadGateway, report)
	case err != nil:
		writeProblem(w, http.StatusInternalServerError, "scan_failed", err.Error())
	default:
		writeJSON(w, http.StatusOK, report)
	}
}

func (s *Server) handleLatestReport(w http.ResponseWriter, _ *http.Request) {
	report, ok := s.scanner.LatestReport()
	if !ok {
		writeNotFound(w, "no scan has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type subscriptionView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	Match        string   `json:"match"`
	Exclude      []string `json:"exclude,omitempty"`
	Rank         int      `json:"rank"`
	AllowReplays bool     `json:"allow_replays"`
	Enabled      bool     `json:"enabled"`
}

type subscriptionsResponse struct {
	Subscriptions []subscriptionView `json:"subscriptions"`
	Problems      []string           `json:"problems,omitempty"`
}

func (s *Server) handleSubscriptions(w http.ResponseWriter, _ *http.Request) {
	snap := s.scanner.Catalog().Snapshot()
	resp := subscriptionsResponse{
		Subscriptions: make([]subscriptionView, 0, len(snap.Subscriptions)),
		Problems:      snap.Problems,
	}
	for _, sub := range snap.Subscriptions {
		v := subscriptionView{
			ID:           sub.ID,
			Name:         sub.Name,
			Kind:         string(sub.Kind),
			Match:        sub.Match.String(),
			Rank:         sub.Rank,
			AllowReplays: sub.AllowReplays,
			Enabled:      sub.Enabled,
		}
		for _, ex := range sub.Exclusions {
			v.Exclude = append(v.Exclude, ex.String())
		}
		resp.Subscriptions = append(resp.Subscriptions, v)
	}
	writeJSON(w, http.StatusOK, resp)
}

// classifyRequest describes a hypothetical guide entry.
type classifyRequest struct {
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle"`
	Description string    `json:"description"`
	Channel     string    `json:"channel"`
	Categories  []string  `json:"categories"`
	IsLive      bool      `json:"is_live"`
	IsRepeat    bool      `json:"is_repeat"`
	Start       time.Time `json:"start"`
	Duration    string    `json:"duration"`
}

func (req classifyRequest) program(now time.Time) (model.Program, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.Program{}, errors.New("title is required")
	}
	start := req.Start
	if start.IsZero() {
		start = now
	}
	length := 2 * time.Hour
	if req.Duration != "" {
		d, err := time.ParseDuration(req.Duration)
		if err != nil || d <= 0 {
			return model.Program{}, fmt.Errorf("invalid duration %q", req.Duration)
		}
		length = d
	}
	return model.Program{
		ID:          "explain",
		ChannelID:   req.Channel,
		ChannelName: req.Channel,
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Description: req.Description,
		Start:       start.UTC(),
		End:         start.UTC().Add(length),
		IsLive:      req.IsLive,
		IsRepeat:    req.IsRepeat,
		Categories:  req.Categories,
	}, nil
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxClassifyBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	now := s.now()
	p, err := req.program(now)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.scanner.Catalog().Snapshot().Explain(p, now))
}
