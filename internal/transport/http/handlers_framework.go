package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certus/internal/framework"
	"certus/internal/gap"
	"certus/internal/scoring"
	"certus/internal/transport/http/shared"
)

// GapAnalyzer computes the gap analysis for one framework.
type GapAnalyzer interface {
	Analyze(ctx context.Context, frameworkID string) (gap.Analysis, error)
}

// ScoreTracker exposes the per-framework compliance score records.
type ScoreTracker interface {
	Get(frameworkID string) (scoring.ComplianceScore, bool)
	All() []scoring.ComplianceScore
}

// FrameworkHandler serves the framework catalog, compliance scores and gap
// analysis endpoints.
type FrameworkHandler struct {
	catalog  *framework.Catalog
	analyzer GapAnalyzer
	scores   ScoreTracker
}

func NewFrameworkHandler(catalog *framework.Catalog, analyzer GapAnalyzer, scores ScoreTracker) *FrameworkHandler {
	return &FrameworkHandler{catalog: catalog, analyzer: analyzer, scores: scores}
}

// Register mounts the framework routes.
func (h *FrameworkHandler) Register(r chi.Router) {
	r.Route("/frameworks", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{frameworkID}", h.handleGet)
		r.Get("/{frameworkID}/gaps", h.handleGaps)
		r.Get("/{frameworkID}/score", h.handleScore)
	})
	r.Get("/scores", h.handleAllScores)
}

func (h *FrameworkHandler) handleList(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.catalog.List())
}

func (h *FrameworkHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	fw, err := h.catalog.Get(chi.URLParam(r, "frameworkID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, fw)
}

func (h *FrameworkHandler) handleGaps(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.analyzer.Analyze(r.Context(), chi.URLParam(r, "frameworkID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if analysis.Gaps == nil {
		analysis.Gaps = []gap.ComplianceGap{}
	}
	shared.WriteJSON(w, http.StatusOK, analysis)
}

func (h *FrameworkHandler) handleScore(w http.ResponseWriter, r *http.Request) {
	frameworkID := chi.URLParam(r, "frameworkID")
	if _, err := h.catalog.Get(frameworkID); err != nil {
		shared.WriteError(w, err)
		return
	}

	score, ok := h.scores.Get(frameworkID)
	if !ok {
		// No report scored yet; report a zero record rather than a 404 so
		// dashboards need no special case.
		score = scoring.ComplianceScore{FrameworkID: frameworkID, Trend: scoring.TrendStable}
	}
	shared.WriteJSON(w, http.StatusOK, score)
}

func (h *FrameworkHandler) handleAllScores(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.scores.All())
}
