package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/quantfoot/pipeline/internal/domain/fixture"
)

func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtures")
	defer span.End()

	var (
		items []fixture.Fixture
		err   error
	)
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		items, err = h.fixtureService.ListByStatusGroup(ctx, status)
	} else {
		items, err = h.fixtureService.List(ctx)
	}
	h.writeFixtures(ctx, w, "list fixtures failed", items, err)
}

func (h *Handler) GetFixture(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFixture")
	defer span.End()

	fixtureID, err := pathInt64(r, "fixtureID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.fixtureService.GetByID(ctx, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "get fixture failed", "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, fixtureToDTO(item))
}

func (h *Handler) ListFixturesByDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixturesByDate")
	defer span.End()

	items, err := h.fixtureService.ListByDate(ctx, r.PathValue("date"))
	h.writeFixtures(ctx, w, "list fixtures by date failed", items, err)
}

func (h *Handler) ListFixturesByTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixturesByTeam")
	defer span.End()

	teamID, err := pathInt64(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.fixtureService.ListByTeam(ctx, teamID)
	h.writeFixtures(ctx, w, "list fixtures by team failed", items, err)
}

func (h *Handler) ListLiveFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLiveFixtures")
	defer span.End()

	items, err := h.fixtureService.ListLive(ctx)
	h.writeFixtures(ctx, w, "list live fixtures failed", items, err)
}

func (h *Handler) ListTodayFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTodayFixtures")
	defer span.End()

	items, err := h.fixtureService.ListToday(ctx)
	h.writeFixtures(ctx, w, "list today fixtures failed", items, err)
}

func (h *Handler) writeFixtures(ctx context.Context, w http.ResponseWriter, failure string, items []fixture.Fixture, err error) {
	if err != nil {
		h.logger.ErrorContext(ctx, failure, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]fixtureDTO, 0, len(items))
	for _, item := range items {
		out = append(out, fixtureToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
