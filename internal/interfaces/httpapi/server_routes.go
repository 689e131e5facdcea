package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerMartRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/fixtures", handler.ListFixtures)
	mux.HandleFunc("GET /v1/fixtures/live", handler.ListLiveFixtures)
	mux.HandleFunc("GET /v1/fixtures/today", handler.ListTodayFixtures)
	mux.HandleFunc("GET /v1/fixtures/date/{date}", handler.ListFixturesByDate)
	mux.HandleFunc("GET /v1/fixtures/team/{teamID}", handler.ListFixturesByTeam)
	mux.HandleFunc("GET /v1/fixtures/{fixtureID}", handler.GetFixture)

	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/teams/{teamID}", handler.GetTeam)
	mux.HandleFunc("GET /v1/teams/{teamID}/players", handler.ListTeamPlayers)

	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
}

func registerInternalPipelineRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/pipeline/runs", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.TriggerPipelineRun)))
	mux.Handle("GET /v1/internal/pipeline/runs", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ListPipelineRuns)))
	mux.Handle("GET /v1/internal/pipeline/runs/{runID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.GetPipelineRun)))
}
