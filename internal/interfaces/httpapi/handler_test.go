package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfoot/pipeline/internal/infrastructure/repository/memory"
	idgen "github.com/quantfoot/pipeline/internal/platform/id"
	"github.com/quantfoot/pipeline/internal/platform/logging"
	"github.com/quantfoot/pipeline/internal/usecase"
)

const testJobToken = "test-token"

type fixedMerger struct{}

func (fixedMerger) Merge(context.Context) (usecase.MergeResult, error) {
	return usecase.MergeResult{Success: true, Received: 3, Resolved: 3}, nil
}

type envelope[T any] struct {
	APIVersion string `json:"apiVersion"`
	Data       T      `json:"data"`
	Error      *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	fixtures := memory.NewFixtureRepository(memory.SeedFixtures(time.Now()))
	teams := memory.NewTeamRepository(memory.SeedTeams())
	players := memory.NewPlayerRepository(memory.SeedPlayers())
	pipeline := usecase.NewPipelineService(nil, nil, nil, fixedMerger{}, memory.NewPipelineRunRepository(),
		idgen.Static("run-http"), usecase.PipelineConfig{MergeEnabled: true}, logging.NewNop())

	handler := NewHandler(
		usecase.NewFixtureService(fixtures, nil),
		usecase.NewTeamService(teams, players, nil),
		usecase.NewPlayerService(players, nil),
		pipeline,
		logging.NewNop(),
	)
	return NewRouter(handler, logging.NewNop(), nil, testJobToken)
}

func doRequest(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()

	var out envelope[T]
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRouter_Healthz(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeEnvelope[map[string]string](t, rec)
	assert.Equal(t, "ok", body.Data["status"])
}

func TestRouter_Fixtures(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/fixtures", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeEnvelope[[]fixtureDTO](t, rec)
	require.Len(t, list.Data, 2)

	rec = doRequest(t, router, http.MethodGet, "/v1/fixtures/700001", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	one := decodeEnvelope[fixtureDTO](t, rec)
	assert.Equal(t, int64(700001), one.Data.ID)
	assert.True(t, one.Data.IsFinished)
	assert.False(t, one.Data.IsLive)
	assert.Equal(t, "HOME", one.Data.Result)
	require.NotNil(t, one.Data.Venue)
	assert.Equal(t, "Dockside Park", one.Data.Venue.Name)
	require.NotNil(t, one.Data.Score.Total)
	assert.Equal(t, 3, *one.Data.Score.Total)

	rec = doRequest(t, router, http.MethodGet, "/v1/fixtures?status=finished", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	finished := decodeEnvelope[[]fixtureDTO](t, rec)
	require.Len(t, finished.Data, 1)
	assert.Equal(t, int64(700001), finished.Data[0].ID)

	rec = doRequest(t, router, http.MethodGet, "/v1/fixtures/team/6654", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	byTeam := decodeEnvelope[[]fixtureDTO](t, rec)
	assert.Len(t, byTeam.Data, 2)

	rec = doRequest(t, router, http.MethodGet, "/v1/fixtures/live", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	live := decodeEnvelope[[]fixtureDTO](t, rec)
	assert.Empty(t, live.Data)
}

func TestRouter_FixtureErrors(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "missing fixture", path: "/v1/fixtures/1", status: http.StatusNotFound},
		{name: "non numeric id", path: "/v1/fixtures/abc", status: http.StatusBadRequest},
		{name: "bad date", path: "/v1/fixtures/date/2024-13-45", status: http.StatusBadRequest},
		{name: "unknown status group", path: "/v1/fixtures?status=postponed", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodGet, tt.path, "", nil)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decodeEnvelope[any](t, rec)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.status, body.Error.Code)
		})
	}
}

func TestRouter_TeamsAndPlayers(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/teams?country=england", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	teams := decodeEnvelope[[]teamDTO](t, rec)
	assert.Len(t, teams.Data, 2)

	rec = doRequest(t, router, http.MethodGet, "/v1/teams?name=harb", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	search := decodeEnvelope[[]teamDTO](t, rec)
	require.Len(t, search.Data, 1)
	assert.Equal(t, "Harbour City", search.Data[0].Name)

	rec = doRequest(t, router, http.MethodGet, "/v1/teams/2184/players", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	squad := decodeEnvelope[[]playerDTO](t, rec)
	require.Len(t, squad.Data, 4)
	assert.Equal(t, "Goalkeeper", squad.Data[0].Position)
	assert.Equal(t, "Attacker", squad.Data[3].Position)

	rec = doRequest(t, router, http.MethodGet, "/v1/teams/1/players", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/v1/players/90102", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	one := decodeEnvelope[playerDTO](t, rec)
	assert.Equal(t, "Ari Wing", one.Data.Name)
	assert.Equal(t, int64(6654), one.Data.TeamID)
}

func TestRouter_PipelineRequiresToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/internal/pipeline/runs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/v1/internal/pipeline/runs", "", map[string]string{"X-Internal-Job-Token": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_TriggerPipelineRun(t *testing.T) {
	router := newTestRouter(t)
	auth := map[string]string{"X-Internal-Job-Token": testJobToken}

	rec := doRequest(t, router, http.MethodPost, "/v1/internal/pipeline/runs", `{"skip_extract":true,"skip_transform":true}`, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeEnvelope[usecase.PipelineResult](t, rec)
	assert.Equal(t, "run-http", result.Data.RunID)
	assert.Equal(t, "succeeded", string(result.Data.Status))
	require.NotNil(t, result.Data.Merge)
	assert.Equal(t, 3, result.Data.Merge.Resolved)

	rec = doRequest(t, router, http.MethodGet, "/v1/internal/pipeline/runs/run-http", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	run := decodeEnvelope[pipelineRunDTO](t, rec)
	assert.Equal(t, "http", run.Data.Trigger)
	assert.Equal(t, "succeeded", run.Data.Status)
	assert.NotNil(t, run.Data.FinishedAt)

	rec = doRequest(t, router, http.MethodGet, "/v1/internal/pipeline/runs?limit=5", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	runs := decodeEnvelope[[]pipelineRunDTO](t, rec)
	assert.Len(t, runs.Data, 1)

	rec = doRequest(t, router, http.MethodGet, "/v1/internal/pipeline/runs/missing", "", auth)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_TriggerPipelineRunRejectsBadBody(t *testing.T) {
	router := newTestRouter(t)
	auth := map[string]string{"X-Internal-Job-Token": testJobToken}

	rec := doRequest(t, router, http.MethodPost, "/v1/internal/pipeline/runs", `{"skip_everything":true}`, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/v1/internal/pipeline/runs", `{"models":[""]}`, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/v1/internal/pipeline/runs", `{"skip_extract":true,"skip_transform":true,"skip_merge":true}`, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
