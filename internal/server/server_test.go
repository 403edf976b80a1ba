package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/pokerequity/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{WithClock(quartz.NewMock(t)), WithLimits(Limits{Workers: 2})}, opts...)
	return NewServer(opts...)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func seed(v int64) *int64 { return &v }

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestHandsEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	body := HandsRequest{HandA: "AA", HandB: "KK", Trials: 5000, Seed: seed(1)}

	rec := do(t, srv, http.MethodPost, "/api/v1/equity/hands", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[EquityResponse](t, rec)

	assert.Equal(t, "hands", first.Kind)
	assert.Equal(t, int64(1), first.Seed)
	assert.Equal(t, 5000, first.Trials)
	assert.Equal(t, first.Trials, first.WinsA+first.WinsB+first.Ties)
	assert.InDelta(t, 82, first.EquityA, 4)
	assert.Less(t, first.CILower, first.EquityA)
	assert.Zero(t, first.ElapsedMS, "mock clock does not advance")
	assert.Equal(t, rec.Header().Get("X-Request-ID"), first.ID)

	second := decode[EquityResponse](t, do(t, srv, http.MethodPost, "/api/v1/equity/hands", body))
	assert.Equal(t, first.EquityA, second.EquityA)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestHandsEndpointDefaultsTrials(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, WithLimits(Limits{DefaultTrials: 1000}))
	resp := decode[EquityResponse](t, do(t, srv, http.MethodPost, "/api/v1/equity/hands", HandsRequest{HandA: "QQ", HandB: "AKs"}))
	assert.Equal(t, 1000, resp.Trials)
}

func TestRangesEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/v1/equity/ranges", RangesRequest{
		RangeA: "QQ+,AKs",
		RangeB: "TT,99,AQo",
		Board:  "2c 7d 9h",
		Trials: 2000,
		Seed:   seed(9),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[EquityResponse](t, rec)

	assert.Equal(t, "ranges", resp.Kind)
	assert.Equal(t, 4, resp.HandsA)
	assert.Equal(t, 3, resp.HandsB)
	assert.Equal(t, 12, resp.PairsSampled)
	assert.Positive(t, resp.CombosSampled)
	assert.InDelta(t, 100, resp.EquityA+resp.EquityB, 1e-9)
}

func TestRangesEndpointSamplingOptions(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, WithSimulatorOptions(analysis.WithPairCap(5), analysis.WithCombosPerPair(1)))
	rec := do(t, srv, http.MethodPost, "/api/v1/equity/ranges", RangesRequest{
		RangeA: "QQ+,AKs",
		RangeB: "TT,99,AQo",
		Trials: 1000,
		Seed:   seed(9),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[EquityResponse](t, rec)
	assert.Equal(t, 5, resp.PairsSampled)
	assert.LessOrEqual(t, resp.CombosSampled, 5)
}

func TestRangesEndpointPositions(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/v1/equity/ranges", RangesRequest{
		PositionA: "utg",
		RangeB:    "22+",
		Trials:    1000,
		Seed:      seed(2),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[EquityResponse](t, rec)
	assert.Greater(t, resp.HandsA, 10)
	assert.Equal(t, 13, resp.HandsB)
}

func TestEquityErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{"bare unpaired hand", "/api/v1/equity/hands", HandsRequest{HandA: "AK", HandB: "QQ"}, http.StatusBadRequest, CodeInvalidNotation},
		{"identical holdings", "/api/v1/equity/hands", HandsRequest{HandA: "AsKs", HandB: "AsKs"}, http.StatusBadRequest, CodeNoValidCombinations},
		{"missing hand", "/api/v1/equity/hands", HandsRequest{HandA: "AA"}, http.StatusBadRequest, CodeInvalidRequest},
		{"too many trials", "/api/v1/equity/hands", HandsRequest{HandA: "AA", HandB: "KK", Trials: 1 << 30}, http.StatusBadRequest, CodeInvalidRequest},
		{"negative trials", "/api/v1/equity/hands", HandsRequest{HandA: "AA", HandB: "KK", Trials: -1}, http.StatusBadRequest, CodeInvalidRequest},
		{"malformed json", "/api/v1/equity/hands", `{"hand_a":`, http.StatusBadRequest, CodeInvalidRequest},
		{"unknown field", "/api/v1/equity/hands", `{"hand_a":"AA","hand_b":"KK","hero":"me"}`, http.StatusBadRequest, CodeInvalidRequest},
		{"bad range token", "/api/v1/equity/ranges", RangesRequest{RangeA: "AA,ZZ", RangeB: "KK"}, http.StatusBadRequest, CodeInvalidRangeToken},
		{"suited pair token", "/api/v1/equity/ranges", RangesRequest{RangeA: "AAs", RangeB: "KK"}, http.StatusBadRequest, CodeInvalidRangeToken},
		{"empty range", "/api/v1/equity/ranges", RangesRequest{RangeA: " , ", RangeB: "KK"}, http.StatusBadRequest, CodeEmptyRange},
		{"bad board", "/api/v1/equity/ranges", RangesRequest{RangeA: "AA", RangeB: "KK", Board: "As Kd 2c 7h 9d 3c"}, http.StatusBadRequest, CodeInvalidBoard},
		{"blocked by board", "/api/v1/equity/ranges", RangesRequest{RangeA: "AhAd", RangeB: "KK", Board: "Ah 7c 2d"}, http.StatusBadRequest, CodeNoValidCombinations},
		{"unknown position", "/api/v1/equity/ranges", RangesRequest{PositionA: "dealer", RangeB: "KK"}, http.StatusNotFound, CodeUnknownPreset},
	}

	srv := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := do(t, srv, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t), http.MethodGet, "/api/v1/equity/hands", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNotationEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp := decode[NotationResponse](t, do(t, srv, http.MethodGet, "/api/v1/hands/AKs", nil))
	require.Len(t, resp.Hands, 1)
	assert.Equal(t, HandInfo{Hand: "AKs", Name: "AK suited", Combos: 4}, resp.Hands[0])

	resp = decode[NotationResponse](t, do(t, srv, http.MethodGet, "/api/v1/hands/TT+,AsKh", nil))
	assert.Len(t, resp.Hands, 6)
	assert.Equal(t, 31, resp.Combos)
	assert.Equal(t, "Pocket Ts", resp.Hands[0].Name)

	rec := do(t, srv, http.MethodGet, "/api/v1/hands/ZZ", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeInvalidRangeToken, decode[ErrorResponse](t, rec).Code)
}

type stubPresets map[string]string

func (p stubPresets) Preset(name string) (string, bool) {
	r, ok := p[name]
	return r, ok
}

func (p stubPresets) PresetNames() []string {
	return []string{"tight", "loose"}
}

func TestPresetsEndpoint(t *testing.T) {
	t.Parallel()

	builtin := decode[[]PresetInfo](t, do(t, newTestServer(t), http.MethodGet, "/api/v1/presets", nil))
	require.Len(t, builtin, 9)
	assert.Equal(t, "UTG", builtin[0].Name)
	assert.Positive(t, builtin[0].Combos)

	srv := newTestServer(t, WithPresets(stubPresets{"tight": "QQ+", "loose": "22+,A2s+"}))
	custom := decode[[]PresetInfo](t, do(t, srv, http.MethodGet, "/api/v1/presets", nil))
	require.Len(t, custom, 2)
	assert.Equal(t, PresetInfo{Name: "tight", Range: "QQ+", Hands: 3, Combos: 18}, custom[0])

	one := decode[PresetInfo](t, do(t, srv, http.MethodGet, "/api/v1/presets/loose", nil))
	assert.Equal(t, 25, one.Hands)

	rec := do(t, srv, http.MethodGet, "/api/v1/presets/BTN", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	srv := NewServer(WithClock(clock), WithLimits(Limits{RequestTimeout: time.Second, MaxTrials: 1 << 30, Workers: 1}))

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- do(t, srv, http.MethodPost, "/api/v1/equity/hands", HandsRequest{HandA: "AA", HandB: "KK", Trials: 1 << 30})
	}()

	for {
		select {
		case rec := <-done:
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Equal(t, CodeTimeout, decode[ErrorResponse](t, rec).Code)
			return
		case <-ctx.Done():
			t.Fatal("request did not time out")
		default:
		}
		if d, ok := clock.Peek(); ok {
			clock.Advance(d).MustWait(ctx)
		} else {
			time.Sleep(time.Millisecond)
		}
	}
}
