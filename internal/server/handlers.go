package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lox/pokerequity/analysis"
)

const maxBodyBytes = 64 << 10

type requestIDKey struct{}

// RequestID returns the ID assigned to the request by the logging middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack is required by the websocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := s.clock.Now()
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))

		s.logger.Debug().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", s.clock.Since(start)).
			Msg("Handled request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHands(w http.ResponseWriter, r *http.Request) {
	var req HandsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.runHands(r.Context(), RequestID(r.Context()), req, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRanges(w http.ResponseWriter, r *http.Request) {
	var req RangesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.runRanges(r.Context(), RequestID(r.Context()), req, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNotation(w http.ResponseWriter, r *http.Request) {
	notation := mux.Vars(r)["notation"]
	rng, err := analysis.ParseRange(notation)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, describeRange(notation, rng))
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	names := s.presets.PresetNames()
	out := make([]PresetInfo, 0, len(names))
	for _, name := range names {
		info, err := s.presetInfo(name)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	info, err := s.presetInfo(mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) presetInfo(name string) (PresetInfo, error) {
	notation, ok := s.presets.Preset(name)
	if !ok {
		return PresetInfo{}, fmt.Errorf("%w: %q", errUnknownPreset, name)
	}
	rng, err := analysis.ParseRange(notation)
	if err != nil {
		return PresetInfo{}, fmt.Errorf("preset %s: %w", name, err)
	}
	return PresetInfo{Name: name, Range: notation, Hands: rng.Len(), Combos: rng.ComboCount()}, nil
}

func describeRange(notation string, rng *analysis.Range) NotationResponse {
	hands := rng.Hands()
	resp := NotationResponse{
		Notation: notation,
		Hands:    make([]HandInfo, len(hands)),
		Combos:   rng.ComboCount(),
	}
	for i, h := range hands {
		resp.Hands[i] = HandInfo{Hand: h.String(), Name: h.DisplayName(), Combos: h.ComboCount()}
	}
	return resp
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	event := s.logger.Debug()
	if status >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Err(err).
		Str("request_id", RequestID(r.Context())).
		Str("code", code).
		Msg("Request failed")
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // client may have gone away
}
