package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/lox/pokerequity/analysis"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidNotation     = "invalid_notation"
	CodeInvalidRangeToken   = "invalid_range_token"
	CodeEmptyRange          = "empty_range"
	CodeInvalidBoard        = "invalid_board"
	CodeNoValidCombinations = "no_valid_combinations"
	CodeInvalidRequest      = "invalid_request"
	CodeUnknownPreset       = "unknown_preset"
	CodeTimeout             = "timeout"
	CodeInternal            = "internal"
)

var (
	errInvalidRequest = errors.New("invalid request")
	errUnknownPreset  = errors.New("unknown preset")
)

// HandsRequest asks for the equity of one starting hand against another.
type HandsRequest struct {
	HandA  string `json:"hand_a"`
	HandB  string `json:"hand_b"`
	Trials int    `json:"trials,omitempty"`
	Seed   *int64 `json:"seed,omitempty"`
}

// RangesRequest asks for the equity of one range against another. A position
// name, when set, replaces the corresponding range.
type RangesRequest struct {
	RangeA    string `json:"range_a"`
	RangeB    string `json:"range_b"`
	PositionA string `json:"position_a,omitempty"`
	PositionB string `json:"position_b,omitempty"`
	Board     string `json:"board,omitempty"`
	Trials    int    `json:"trials,omitempty"`
	Seed      *int64 `json:"seed,omitempty"`
}

// StreamRequest is the message a websocket client sends. Kind is "hands" or
// "ranges" and selects which of the remaining fields apply.
type StreamRequest struct {
	Kind      string `json:"kind"`
	HandA     string `json:"hand_a,omitempty"`
	HandB     string `json:"hand_b,omitempty"`
	RangeA    string `json:"range_a,omitempty"`
	RangeB    string `json:"range_b,omitempty"`
	PositionA string `json:"position_a,omitempty"`
	PositionB string `json:"position_b,omitempty"`
	Board     string `json:"board,omitempty"`
	Trials    int    `json:"trials,omitempty"`
	Seed      *int64 `json:"seed,omitempty"`
}

func (r StreamRequest) hands() HandsRequest {
	return HandsRequest{HandA: r.HandA, HandB: r.HandB, Trials: r.Trials, Seed: r.Seed}
}

func (r StreamRequest) ranges() RangesRequest {
	return RangesRequest{
		RangeA:    r.RangeA,
		RangeB:    r.RangeB,
		PositionA: r.PositionA,
		PositionB: r.PositionB,
		Board:     r.Board,
		Trials:    r.Trials,
		Seed:      r.Seed,
	}
}

// EquityResponse is the JSON form of analysis.EquityResult.
type EquityResponse struct {
	ID            string  `json:"id"`
	Kind          string  `json:"kind"`
	Seed          int64   `json:"seed"`
	EquityA       float64 `json:"equity_a"`
	EquityB       float64 `json:"equity_b"`
	WinsA         int     `json:"wins_a"`
	WinsB         int     `json:"wins_b"`
	Ties          int     `json:"ties"`
	Trials        int     `json:"trials"`
	HandsA        int     `json:"hands_a,omitempty"`
	HandsB        int     `json:"hands_b,omitempty"`
	PairsSampled  int     `json:"pairs_sampled,omitempty"`
	CombosSampled int     `json:"combos_sampled,omitempty"`
	CILower       float64 `json:"ci_lower"`
	CIUpper       float64 `json:"ci_upper"`
	ElapsedMS     int64   `json:"elapsed_ms"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HandInfo describes one parsed starting hand.
type HandInfo struct {
	Hand   string `json:"hand"`
	Name   string `json:"name"`
	Combos int    `json:"combos"`
}

// NotationResponse describes a parsed hand or range.
type NotationResponse struct {
	Notation string     `json:"notation"`
	Hands    []HandInfo `json:"hands"`
	Combos   int        `json:"combos"`
}

// PresetInfo describes one named range.
type PresetInfo struct {
	Name   string `json:"name"`
	Range  string `json:"range"`
	Hands  int    `json:"hands"`
	Combos int    `json:"combos"`
}

// StreamMessage is sent from server to websocket client.
type StreamMessage struct {
	Type   string          `json:"type"`
	ID     string          `json:"id"`
	Done   int             `json:"done,omitempty"`
	Total  int             `json:"total,omitempty"`
	Result *EquityResponse `json:"result,omitempty"`
	Error  *ErrorResponse  `json:"error,omitempty"`
}

// Stream message types.
const (
	MessageProgress = "progress"
	MessageResult   = "result"
	MessageError    = "error"
)

func newEquityResponse(id, kind string, seed int64, r analysis.EquityResult) *EquityResponse {
	lower, upper := r.ConfidenceInterval()
	return &EquityResponse{
		ID:            id,
		Kind:          kind,
		Seed:          seed,
		EquityA:       r.EquityA,
		EquityB:       r.EquityB,
		WinsA:         r.WinsA,
		WinsB:         r.WinsB,
		Ties:          r.Ties,
		Trials:        r.Trials,
		HandsA:        r.HandsA,
		HandsB:        r.HandsB,
		PairsSampled:  r.PairsSampled,
		CombosSampled: r.CombosSampled,
		CILower:       lower,
		CIUpper:       upper,
	}
}

// classify maps an error onto an HTTP status and error code. Range token
// errors are checked before notation errors because they wrap both.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, analysis.ErrInvalidRangeToken):
		return http.StatusBadRequest, CodeInvalidRangeToken
	case errors.Is(err, analysis.ErrInvalidNotation):
		return http.StatusBadRequest, CodeInvalidNotation
	case errors.Is(err, analysis.ErrEmptyRange):
		return http.StatusBadRequest, CodeEmptyRange
	case errors.Is(err, analysis.ErrInvalidBoard):
		return http.StatusBadRequest, CodeInvalidBoard
	case errors.Is(err, analysis.ErrNoValidCombinations):
		return http.StatusBadRequest, CodeNoValidCombinations
	case errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, errUnknownPreset):
		return http.StatusNotFound, CodeUnknownPreset
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, CodeTimeout
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
