package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lox/pokerequity/analysis"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// handleWebSocket serves a connection on which the client sends calculation
// requests one at a time. Each request gets progress messages followed by
// exactly one result or error. Closing the connection cancels the running
// calculation.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to upgrade connection")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	logger := s.logger.With().Str("request_id", RequestID(r.Context())).Logger()
	logger.Debug().Str("remote_addr", r.RemoteAddr).Msg("Client connected")

	requests := make(chan []byte)
	go func() {
		defer close(requests)
		defer cancel()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Debug().Err(err).Msg("Read failed")
				}
				return
			}
			select {
			case requests <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	for data := range requests {
		id := uuid.NewString()
		var req StreamRequest
		if err := json.Unmarshal(data, &req); err != nil {
			err = fmt.Errorf("%w: %w", errInvalidRequest, err)
			if werr := s.writeStream(conn, errorMessage(id, err)); werr != nil {
				return
			}
			continue
		}
		if err := s.stream(ctx, conn, id, req); err != nil {
			logger.Debug().Err(err).Str("stream_id", id).Msg("Stream ended")
			return
		}
	}
	logger.Debug().Msg("Client disconnected")
}

// stream runs one request and forwards its progress. It returns an error only
// when writing to the connection fails.
func (s *Server) stream(ctx context.Context, conn *websocket.Conn, id string, req StreamRequest) error {
	progress := make(chan StreamMessage, 1)
	var mu sync.Mutex
	var last time.Time
	lastDone := 0
	report := func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		// Workers finish out of order; drop updates that move backwards.
		if done <= lastDone {
			return
		}
		now := s.clock.Now()
		if done < total && s.limits.ProgressInterval > 0 && now.Sub(last) < s.limits.ProgressInterval {
			return
		}
		last, lastDone = now, done
		// Keep only the latest update when the writer is behind.
		select {
		case <-progress:
		default:
		}
		progress <- StreamMessage{Type: MessageProgress, ID: id, Done: done, Total: total}
	}

	type outcome struct {
		resp *EquityResponse
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		resp, err := s.runStream(ctx, id, req, report)
		done <- outcome{resp: resp, err: err}
	}()

	for {
		select {
		case msg := <-progress:
			if err := s.writeStream(conn, msg); err != nil {
				return err
			}
		case out := <-done:
			select {
			case msg := <-progress:
				if err := s.writeStream(conn, msg); err != nil {
					return err
				}
			default:
			}
			if out.err != nil {
				return s.writeStream(conn, errorMessage(id, out.err))
			}
			return s.writeStream(conn, StreamMessage{Type: MessageResult, ID: id, Result: out.resp})
		}
	}
}

func (s *Server) runStream(ctx context.Context, id string, req StreamRequest, progress analysis.ProgressFunc) (*EquityResponse, error) {
	switch strings.ToLower(strings.TrimSpace(req.Kind)) {
	case "hands":
		return s.runHands(ctx, id, req.hands(), progress)
	case "ranges":
		return s.runRanges(ctx, id, req.ranges(), progress)
	default:
		return nil, fmt.Errorf("%w: kind must be hands or ranges, got %q", errInvalidRequest, req.Kind)
	}
}

func (s *Server) writeStream(conn *websocket.Conn, msg StreamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

func errorMessage(id string, err error) StreamMessage {
	_, code := classify(err)
	return StreamMessage{Type: MessageError, ID: id, Error: &ErrorResponse{Error: err.Error(), Code: code}}
}
