package devnet

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/calderalabs/starkgate/pkg/errors"
	"github.com/calderalabs/starkgate/pkg/logging"
)

// requestIDHeader carries the per-request id assigned by the middleware.
const requestIDHeader = "X-Request-Id"

// Handler builds the HTTP surface of the simulated sequencer: the feeder
// gateway read endpoints under /feeder_gateway and the write endpoint
// under /gateway.
func (s *Sequencer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.recoverPanics)
	r.Use(s.logRequests)

	r.Route("/feeder_gateway", func(r chi.Router) {
		r.Get("/get_contract_addresses", s.handleGetContractAddresses)
		r.Post("/call_contract", s.handleCallContract)
		r.Get("/get_block", s.handleGetBlock)
		r.Get("/get_code", s.handleGetCode)
		r.Get("/get_storage_at", s.handleGetStorageAt)
		r.Get("/get_transaction_status", s.handleGetTransactionStatus)
		r.Get("/get_transaction", s.handleGetTransaction)
	})

	r.Route("/gateway", func(r chi.Router) {
		r.Post("/add_transaction", s.handleAddTransaction)
	})

	return r
}

// requestID tags every request with a UUID for log correlation.
func (s *Sequencer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// recoverPanics converts a handler panic into a JSON error response
// instead of a dropped connection.
func (s *Sequencer) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.ComponentError(logging.ComponentDevnet, "handler panic",
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
				)
				apperrors.WriteHTTPError(w, fmt.Errorf("internal error: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// logRequests logs each exchange with its latency.
func (s *Sequencer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.ComponentDebug(logging.ComponentDevnet, "request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", w.Header().Get(requestIDHeader)),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
