package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fenrir-eth/fenrir/engineapi"
	"github.com/fenrir-eth/fenrir/internal/log"
	"github.com/rs/cors"
)

// rpcRequest is a minimal JSON-RPC 2.0 envelope. This transport exists to
// demonstrate wiring the Engine API Facade behind HTTP, JWT auth, and CORS;
// it is not a general JSON-RPC server (batching, notifications, and the
// full method registry of a production node are out of scope here).
type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcResponse struct {
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	JSONRPC string          `json:"jsonrpc"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// engineHandler dispatches a small illustrative subset of Engine API
// methods over HTTP. The dispatch table mirrors the method names the
// Engine API Facade exposes; unrecognized methods return a JSON-RPC
// method-not-found error.
func engineHandler(api *engineapi.API, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeRPCError(w, nil, -32700, "parse error")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
		defer cancel()

		switch req.Method {
		case "engine_exchangeCapabilitiesV1":
			var clientMethods []string
			if len(req.Params) > 0 {
				_ = json.Unmarshal(req.Params[0], &clientMethods)
			}
			result, err := api.ExchangeCapabilities(ctx, clientMethods)
			respond(w, req.ID, result, err, logger)

		case "engine_getPayloadV1":
			var id engineapi.PayloadID
			if len(req.Params) > 0 {
				_ = json.Unmarshal(req.Params[0], &id)
			}
			result, err := api.GetPayloadV1(ctx, id)
			respond(w, req.ID, result, err, logger)

		case "engine_getPayloadV2":
			var id engineapi.PayloadID
			if len(req.Params) > 0 {
				_ = json.Unmarshal(req.Params[0], &id)
			}
			result, err := api.GetPayloadV2(ctx, id)
			respond(w, req.ID, result, err, logger)

		case "engine_newPayloadV1":
			var payload engineapi.ExecutionPayload
			if len(req.Params) > 0 {
				_ = json.Unmarshal(req.Params[0], &payload)
			}
			result, err := api.NewPayloadV1(ctx, &payload)
			respond(w, req.ID, result, err, logger)

		case "engine_newPayloadV2":
			var payload engineapi.ExecutionPayload
			if len(req.Params) > 0 {
				_ = json.Unmarshal(req.Params[0], &payload)
			}
			result, err := api.NewPayloadV2(ctx, &payload)
			respond(w, req.ID, result, err, logger)

		case "engine_getPayloadBodiesByRangeV1":
			var start, count uint64
			if len(req.Params) > 1 {
				_ = json.Unmarshal(req.Params[0], &start)
				_ = json.Unmarshal(req.Params[1], &count)
			}
			result, err := api.GetPayloadBodiesByRangeV1(ctx, start, count)
			respond(w, req.ID, result, err, logger)

		case "engine_exchangeTransitionConfigurationV1":
			var cfg engineapi.TransitionConfiguration
			if len(req.Params) > 0 {
				_ = json.Unmarshal(req.Params[0], &cfg)
			}
			result, err := api.ExchangeTransitionConfigurationV1(ctx, cfg)
			respond(w, req.ID, result, err, logger)

		default:
			writeRPCError(w, req.ID, -32601, "method not found: "+req.Method)
		}
	})
}

func respond(w http.ResponseWriter, id json.RawMessage, result any, err error, logger *log.Logger) {
	if err != nil {
		logger.Warn("engine api call failed", "error", err)
		writeRPCError(w, id, -32000, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rpcResponse{ID: id, Result: result, JSONRPC: "2.0"})
}

func writeRPCError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rpcResponse{
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
		JSONRPC: "2.0",
	})
}

// newServer builds the HTTP server for the authenticated Engine API
// endpoint: CORS, then JWT auth, then dispatch.
func newServer(addr string, api *engineapi.API, secret []byte, metricsHandler http.Handler, logger *log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/", jwtAuth(secret, engineHandler(api, logger)))
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost"},
		AllowedMethods: []string{http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return &http.Server{
		Addr:              addr,
		Handler:           corsHandler.Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
