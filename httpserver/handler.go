package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-cid"

	"github.com/warmstorage/client-backend/api"
	"github.com/warmstorage/client-backend/interfaces"
	"github.com/warmstorage/client-backend/metrics"
	"github.com/warmstorage/client-backend/state"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// RequestError provides structured error information for HTTP responses.
// It includes both an HTTP status code and the underlying error.
type RequestError struct {
	// StatusCode is the HTTP status code to return.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error returns the error message from the underlying error.
func (e *RequestError) Error() string {
	return e.Err.Error()
}

// Handler processes HTTP requests for the warm-storage gateway. Piece fetches
// go through the retrieval chain, selection requests through the assembler.
type Handler struct {
	assembler *state.Assembler
	retriever interfaces.PieceRetriever
	metrics   *metrics.MetricsServer
	log       *slog.Logger
}

// NewHandler creates a new HTTP request handler with the specified
// dependencies. metricsSrv may be nil when metrics are disabled.
func NewHandler(assembler *state.Assembler, retriever interfaces.PieceRetriever, metricsSrv *metrics.MetricsServer, log *slog.Logger) *Handler {
	return &Handler{
		assembler: assembler,
		retriever: retriever,
		metrics:   metricsSrv,
		log:       log,
	}
}

func (h *Handler) countRetrieval(outcome string) {
	if h.metrics != nil {
		h.metrics.RetrievalRequests.WithLabelValues(outcome).Inc()
	}
}

func (h *Handler) countSelection(outcome string) {
	if h.metrics != nil {
		h.metrics.SelectionRequests.WithLabelValues(outcome).Inc()
	}
}

// HandleGetPiece downloads a piece through the retrieval chain.
//
// URL format: GET /api/public/piece/{piece_cid}?client=0x...&provider=0x...
//
// The client query parameter is required; provider is optional and forces the
// fetch to a single provider. The response body is the raw piece payload.
func (h *Handler) HandleGetPiece(w http.ResponseWriter, r *http.Request) {
	pieceCID, err := cid.Decode(r.PathValue("piece_cid"))
	if err != nil {
		h.countRetrieval("bad_request")
		http.Error(w, "Invalid piece CID", http.StatusBadRequest)
		return
	}

	clientHex := r.URL.Query().Get("client")
	if !common.IsHexAddress(clientHex) {
		h.countRetrieval("bad_request")
		http.Error(w, "Missing or invalid client address", http.StatusBadRequest)
		return
	}
	clientAddr := common.HexToAddress(clientHex)

	var opts *interfaces.FetchOptions
	if providerHex := r.URL.Query().Get("provider"); providerHex != "" {
		if !common.IsHexAddress(providerHex) {
			h.countRetrieval("bad_request")
			http.Error(w, "Invalid provider address", http.StatusBadRequest)
			return
		}
		opts = &interfaces.FetchOptions{ProviderAddress: common.HexToAddress(providerHex)}
	}

	data, err := h.retriever.FetchPiece(r.Context(), pieceCID, clientAddr, opts)
	if err != nil {
		h.log.Error("Piece fetch failed", "err", err,
			slog.String("piece_cid", pieceCID.String()),
			slog.String("client", clientAddr.Hex()))

		switch {
		case errors.Is(err, interfaces.ErrNoCandidates):
			h.countRetrieval("no_candidates")
			http.Error(w, "No retrieval candidates for piece", http.StatusNotFound)
		case errors.Is(err, interfaces.ErrAllRetrievalsFailed):
			h.countRetrieval("all_failed")
			http.Error(w, "All retrieval candidates failed", http.StatusBadGateway)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.countRetrieval("aborted")
			http.Error(w, "Fetch aborted", http.StatusGatewayTimeout)
		default:
			h.countRetrieval("error")
			http.Error(w, "Piece fetch failed", http.StatusInternalServerError)
		}
		return
	}

	h.countRetrieval("success")
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

// HandleSelectProviders resolves write placements for a client.
//
// URL format: POST /api/public/providers/select
//
// Request body: JSON-encoded api.SelectRequest.
// Response: JSON-encoded api.SelectResponse; an empty placement list means no
// provider could satisfy the request.
func (h *Handler) HandleSelectProviders(w http.ResponseWriter, r *http.Request) {
	var request api.SelectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&request); err != nil {
		h.countSelection("bad_request")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !common.IsHexAddress(request.Client) {
		h.countSelection("bad_request")
		http.Error(w, "Missing or invalid client address", http.StatusBadRequest)
		return
	}
	clientAddr := common.HexToAddress(request.Client)

	opts := &interfaces.ProviderSelectionOptions{Count: request.Count}
	for _, id := range request.ExcludeProviderIDs {
		opts.ExcludeProviderIDs = append(opts.ExcludeProviderIDs, interfaces.ProviderID(id))
	}

	placements, err := h.assembler.SelectWithFallback(r.Context(), clientAddr, interfaces.Metadata(request.Metadata), opts)
	if err != nil {
		h.countSelection("error")
		h.log.Error("Provider selection failed", "err", err,
			slog.String("client", clientAddr.Hex()))
		http.Error(w, "Provider selection failed", http.StatusInternalServerError)
		return
	}

	response := api.SelectResponse{Placements: make([]api.Placement, 0, len(placements))}
	for _, loc := range placements {
		response.Placements = append(response.Placements, api.PlacementFromLocation(loc))
	}

	if len(placements) == 0 {
		h.countSelection("empty")
	} else {
		h.countSelection("placed")
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
}
