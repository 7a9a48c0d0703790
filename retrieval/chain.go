package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-cid"
	"github.com/warmstorage/client-backend/interfaces"
)

// ChainRetriever resolves a piece against the providers registered in the
// service contract. It assembles the candidate set from on-chain state, races
// one probe per candidate, and hands over to the next retriever in the chain
// when it is exhausted. The next link is set at construction and immutable.
type ChainRetriever struct {
	registry interfaces.ProviderRegistry
	prober   interfaces.PieceProber
	next     interfaces.PieceRetriever
	log      *slog.Logger
}

// NewChainRetriever creates a retriever backed by the given registry and
// prober. next may be nil, making this the last link of the chain. A nil
// logger defaults to slog.Default.
func NewChainRetriever(registry interfaces.ProviderRegistry, prober interfaces.PieceProber, next interfaces.PieceRetriever, logger *slog.Logger) *ChainRetriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChainRetriever{
		registry: registry,
		prober:   prober,
		next:     next,
		log:      logger,
	}
}

// FetchPiece implements interfaces.PieceRetriever.
func (r *ChainRetriever) FetchPiece(ctx context.Context, pieceCID cid.Cid, client common.Address, opts *interfaces.FetchOptions) ([]byte, error) {
	start := time.Now()

	candidates := r.assembleCandidates(ctx, pieceCID, client, opts)
	if len(candidates) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return r.fallback(ctx, pieceCID, client, opts, interfaces.ErrNoCandidates)
	}

	tasks := make([]func(context.Context) ([]byte, error), 0, len(candidates))
	for _, candidate := range candidates {
		tasks = append(tasks, r.probeTask(candidate))
	}

	data, err := raceFirstSuccess(ctx, tasks)
	if err == nil {
		r.log.Info("Fetched piece from provider network",
			slog.String("piece_cid", pieceCID.String()),
			slog.Int("candidates", len(candidates)),
			slog.Duration("duration", time.Since(start)))
		return data, nil
	}

	// External cancellation is an abort, not an exhausted candidate set.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	r.log.Warn("All retrieval candidates failed",
		slog.String("piece_cid", pieceCID.String()),
		slog.Int("candidates", len(candidates)),
		"err", err)
	return r.fallback(ctx, pieceCID, client, opts, fmt.Errorf("%w: %w", interfaces.ErrAllRetrievalsFailed, err))
}

// probeTask builds one independently cancellable unit of work: confirm the
// candidate holds the piece, then download it.
func (r *ChainRetriever) probeTask(candidate interfaces.RetrievalCandidate) func(context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		if err := r.prober.ProbeExistence(ctx, candidate.Provider, candidate.PieceCID); err != nil {
			return nil, err
		}
		return r.prober.DownloadPiece(ctx, candidate.Provider, candidate.PieceCID)
	}
}

// assembleCandidates gathers the providers worth probing for the piece. All
// lookup failures degrade to a smaller (possibly empty) candidate set; one
// stale entry must not block retrieval from healthy providers.
func (r *ChainRetriever) assembleCandidates(ctx context.Context, pieceCID cid.Cid, client common.Address, opts *interfaces.FetchOptions) []interfaces.RetrievalCandidate {
	if opts != nil && opts.ProviderAddress != (common.Address{}) {
		provider, err := r.registry.ProviderByAddress(ctx, opts.ProviderAddress)
		if err != nil {
			// The data set may reference a provider that has since been
			// deregistered; fall through to the next retriever silently.
			r.log.Debug("Requested provider could not be resolved",
				slog.String("provider_address", opts.ProviderAddress.Hex()),
				"err", err)
			return nil
		}
		return []interfaces.RetrievalCandidate{{Provider: provider, PieceCID: pieceCID}}
	}

	dataSets, err := r.registry.ClientDataSets(ctx, client)
	if err != nil {
		r.log.Warn("Failed to list client data sets",
			slog.String("client", client.Hex()),
			"err", err)
		return nil
	}

	var candidates []interfaces.RetrievalCandidate
	seen := make(map[interfaces.ProviderID]bool)
	for _, ds := range dataSets {
		// A data set with zero pieces cannot hold the requested piece.
		if !ds.Live || ds.ActivePieceCount == 0 {
			continue
		}
		if seen[ds.ProviderID] {
			continue
		}

		provider, err := r.registry.ProviderByID(ctx, ds.ProviderID)
		if err != nil {
			r.log.Debug("Skipping data set with unresolvable provider",
				slog.Uint64("data_set_id", uint64(ds.ID)),
				slog.Uint64("provider_id", uint64(ds.ProviderID)),
				"err", err)
			continue
		}

		seen[ds.ProviderID] = true
		candidates = append(candidates, interfaces.RetrievalCandidate{Provider: provider, PieceCID: pieceCID})
	}
	return candidates
}

// fallback delegates to the next retriever if one is configured, otherwise
// surfaces the typed failure.
func (r *ChainRetriever) fallback(ctx context.Context, pieceCID cid.Cid, client common.Address, opts *interfaces.FetchOptions, cause error) ([]byte, error) {
	if r.next == nil {
		return nil, cause
	}
	r.log.Debug("Delegating to next retriever",
		slog.String("piece_cid", pieceCID.String()),
		"cause", cause)
	return r.next.FetchPiece(ctx, pieceCID, client, opts)
}
