package interfaces

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-cid"
)

var (
	// ErrPieceNotFound is returned by a prober when the provider reports it
	// does not currently hold the requested piece.
	ErrPieceNotFound = errors.New("piece not found on provider")

	// ErrNoCandidates is returned by the last retriever in a chain when no
	// viable retrieval candidate could be discovered at all.
	ErrNoCandidates = errors.New("no retrieval candidates discovered")

	// ErrAllRetrievalsFailed is returned by the last retriever in a chain when
	// every discovered candidate was attempted and failed. The wrapping error
	// carries the aggregate of the individual failures.
	ErrAllRetrievalsFailed = errors.New("all retrieval candidates failed")
)

// FetchOptions narrows a single FetchPiece call.
type FetchOptions struct {
	// ProviderAddress forces retrieval from the provider registered under this
	// payee address. The zero address means no restriction. A provider that
	// cannot be resolved (deregistered since the data set referenced it) is
	// treated as "no candidates", not as an immediate error, so the chain can
	// fall through silently.
	ProviderAddress common.Address
}

// PieceRetriever fetches a piece's bytes for a client. Implementations may
// hold an optional next retriever to delegate to when they are exhausted;
// the link is set at construction and immutable afterwards.
type PieceRetriever interface {
	// FetchPiece returns the piece payload from whichever source succeeded
	// first. Cancelling ctx stops all in-flight attempts. opts may be nil.
	FetchPiece(ctx context.Context, pieceCID cid.Cid, client common.Address, opts *FetchOptions) ([]byte, error)
}

// PieceProber performs the two per-candidate retrieval steps against a
// provider's service endpoint. Both steps must honor ctx cancellation; a
// probe cancelled mid-flight reports a plain error, never panics.
type PieceProber interface {
	// ProbeExistence confirms the provider currently holds the piece.
	// Returns ErrPieceNotFound when the provider reports absence.
	ProbeExistence(ctx context.Context, provider ProviderInfo, pieceCID cid.Cid) error

	// DownloadPiece fetches the raw piece bytes from the provider.
	DownloadPiece(ctx context.Context, provider ProviderInfo, pieceCID cid.Cid) ([]byte, error)
}
