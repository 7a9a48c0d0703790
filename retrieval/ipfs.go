package retrieval

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-cid"
	shell "github.com/ipfs/go-ipfs-api"
	"github.com/warmstorage/client-backend/interfaces"
)

// IPFSRetriever fetches pieces that have been mirrored to IPFS. It is meant
// as a fallback link behind the provider network: the piece CID is resolved
// directly against an IPFS node.
type IPFSRetriever struct {
	shell *shell.Shell
	next  interfaces.PieceRetriever
	log   *slog.Logger
}

// NewIPFSRetriever creates a retriever connected to the IPFS API at apiAddr
// (host:port). next may be nil, making this the last link of the chain.
func NewIPFSRetriever(apiAddr string, next interfaces.PieceRetriever, logger *slog.Logger) *IPFSRetriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &IPFSRetriever{
		shell: shell.NewShell(apiAddr),
		next:  next,
		log:   logger,
	}
}

// FetchPiece implements interfaces.PieceRetriever.
func (r *IPFSRetriever) FetchPiece(ctx context.Context, pieceCID cid.Cid, client common.Address, opts *interfaces.FetchOptions) ([]byte, error) {
	start := time.Now()

	if !r.shell.IsUp() {
		r.log.Warn("IPFS node unavailable")
		return r.fallback(ctx, pieceCID, client, opts,
			fmt.Errorf("%w: ipfs node unavailable", interfaces.ErrAllRetrievalsFailed))
	}

	reader, err := r.shell.Request("cat", pieceCID.String()).Send(ctx)
	if err != nil {
		return r.fallback(ctx, pieceCID, client, opts,
			fmt.Errorf("%w: ipfs cat: %w", interfaces.ErrAllRetrievalsFailed, err))
	}
	defer reader.Close()

	if reader.Error != nil {
		cause := error(reader.Error)
		if strings.Contains(reader.Error.Error(), "not found") {
			cause = interfaces.ErrPieceNotFound
		}
		r.log.Debug("Piece not retrievable from IPFS",
			slog.String("piece_cid", pieceCID.String()),
			"err", reader.Error)
		return r.fallback(ctx, pieceCID, client, opts,
			fmt.Errorf("%w: %w", interfaces.ErrAllRetrievalsFailed, cause))
	}

	data, err := io.ReadAll(reader.Output)
	if err != nil {
		return r.fallback(ctx, pieceCID, client, opts,
			fmt.Errorf("%w: reading from ipfs: %w", interfaces.ErrAllRetrievalsFailed, err))
	}

	r.log.Info("Fetched piece from IPFS mirror",
		slog.String("piece_cid", pieceCID.String()),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))
	return data, nil
}

func (r *IPFSRetriever) fallback(ctx context.Context, pieceCID cid.Cid, client common.Address, opts *interfaces.FetchOptions, cause error) ([]byte, error) {
	if r.next == nil {
		return nil, cause
	}
	return r.next.FetchPiece(ctx, pieceCID, client, opts)
}
