// Package piececache provides a local badger-backed piece store and a
// retriever that serves cache hits before consulting the rest of the
// retrieval chain.
package piececache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-cid"

	"github.com/warmstorage/client-backend/interfaces"
)

// ErrCacheMiss is returned by Store.Get when the piece is not cached.
var ErrCacheMiss = errors.New("piece not in cache")

// Store is a local piece cache keyed by piece CID.
type Store struct {
	db  *badger.DB
	log *slog.Logger
}

// Open opens (or creates) a cache database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening piece cache at %s: %w", path, err)
	}
	return &Store{db: db, log: logger}, nil
}

// Get returns the cached payload for the piece, or ErrCacheMiss.
func (s *Store) Get(pieceCID cid.Cid) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pieceCID.Bytes())
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading piece %s from cache: %w", pieceCID, err)
	}
	return data, nil
}

// Put stores the payload for the piece. Content addressing makes overwrites
// idempotent.
func (s *Store) Put(pieceCID cid.Cid, data []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(pieceCID.Bytes(), data)
	})
	if err != nil {
		return fmt.Errorf("caching piece %s: %w", pieceCID, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CachingRetriever is the head link of a retrieval chain: hits are served
// locally, misses delegate to the next retriever, and successful fetches are
// written back to the cache.
type CachingRetriever struct {
	store *Store
	next  interfaces.PieceRetriever
	log   *slog.Logger
}

// NewCachingRetriever creates the cache link. next should not be nil - a
// cache cannot discover candidates on its own; without a next link every
// miss reports interfaces.ErrNoCandidates.
func NewCachingRetriever(store *Store, next interfaces.PieceRetriever, logger *slog.Logger) *CachingRetriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingRetriever{store: store, next: next, log: logger}
}

// FetchPiece implements interfaces.PieceRetriever.
func (r *CachingRetriever) FetchPiece(ctx context.Context, pieceCID cid.Cid, client common.Address, opts *interfaces.FetchOptions) ([]byte, error) {
	data, err := r.store.Get(pieceCID)
	if err == nil {
		r.log.Debug("Served piece from local cache",
			slog.String("piece_cid", pieceCID.String()),
			slog.Int("size", len(data)))
		return data, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		r.log.Warn("Piece cache read failed",
			slog.String("piece_cid", pieceCID.String()),
			"err", err)
	}

	if r.next == nil {
		return nil, interfaces.ErrNoCandidates
	}

	data, err = r.next.FetchPiece(ctx, pieceCID, client, opts)
	if err != nil {
		return nil, err
	}

	// Write-back is best effort; a full disk must not fail the fetch.
	if putErr := r.store.Put(pieceCID, data); putErr != nil {
		r.log.Warn("Failed to cache fetched piece",
			slog.String("piece_cid", pieceCID.String()),
			"err", putErr)
	}
	return data, nil
}
