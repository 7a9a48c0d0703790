package piececache

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warmstorage/client-backend/interfaces"
)

var testPiece = cid.MustParse("bafkreidgvpkjawlxz6sffxzwgooowe5yt7i6wsyg236mfoks77nywkptdq")

func testStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := Open(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

type countingRetriever struct {
	data  []byte
	err   error
	calls int
}

func (c *countingRetriever) FetchPiece(ctx context.Context, pieceCID cid.Cid, client common.Address, opts *interfaces.FetchOptions) ([]byte, error) {
	c.calls++
	return c.data, c.err
}

func TestStore_PutGet(t *testing.T) {
	store := testStore(t)

	payload := []byte("cached piece")
	require.NoError(t, store.Put(testPiece, payload))

	data, err := store.Get(testPiece)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestStore_Miss(t *testing.T) {
	store := testStore(t)

	_, err := store.Get(testPiece)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCachingRetriever_ServesHitWithoutDelegating(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Put(testPiece, []byte("hot piece")))

	next := &countingRetriever{data: []byte("should not be used")}
	retriever := NewCachingRetriever(store, next, nil)

	data, err := retriever.FetchPiece(context.Background(), testPiece, common.Address{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("hot piece"), data)
	assert.Zero(t, next.calls)
}

func TestCachingRetriever_MissPopulatesCache(t *testing.T) {
	store := testStore(t)
	next := &countingRetriever{data: []byte("fetched piece")}
	retriever := NewCachingRetriever(store, next, nil)

	data, err := retriever.FetchPiece(context.Background(), testPiece, common.Address{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("fetched piece"), data)
	assert.Equal(t, 1, next.calls)

	// The second fetch is a cache hit; the chain is not consulted again.
	data, err = retriever.FetchPiece(context.Background(), testPiece, common.Address{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("fetched piece"), data)
	assert.Equal(t, 1, next.calls)
}

func TestCachingRetriever_MissWithoutNext(t *testing.T) {
	store := testStore(t)
	retriever := NewCachingRetriever(store, nil, nil)

	_, err := retriever.FetchPiece(context.Background(), testPiece, common.Address{}, nil)
	assert.ErrorIs(t, err, interfaces.ErrNoCandidates)
}

func TestCachingRetriever_PropagatesChainFailure(t *testing.T) {
	store := testStore(t)
	next := &countingRetriever{err: interfaces.ErrAllRetrievalsFailed}
	retriever := NewCachingRetriever(store, next, nil)

	_, err := retriever.FetchPiece(context.Background(), testPiece, common.Address{}, nil)
	assert.ErrorIs(t, err, interfaces.ErrAllRetrievalsFailed)

	// Failures must not be cached.
	_, err = store.Get(testPiece)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
