package retrieval

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warmstorage/client-backend/interfaces"
)

func TestHTTPProber_ProbeExistence(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("pieceCid")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	prober := NewHTTPProber(nil, testLogger())
	provider := interfaces.ProviderInfo{ID: 1, ServiceURL: server.URL}

	err := prober.ProbeExistence(context.Background(), provider, testPiece)
	require.NoError(t, err)
	assert.Equal(t, "/pdp/piece", gotPath)
	assert.Equal(t, testPiece.String(), gotQuery)
}

func TestHTTPProber_ProbeExistence_Absent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	prober := NewHTTPProber(nil, testLogger())
	provider := interfaces.ProviderInfo{ID: 1, ServiceURL: server.URL}

	err := prober.ProbeExistence(context.Background(), provider, testPiece)
	assert.ErrorIs(t, err, interfaces.ErrPieceNotFound)
}

func TestHTTPProber_DownloadPiece(t *testing.T) {
	payload := []byte("raw piece bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fmt.Sprintf("/piece/%s", testPiece), r.URL.Path)
		w.Write(payload)
	}))
	defer server.Close()

	prober := NewHTTPProber(nil, testLogger())
	provider := interfaces.ProviderInfo{ID: 2, ServiceURL: server.URL + "/"}

	data, err := prober.DownloadPiece(context.Background(), provider, testPiece)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestHTTPProber_DownloadPiece_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	prober := NewHTTPProber(nil, testLogger())
	provider := interfaces.ProviderInfo{ID: 2, ServiceURL: server.URL}

	_, err := prober.DownloadPiece(context.Background(), provider, testPiece)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestHTTPProber_Cancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	prober := NewHTTPProber(nil, testLogger())
	provider := interfaces.ProviderInfo{ID: 3, ServiceURL: server.URL}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := prober.DownloadPiece(ctx, provider, testPiece)
		errCh <- err
	}()

	<-started
	cancel()

	err := <-errCh
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
