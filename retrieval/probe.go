package retrieval

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/ipfs/go-cid"
	"github.com/warmstorage/client-backend/interfaces"
)

// HTTPProber talks to a provider's PDP service endpoint. The existence check
// and the download are separate requests so a provider that no longer holds
// a piece is rejected without transferring any payload.
type HTTPProber struct {
	client *http.Client
	log    *slog.Logger
}

// NewHTTPProber creates a prober. A nil client defaults to a pooled client;
// a nil logger defaults to slog.Default.
func NewHTTPProber(client *http.Client, logger *slog.Logger) *HTTPProber {
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPProber{client: client, log: logger}
}

// ProbeExistence asks the provider whether it currently holds the piece via
// GET {service}/pdp/piece?pieceCid={cid}. Status 200 means present; any other
// status maps to ErrPieceNotFound.
func (p *HTTPProber) ProbeExistence(ctx context.Context, provider interfaces.ProviderInfo, pieceCID cid.Cid) error {
	endpoint := fmt.Sprintf("%s/pdp/piece?pieceCid=%s",
		strings.TrimSuffix(provider.ServiceURL, "/"), url.QueryEscape(pieceCID.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building existence request for provider %d: %w", provider.ID, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("existence check against provider %d: %w", provider.ID, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		p.log.Debug("Provider does not hold piece",
			slog.Uint64("provider_id", uint64(provider.ID)),
			slog.String("piece_cid", pieceCID.String()),
			slog.Int("status", resp.StatusCode))
		return fmt.Errorf("provider %d: %w", provider.ID, interfaces.ErrPieceNotFound)
	}
	return nil
}

// DownloadPiece fetches the raw piece payload via GET {service}/piece/{cid}.
// The body is read fully before returning so a success is complete by the
// time sibling probes get cancelled.
func (p *HTTPProber) DownloadPiece(ctx context.Context, provider interfaces.ProviderInfo, pieceCID cid.Cid) ([]byte, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("%s/piece/%s",
		strings.TrimSuffix(provider.ServiceURL, "/"), pieceCID.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request for provider %d: %w", provider.ID, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download from provider %d: %w", provider.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("provider %d returned status %d for piece %s", provider.ID, resp.StatusCode, pieceCID)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading piece from provider %d: %w", provider.ID, err)
	}

	p.log.Debug("Downloaded piece",
		slog.Uint64("provider_id", uint64(provider.ID)),
		slog.String("piece_cid", pieceCID.String()),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}
