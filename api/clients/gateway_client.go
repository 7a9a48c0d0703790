// Package clients provides HTTP clients for the gateway's public API.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/ipfs/go-cid"

	"github.com/warmstorage/client-backend/api"
	"github.com/warmstorage/client-backend/interfaces"
)

// GatewayClient talks to a running gateway over its public HTTP API. Its
// FetchPiece method satisfies interfaces.PieceRetriever, so a remote gateway
// can stand in wherever a local retrieval chain would.
type GatewayClient struct {
	// ServerAddr is the base URL of the gateway, without a trailing slash.
	ServerAddr string

	// Client is the HTTP client to use. Nil defaults to a pooled client.
	Client *http.Client
}

func (g *GatewayClient) httpClient() *http.Client {
	if g.Client != nil {
		return g.Client
	}
	return cleanhttp.DefaultPooledClient()
}

// FetchPiece downloads a piece through the gateway. A forced provider in opts
// is forwarded as a query parameter.
func (g *GatewayClient) FetchPiece(ctx context.Context, pieceCID cid.Cid, client common.Address, opts *interfaces.FetchOptions) ([]byte, error) {
	url := fmt.Sprintf("%s/api/public/piece/%s?client=%s", g.ServerAddr, pieceCID, client.Hex())
	if opts != nil && opts.ProviderAddress != (common.Address{}) {
		url += "&provider=" + opts.ProviderAddress.Hex()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request piece endpoint: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, interfaces.ErrNoCandidates
	case http.StatusBadGateway:
		return nil, interfaces.ErrAllRetrievalsFailed
	default:
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("piece endpoint returned error %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("piece endpoint returned error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read piece body: %w", err)
	}
	return data, nil
}

// SelectProviders asks the gateway to resolve write placements.
func (g *GatewayClient) SelectProviders(ctx context.Context, request *api.SelectRequest) (*api.SelectResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	url := g.ServerAddr + "/api/public/providers/select"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request selection endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("selection endpoint returned error %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("selection endpoint returned error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed api.SelectResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("could not parse selection response: %w", err)
	}
	return &parsed, nil
}
