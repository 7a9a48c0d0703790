// Package registry provides a read-only client for the warm-storage service
// contract: provider registrations, the endorsed provider list, and per
// client data set state.
package registry

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/warmstorage/client-backend/interfaces"
)

// Client implements interfaces.ProviderRegistry against a deployed
// warm-storage view contract. All calls are eth_call views; the client holds
// no signer and cannot transact.
type Client struct {
	contract *bind.BoundContract
	address  common.Address
}

// NewClient creates a registry client for the view contract at the given
// address. caller is typically an *ethclient.Client.
func NewClient(caller bind.ContractCaller, address common.Address) *Client {
	contract := bind.NewBoundContract(address, parsedViewABI, caller, nil, nil)
	return &Client{contract: contract, address: address}
}

// ContractAddress returns the address of the bound view contract.
func (c *Client) ContractAddress() common.Address {
	return c.address
}

// ProviderByID resolves a provider registration by numeric id. Providers the
// contract reports as inactive map to interfaces.ErrProviderNotFound.
func (c *Client) ProviderByID(ctx context.Context, id interfaces.ProviderID) (interfaces.ProviderInfo, error) {
	opts := &bind.CallOpts{Context: ctx}

	var out []interface{}
	if err := c.contract.Call(opts, &out, "getProvider", uint64(id)); err != nil {
		return interfaces.ProviderInfo{}, fmt.Errorf("getProvider(%d): %w", id, err)
	}

	serviceURL := *abi.ConvertType(out[0], new(string)).(*string)
	payee := *abi.ConvertType(out[1], new(common.Address)).(*common.Address)
	active := *abi.ConvertType(out[2], new(bool)).(*bool)

	if !active {
		return interfaces.ProviderInfo{}, fmt.Errorf("provider %d: %w", id, interfaces.ErrProviderNotFound)
	}

	return interfaces.ProviderInfo{
		ID:         id,
		ServiceURL: serviceURL,
		Payee:      payee,
	}, nil
}

// ProviderByAddress resolves a provider registration by payee address. The
// contract returns id 0 for unknown addresses, which maps to
// interfaces.ErrProviderNotFound.
func (c *Client) ProviderByAddress(ctx context.Context, addr common.Address) (interfaces.ProviderInfo, error) {
	opts := &bind.CallOpts{Context: ctx}

	var out []interface{}
	if err := c.contract.Call(opts, &out, "getProviderIdByAddress", addr); err != nil {
		return interfaces.ProviderInfo{}, fmt.Errorf("getProviderIdByAddress(%s): %w", addr.Hex(), err)
	}

	id := *abi.ConvertType(out[0], new(uint64)).(*uint64)
	if id == 0 {
		return interfaces.ProviderInfo{}, fmt.Errorf("address %s: %w", addr.Hex(), interfaces.ErrProviderNotFound)
	}

	return c.ProviderByID(ctx, interfaces.ProviderID(id))
}

// AllProviders lists every currently registered provider.
func (c *Client) AllProviders(ctx context.Context) ([]interfaces.ProviderInfo, error) {
	opts := &bind.CallOpts{Context: ctx}

	var out []interface{}
	if err := c.contract.Call(opts, &out, "getAllProviders"); err != nil {
		return nil, fmt.Errorf("getAllProviders: %w", err)
	}

	views := *abi.ConvertType(out[0], new([]providerView)).(*[]providerView)

	providers := make([]interfaces.ProviderInfo, 0, len(views))
	for _, view := range views {
		providers = append(providers, interfaces.ProviderInfo{
			ID:         interfaces.ProviderID(view.ProviderId),
			ServiceURL: view.ServiceURL,
			Payee:      view.Payee,
		})
	}
	return providers, nil
}

// EndorsedProviders lists the ids on the service operator's endorsed list.
func (c *Client) EndorsedProviders(ctx context.Context) ([]interfaces.ProviderID, error) {
	opts := &bind.CallOpts{Context: ctx}

	var out []interface{}
	if err := c.contract.Call(opts, &out, "getEndorsedProviders"); err != nil {
		return nil, fmt.Errorf("getEndorsedProviders: %w", err)
	}

	raw := *abi.ConvertType(out[0], new([]uint64)).(*[]uint64)

	ids := make([]interfaces.ProviderID, 0, len(raw))
	for _, id := range raw {
		ids = append(ids, interfaces.ProviderID(id))
	}
	return ids, nil
}

// ClientDataSets lists all data sets owned by the client, resolving each
// set's metadata with a follow-up call.
func (c *Client) ClientDataSets(ctx context.Context, client common.Address) ([]interfaces.SelectionDataSet, error) {
	opts := &bind.CallOpts{Context: ctx}

	var out []interface{}
	if err := c.contract.Call(opts, &out, "getClientDataSets", client); err != nil {
		return nil, fmt.Errorf("getClientDataSets(%s): %w", client.Hex(), err)
	}

	views := *abi.ConvertType(out[0], new([]dataSetView)).(*[]dataSetView)

	dataSets := make([]interfaces.SelectionDataSet, 0, len(views))
	for _, view := range views {
		metadata, err := c.dataSetMetadata(ctx, view.DataSetId)
		if err != nil {
			return nil, err
		}
		dataSets = append(dataSets, interfaces.SelectionDataSet{
			ID:               interfaces.DataSetID(view.DataSetId.Uint64()),
			ProviderID:       interfaces.ProviderID(view.ProviderId),
			Metadata:         metadata,
			ActivePieceCount: view.ActivePieceCount.Uint64(),
			PDPEndEpoch:      view.PdpEndEpoch.Uint64(),
			Live:             view.Live,
			Managed:          view.Managed,
		})
	}
	return dataSets, nil
}

func (c *Client) dataSetMetadata(ctx context.Context, dataSetID *big.Int) (interfaces.Metadata, error) {
	opts := &bind.CallOpts{Context: ctx}

	var out []interface{}
	if err := c.contract.Call(opts, &out, "getDataSetMetadata", dataSetID); err != nil {
		return nil, fmt.Errorf("getDataSetMetadata(%s): %w", dataSetID, err)
	}

	keys := *abi.ConvertType(out[0], new([]string)).(*[]string)
	values := *abi.ConvertType(out[1], new([]string)).(*[]string)
	if len(keys) != len(values) {
		return nil, fmt.Errorf("getDataSetMetadata(%s): %d keys but %d values", dataSetID, len(keys), len(values))
	}

	metadata := make(interfaces.Metadata, len(keys))
	for i, key := range keys {
		metadata[key] = values[i]
	}
	return metadata, nil
}
