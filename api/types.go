// Package api defines the request and response types of the gateway's HTTP
// interface, shared between the server and its clients.
package api

import (
	"github.com/warmstorage/client-backend/interfaces"
)

// SelectRequest asks the gateway to resolve write placements for a client.
type SelectRequest struct {
	// Client is the hex-encoded client address owning the data sets.
	Client string `json:"client"`

	// Metadata is the label set a reused data set must match exactly.
	Metadata map[string]string `json:"metadata,omitempty"`

	// Count is how many placements to produce. Zero means one.
	Count int `json:"count,omitempty"`

	// ExcludeProviderIDs lists providers to skip, typically after a failed
	// attempt against them.
	ExcludeProviderIDs []uint64 `json:"exclude_provider_ids,omitempty"`
}

// Placement is one resolved write location.
type Placement struct {
	// ProviderID is the chosen provider's registry identifier.
	ProviderID uint64 `json:"provider_id"`

	// ServiceURL is the provider's PDP service endpoint.
	ServiceURL string `json:"service_url"`

	// Payee is the provider's hex-encoded payee address.
	Payee string `json:"payee"`

	// DataSetID is the data set to reuse; zero when a new set must be created.
	DataSetID uint64 `json:"data_set_id"`

	// CreateNew reports whether the client must create a fresh data set on the
	// provider instead of reusing DataSetID.
	CreateNew bool `json:"create_new"`

	// Endorsed reports whether the provider is on the operator's endorsed list.
	Endorsed bool `json:"endorsed"`
}

// SelectResponse carries the resolved placements, in preference order. An
// empty list means no provider could satisfy the request.
type SelectResponse struct {
	Placements []Placement `json:"placements"`
}

// PlacementFromLocation converts a resolved location into its wire form.
func PlacementFromLocation(loc interfaces.ResolvedLocation) Placement {
	return Placement{
		ProviderID: uint64(loc.Provider.ID),
		ServiceURL: loc.Provider.ServiceURL,
		Payee:      loc.Provider.Payee.Hex(),
		DataSetID:  uint64(loc.DataSetID),
		CreateNew:  loc.DataSetID == interfaces.NewDataSetSentinel,
		Endorsed:   loc.Endorsed,
	}
}
