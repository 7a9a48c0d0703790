package registry

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// warmStorageViewABI is the read-only surface of the warm-storage service
// contract this client consumes. Bound by hand; the client never transacts,
// so no transactor-side bindings are generated.
const warmStorageViewABI = `[
	{"type":"function","name":"getProvider","stateMutability":"view","inputs":[{"name":"providerId","type":"uint64"}],"outputs":[{"name":"serviceURL","type":"string"},{"name":"payee","type":"address"},{"name":"active","type":"bool"}]},
	{"type":"function","name":"getProviderIdByAddress","stateMutability":"view","inputs":[{"name":"payee","type":"address"}],"outputs":[{"name":"providerId","type":"uint64"}]},
	{"type":"function","name":"getAllProviders","stateMutability":"view","inputs":[],"outputs":[{"name":"providers","type":"tuple[]","components":[{"name":"providerId","type":"uint64"},{"name":"serviceURL","type":"string"},{"name":"payee","type":"address"}]}]},
	{"type":"function","name":"getEndorsedProviders","stateMutability":"view","inputs":[],"outputs":[{"name":"providerIds","type":"uint64[]"}]},
	{"type":"function","name":"getClientDataSets","stateMutability":"view","inputs":[{"name":"client","type":"address"}],"outputs":[{"name":"dataSets","type":"tuple[]","components":[{"name":"dataSetId","type":"uint256"},{"name":"providerId","type":"uint64"},{"name":"pdpEndEpoch","type":"uint256"},{"name":"activePieceCount","type":"uint256"},{"name":"live","type":"bool"},{"name":"managed","type":"bool"}]}]},
	{"type":"function","name":"getDataSetMetadata","stateMutability":"view","inputs":[{"name":"dataSetId","type":"uint256"}],"outputs":[{"name":"keys","type":"string[]"},{"name":"values","type":"string[]"}]}
]`

// parsedViewABI is parsed once at package init; the ABI string is a compile
// time constant so a parse failure is a programming error.
var parsedViewABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(warmStorageViewABI))
	if err != nil {
		panic("registry: invalid warm storage view ABI: " + err.Error())
	}
	return parsed
}()

// providerView mirrors the getAllProviders tuple layout.
type providerView struct {
	ProviderId uint64
	ServiceURL string
	Payee      common.Address
}

// dataSetView mirrors the getClientDataSets tuple layout.
type dataSetView struct {
	DataSetId        *big.Int
	ProviderId       uint64
	PdpEndEpoch      *big.Int
	ActivePieceCount *big.Int
	Live             bool
	Managed          bool
}
