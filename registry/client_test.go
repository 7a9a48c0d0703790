package registry

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warmstorage/client-backend/interfaces"
)

// stubCaller answers eth_call requests by dispatching on the method selector
// and ABI-encoding canned outputs, standing in for a deployed view contract.
type stubCaller struct {
	t        *testing.T
	handlers map[string]func(t *testing.T, method abi.Method, inputs []interface{}) []byte
}

func (s *stubCaller) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x01}, nil
}

func (s *stubCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	require.GreaterOrEqual(s.t, len(call.Data), 4, "call data must carry a selector")

	for name, method := range parsedViewABI.Methods {
		if !bytes.Equal(method.ID, call.Data[:4]) {
			continue
		}
		handler, ok := s.handlers[name]
		require.True(s.t, ok, "unexpected call to %s", name)

		inputs, err := method.Inputs.Unpack(call.Data[4:])
		require.NoError(s.t, err)
		return handler(s.t, method, inputs), nil
	}

	s.t.Fatalf("unknown method selector %x", call.Data[:4])
	return nil, nil
}

func packOutputs(t *testing.T, method abi.Method, values ...interface{}) []byte {
	packed, err := method.Outputs.Pack(values...)
	require.NoError(t, err)
	return packed
}

func newTestClient(t *testing.T, handlers map[string]func(*testing.T, abi.Method, []interface{}) []byte) *Client {
	caller := &stubCaller{t: t, handlers: handlers}
	return NewClient(caller, common.HexToAddress("0x00000000000000000000000000000000000000aa"))
}

func TestClient_ProviderByID(t *testing.T) {
	payee := common.HexToAddress("0x1111111111111111111111111111111111111111")
	client := newTestClient(t, map[string]func(*testing.T, abi.Method, []interface{}) []byte{
		"getProvider": func(t *testing.T, method abi.Method, inputs []interface{}) []byte {
			require.Equal(t, uint64(3), inputs[0].(uint64))
			return packOutputs(t, method, "https://provider-3.example.com", payee, true)
		},
	})

	provider, err := client.ProviderByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ProviderID(3), provider.ID)
	assert.Equal(t, "https://provider-3.example.com", provider.ServiceURL)
	assert.Equal(t, payee, provider.Payee)
}

func TestClient_ProviderByID_Inactive(t *testing.T) {
	client := newTestClient(t, map[string]func(*testing.T, abi.Method, []interface{}) []byte{
		"getProvider": func(t *testing.T, method abi.Method, inputs []interface{}) []byte {
			return packOutputs(t, method, "", common.Address{}, false)
		},
	})

	_, err := client.ProviderByID(context.Background(), 9)
	assert.ErrorIs(t, err, interfaces.ErrProviderNotFound)
}

func TestClient_ProviderByAddress(t *testing.T) {
	payee := common.HexToAddress("0x2222222222222222222222222222222222222222")
	client := newTestClient(t, map[string]func(*testing.T, abi.Method, []interface{}) []byte{
		"getProviderIdByAddress": func(t *testing.T, method abi.Method, inputs []interface{}) []byte {
			require.Equal(t, payee, inputs[0].(common.Address))
			return packOutputs(t, method, uint64(7))
		},
		"getProvider": func(t *testing.T, method abi.Method, inputs []interface{}) []byte {
			require.Equal(t, uint64(7), inputs[0].(uint64))
			return packOutputs(t, method, "https://provider-7.example.com", payee, true)
		},
	})

	provider, err := client.ProviderByAddress(context.Background(), payee)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ProviderID(7), provider.ID)
}

func TestClient_ProviderByAddress_Unregistered(t *testing.T) {
	client := newTestClient(t, map[string]func(*testing.T, abi.Method, []interface{}) []byte{
		"getProviderIdByAddress": func(t *testing.T, method abi.Method, inputs []interface{}) []byte {
			return packOutputs(t, method, uint64(0))
		},
	})

	_, err := client.ProviderByAddress(context.Background(), common.HexToAddress("0x3333333333333333333333333333333333333333"))
	assert.ErrorIs(t, err, interfaces.ErrProviderNotFound)
}

func TestClient_AllProviders(t *testing.T) {
	client := newTestClient(t, map[string]func(*testing.T, abi.Method, []interface{}) []byte{
		"getAllProviders": func(t *testing.T, method abi.Method, inputs []interface{}) []byte {
			return packOutputs(t, method, []providerView{
				{ProviderId: 1, ServiceURL: "https://a.example.com", Payee: common.HexToAddress("0x01")},
				{ProviderId: 2, ServiceURL: "https://b.example.com", Payee: common.HexToAddress("0x02")},
			})
		},
	})

	providers, err := client.AllProviders(context.Background())
	require.NoError(t, err)
	require.Len(t, providers, 2)
	assert.Equal(t, interfaces.ProviderID(1), providers[0].ID)
	assert.Equal(t, "https://b.example.com", providers[1].ServiceURL)
}

func TestClient_EndorsedProviders(t *testing.T) {
	client := newTestClient(t, map[string]func(*testing.T, abi.Method, []interface{}) []byte{
		"getEndorsedProviders": func(t *testing.T, method abi.Method, inputs []interface{}) []byte {
			return packOutputs(t, method, []uint64{4, 8})
		},
	})

	ids, err := client.EndorsedProviders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []interfaces.ProviderID{4, 8}, ids)
}

func TestClient_ClientDataSets(t *testing.T) {
	owner := common.HexToAddress("0x4444444444444444444444444444444444444444")
	client := newTestClient(t, map[string]func(*testing.T, abi.Method, []interface{}) []byte{
		"getClientDataSets": func(t *testing.T, method abi.Method, inputs []interface{}) []byte {
			require.Equal(t, owner, inputs[0].(common.Address))
			return packOutputs(t, method, []dataSetView{
				{
					DataSetId:        big.NewInt(11),
					ProviderId:       2,
					PdpEndEpoch:      big.NewInt(0),
					ActivePieceCount: big.NewInt(5),
					Live:             true,
					Managed:          true,
				},
			})
		},
		"getDataSetMetadata": func(t *testing.T, method abi.Method, inputs []interface{}) []byte {
			require.Equal(t, int64(11), inputs[0].(*big.Int).Int64())
			return packOutputs(t, method, []string{"env"}, []string{"prod"})
		},
	})

	dataSets, err := client.ClientDataSets(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, dataSets, 1)

	ds := dataSets[0]
	assert.Equal(t, interfaces.DataSetID(11), ds.ID)
	assert.Equal(t, interfaces.ProviderID(2), ds.ProviderID)
	assert.Equal(t, uint64(5), ds.ActivePieceCount)
	assert.Equal(t, interfaces.Metadata{"env": "prod"}, ds.Metadata)
	assert.True(t, ds.EligibleForSelection())
}

func TestClient_ClientDataSets_MetadataLengthMismatch(t *testing.T) {
	client := newTestClient(t, map[string]func(*testing.T, abi.Method, []interface{}) []byte{
		"getClientDataSets": func(t *testing.T, method abi.Method, inputs []interface{}) []byte {
			return packOutputs(t, method, []dataSetView{
				{
					DataSetId:        big.NewInt(1),
					ProviderId:       1,
					PdpEndEpoch:      big.NewInt(0),
					ActivePieceCount: big.NewInt(0),
					Live:             true,
					Managed:          true,
				},
			})
		},
		"getDataSetMetadata": func(t *testing.T, method abi.Method, inputs []interface{}) []byte {
			return packOutputs(t, method, []string{"env", "tier"}, []string{"prod"})
		},
	})

	_, err := client.ClientDataSets(context.Background(), common.Address{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, interfaces.ErrProviderNotFound))
}
