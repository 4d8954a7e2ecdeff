package local

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"testing"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truetrace/internal/wallet"
	"truetrace/pkg/domain"
)

func newSigner(t *testing.T) (*Provider, wallet.Client) {
	t.Helper()
	key, err := hedera.PrivateKeyGenerateEd25519()
	require.NoError(t, err)
	p := NewProvider(nil, "0.0.1001", key, []domain.AccountID{"0.0.1001", "0.0.6451900"}, nil)
	c, err := p.Init(context.Background(), "wss://ignored")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return p, c
}

func TestConnectReturnsOperatorSession(t *testing.T) {
	_, c := newSigner(t)

	res, err := c.Connect(context.Background(), wallet.HederaNamespaces(wallet.ChainTestnet, nil))
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	assert.Equal(t, "local:0.0.1001", res.Session.Topic)
	assert.Equal(t, []domain.AccountID{"0.0.1001", "0.0.6451900"}, res.Session.PairedAccounts)

	_, err = c.Approve(context.Background(), "1", nil)
	assert.Error(t, err)
}

func TestRequestRejectsMalformedParams(t *testing.T) {
	_, c := newSigner(t)

	_, err := c.Request(context.Background(), "t", wallet.SignRequest{
		Method: wallet.MethodSignTransaction,
		Params: json.RawMessage(`{"transaction":"zz"}`),
	})
	assert.Error(t, err)

	_, err = c.Request(context.Background(), "t", wallet.SignRequest{
		Method: wallet.MethodSignTransaction,
		Params: json.RawMessage(`not json`),
	})
	assert.Error(t, err)
}

func TestSignTransactionReturnsSignedBytes(t *testing.T) {
	_, c := newSigner(t)

	topicID, err := hedera.TopicIDFromString("0.0.4242")
	require.NoError(t, err)
	payer, err := hedera.AccountIDFromString("0.0.1001")
	require.NoError(t, err)

	frozen, err := hedera.NewTopicMessageSubmitTransaction().
		SetTopicID(topicID).
		SetMessage([]byte(`{"eventType":"QRCodeRegistered"}`)).
		SetTransactionID(hedera.TransactionIDGenerate(payer)).
		SetNodeAccountIDs([]hedera.AccountID{{Account: 3}}).
		Freeze()
	require.NoError(t, err)
	raw, err := frozen.ToBytes()
	require.NoError(t, err)

	params, _ := json.Marshal(wallet.TransactionParams{Transaction: hex.EncodeToString(raw)})
	resp, err := c.Request(context.Background(), "t", wallet.SignRequest{
		Method: wallet.MethodSignTransaction,
		Params: params,
	})
	require.NoError(t, err)
	assert.Contains(t, resp.TransactionID, "0.0.1001@")

	var signed wallet.TransactionParams
	require.NoError(t, json.Unmarshal(resp.Result, &signed))
	assert.NotEmpty(t, signed.Transaction)
	assert.NotEqual(t, hex.EncodeToString(raw), signed.Transaction)
}
