package permit_test

import (
	"crypto/rand"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/permit-payment/pkg/permit"
)

func TestTypesFieldOrder(t *testing.T) {
	fields := permit.Types[permit.PrimaryType]
	require.Len(t, fields, 5)
	for i, want := range []struct{ name, typ string }{
		{"owner", "address"},
		{"spender", "address"},
		{"value", "uint256"},
		{"nonce", "uint256"},
		{"deadline", "uint256"},
	} {
		assert.Equal(t, want.name, fields[i].Name)
		assert.Equal(t, want.typ, fields[i].Type)
	}

	domain := permit.Types["EIP712Domain"]
	require.Len(t, domain, 4)
	assert.Equal(t, "verifyingContract", domain[3].Name)
}

func TestBuildDomain(t *testing.T) {
	token := common.HexToAddress("0x1111111111111111111111111111111111111111")
	chainID := big.NewInt(1337)
	domain := permit.BuildDomain("USD Coin", chainID, token)

	assert.Equal(t, "USD Coin", domain.Name)
	assert.Equal(t, "1", domain.Version)
	assert.Equal(t, token.Hex(), domain.VerifyingContract)
	assert.Equal(t, 0, (*big.Int)(domain.ChainId).Cmp(chainID))

	chainID.SetInt64(1)
	assert.Equal(t, int64(1337), (*big.Int)(domain.ChainId).Int64(), "domain must not alias the caller's chain id")
}

func TestSplitSignature(t *testing.T) {
	r := bytes32(0x11)
	s := bytes32(0x22)

	for _, tc := range []struct {
		name string
		v    byte
		want uint8
		err  string
	}{
		{name: "v=0", v: 0, want: 27},
		{name: "v=1", v: 1, want: 28},
		{name: "v=27", v: 27, want: 27},
		{name: "v=28", v: 28, want: 28},
		{name: "v=29", v: 29, err: "invalid signature v value 29"},
		{name: "v=2", v: 2, err: "invalid signature v value 2"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			raw := append(append(append([]byte{}, r[:]...), s[:]...), tc.v)
			sig, err := permit.SplitSignature(raw)
			if tc.err != "" {
				require.EqualError(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, sig.V)
			assert.Equal(t, r, sig.R)
			assert.Equal(t, s, sig.S)
		})
	}

	t.Run("compact", func(t *testing.T) {
		yParityAndS := s
		yParityAndS[0] |= 0x80
		sig, err := permit.SplitSignature(append(append([]byte{}, r[:]...), yParityAndS[:]...))
		require.NoError(t, err)
		assert.Equal(t, uint8(28), sig.V)
		assert.Equal(t, s, sig.S)

		sig, err = permit.SplitSignature(append(append([]byte{}, r[:]...), s[:]...))
		require.NoError(t, err)
		assert.Equal(t, uint8(27), sig.V)
	})

	t.Run("bad length", func(t *testing.T) {
		_, err := permit.SplitSignature(make([]byte, 66))
		require.EqualError(t, err, "invalid signature length 66")
	})
}

func TestPayloadRoundTrip(t *testing.T) {
	for i := 0; i < 16; i++ {
		var sig permit.Signature
		_, err := rand.Read(sig.R[:])
		require.NoError(t, err)
		_, err = rand.Read(sig.S[:])
		require.NoError(t, err)
		sig.V = 27 + uint8(i%2)

		deadline := big.NewInt(time.Now().Unix() + int64(i)*3600)

		payload, err := permit.EncodePayload(deadline, sig)
		require.NoError(t, err)
		require.Len(t, payload, permit.PayloadSize)

		gotDeadline, gotSig, err := permit.DecodePayload(payload)
		require.NoError(t, err)
		assert.Equal(t, 0, deadline.Cmp(gotDeadline))
		assert.Equal(t, sig, gotSig)
	}
}

func TestPayloadLayout(t *testing.T) {
	sig := permit.Signature{V: 28, R: bytes32(0xaa), S: bytes32(0xbb)}
	payload, err := permit.EncodePayload(big.NewInt(0x0102), sig)
	require.NoError(t, err)

	assert.Equal(t, append(make([]byte, 30), 0x01, 0x02), []byte(payload[0:32]), "deadline word")
	assert.Equal(t, append(make([]byte, 31), 28), []byte(payload[32:64]), "v word")
	assert.Equal(t, sig.R[:], []byte(payload[64:96]), "r word")
	assert.Equal(t, sig.S[:], []byte(payload[96:128]), "s word")

	assert.Equal(t, append(append(sig.R[:], sig.S[:]...), 28), sig.Bytes())
}

func TestPayloadErrors(t *testing.T) {
	_, err := permit.EncodePayload(nil, permit.Signature{})
	require.Error(t, err)
	_, err = permit.EncodePayload(big.NewInt(0), permit.Signature{})
	require.Error(t, err)

	_, _, err = permit.DecodePayload(make(permit.Payload, 96))
	require.EqualError(t, err, "invalid payload length 96")
}

func bytes32(b byte) [32]byte {
	var out [32]byte
	for i := range out {
		out[i] = b
	}
	return out
}
