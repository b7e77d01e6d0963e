package permit

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/zeebo/errs"
)

// PayloadSize is the length of an encoded payload: four 32-byte words.
const PayloadSize = 4 * 32

// Signature is an ECDSA signature split into its EVM components.
type Signature struct {
	V uint8
	R [32]byte
	S [32]byte
}

// Bytes returns the 65-byte r || s || v form.
func (sig Signature) Bytes() []byte {
	out := make([]byte, 0, crypto.SignatureLength)
	out = append(out, sig.R[:]...)
	out = append(out, sig.S[:]...)
	return append(out, sig.V)
}

// SplitSignature splits a wallet signature. It accepts the 65-byte
// r || s || v form, with v either 0/1 or 27/28, and the 64-byte EIP-2098
// compact form r || yParityAndS. The returned V is always 27 or 28.
func SplitSignature(raw []byte) (Signature, error) {
	var sig Signature
	switch len(raw) {
	case 65:
		copy(sig.R[:], raw[:32])
		copy(sig.S[:], raw[32:64])
		v := raw[64]
		if v < 27 {
			v += 27
		}
		if v != 27 && v != 28 {
			return Signature{}, errs.New("invalid signature v value %d", raw[64])
		}
		sig.V = v
	case 64:
		copy(sig.R[:], raw[:32])
		copy(sig.S[:], raw[32:64])
		sig.V = 27 + sig.S[0]>>7
		sig.S[0] &= 0x7f
	default:
		return Signature{}, errs.New("invalid signature length %d", len(raw))
	}
	return sig, nil
}

// Payload is the ABI encoding of (uint256 deadline, uint8 v, bytes32 r,
// bytes32 s) handed to makePaymentWithPermit.
type Payload []byte

func (p Payload) String() string {
	return hexutil.Encode(p)
}

var payloadArgs = func() abi.Arguments {
	uint256Type, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	uint8Type, err := abi.NewType("uint8", "", nil)
	if err != nil {
		panic(err)
	}
	bytes32Type, err := abi.NewType("bytes32", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{
		{Name: "deadline", Type: uint256Type},
		{Name: "v", Type: uint8Type},
		{Name: "r", Type: bytes32Type},
		{Name: "s", Type: bytes32Type},
	}
}()

// EncodePayload packs the deadline and signature into a payload.
func EncodePayload(deadline *big.Int, sig Signature) (Payload, error) {
	if deadline == nil || deadline.Sign() <= 0 {
		return nil, errs.New("invalid deadline %v", deadline)
	}
	packed, err := payloadArgs.Pack(deadline, sig.V, sig.R, sig.S)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return Payload(packed), nil
}

// DecodePayload is the inverse of EncodePayload.
func DecodePayload(p Payload) (*big.Int, Signature, error) {
	if len(p) != PayloadSize {
		return nil, Signature{}, errs.New("invalid payload length %d", len(p))
	}
	values, err := payloadArgs.Unpack(p)
	if err != nil {
		return nil, Signature{}, errs.Wrap(err)
	}

	deadline, ok := values[0].(*big.Int)
	if !ok {
		return nil, Signature{}, errs.New("invalid payload deadline")
	}
	v, ok := values[1].(uint8)
	if !ok {
		return nil, Signature{}, errs.New("invalid payload v")
	}
	r, ok := values[2].([32]byte)
	if !ok {
		return nil, Signature{}, errs.New("invalid payload r")
	}
	s, ok := values[3].([32]byte)
	if !ok {
		return nil, Signature{}, errs.New("invalid payload s")
	}
	return deadline, Signature{V: v, R: r, S: s}, nil
}
