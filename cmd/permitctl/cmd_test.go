package main

import (
	"bytes"
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/permit-payment/pkg/permit"
)

func Test_doDecode(t *testing.T) {
	sig := permit.Signature{V: 28}
	sig.R[31] = 0x01
	sig.S[31] = 0x02
	payload, err := permit.EncodePayload(big.NewInt(1_700_003_600), sig)
	require.NoError(t, err)

	b := bytes.NewBufferString("")
	require.NoError(t, doDecode(payload.String(), b))
	assert.Contains(t, b.String(), "Deadline: 1700003600 (2023-11-14T23:13:20Z)")
	assert.Contains(t, b.String(), "V:        28")
	assert.Contains(t, b.String(), "R:        0x0000000000000000000000000000000000000000000000000000000000000001")

	err = doDecode("0x1234", b)
	require.Error(t, err)
	assert.True(t, usageErr.Has(err))

	err = doDecode("not hex", b)
	require.Error(t, err)
	assert.True(t, usageErr.Has(err))
}

func Test_doAddresses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract-addresses.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"proxy": "0x2222222222222222222222222222222222222222",
		"usdcToken": "0x1111111111111111111111111111111111111111"
	}`), 0644))

	cfg := addressesConfig{rootConfig: &rootConfig{Ctx: context.Background()}}

	b := bytes.NewBufferString("")
	require.NoError(t, doAddresses(&cfg, path, b))
	assert.Equal(t, ""+
		"Processor: 0x2222222222222222222222222222222222222222\n"+
		"Token:     0x1111111111111111111111111111111111111111\n", b.String())
}
