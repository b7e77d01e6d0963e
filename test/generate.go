// Command generate writes the fixtures for running permitpay against a local
// development node: an owner key, a contract addresses file and a config that
// points at both.
package main

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"storj.io/permit-payment/pkg/config"
	"storj.io/permit-payment/pkg/directory"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: generate PROCESSOR TOKEN")
		os.Exit(2)
	}
	processor := mustAddress(os.Args[1])
	token := mustAddress(os.Args[2])

	ownerKey, ownerAddress := makeAccount()
	writeFile("owner-key", []byte(ownerKey+"\n"), 0600)
	writeFile("owner-address", []byte(ownerAddress+"\n"), 0644)

	addresses := fmt.Sprintf("{\n  \"proxy\": %q,\n  \"usdcToken\": %q\n}\n", processor.Hex(), token.Hex())
	if _, err := directory.Parse([]byte(addresses)); err != nil {
		panic(err)
	}
	writeFile("contract-addresses.json", []byte(addresses), 0644)

	cfg := new(bytes.Buffer)
	fmt.Fprintf(cfg, "[node]\naddress = %q\n\n", "http://localhost:8545")
	fmt.Fprintf(cfg, "[contracts]\npath = %q\n\n", "./contract-addresses.json")
	fmt.Fprintf(cfg, "[wallet]\nkey_path = %q\nconfirm = false\n\n", "./owner-key")
	fmt.Fprintf(cfg, "[payment]\nconfirm_timeout = %q\nexplorer_url = %q\n\n", "1m", "http://localhost:4000/tx/")
	fmt.Fprintf(cfg, "[journal]\npath = %q\n", "./journal.db")
	if _, err := config.Parse(cfg.Bytes()); err != nil {
		panic(err)
	}
	writeFile("config.toml", cfg.Bytes(), 0644)
}

func mustAddress(s string) common.Address {
	if !common.IsHexAddress(s) {
		fmt.Fprintf(os.Stderr, "%q is not a hex address\n", s)
		os.Exit(2)
	}
	return common.HexToAddress(s)
}

func makeAccount() (string, string) {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return hex.EncodeToString(crypto.FromECDSA(key)), crypto.PubkeyToAddress(*key.Public().(*ecdsa.PublicKey)).String()
}

func writeFile(path string, data []byte, mode os.FileMode) {
	if err := os.WriteFile(path, data, mode); err != nil {
		panic(err)
	}
}
