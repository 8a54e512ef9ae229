package app

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/app"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/multisig"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// GenInitOptions produces the multisig section of the genesis file from
// the arguments: the threshold followed by the owner addresses.
//
// Without arguments a single owner key is generated and registered with
// threshold 1 for dev mode. The key is printed to stdout.
func GenInitOptions(args []string) (json.RawMessage, error) {
	var gen struct {
		Owners    []quorum.Address `json:"owners"`
		Threshold uint32           `json:"threshold"`
	}

	if len(args) == 0 {
		addr, keys, err := GenerateOwnerKey()
		if err != nil {
			return nil, err
		}
		fmt.Println(keys)
		gen.Owners = []quorum.Address{addr}
		gen.Threshold = 1
	} else {
		threshold, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "threshold %q", args[0])
		}
		gen.Threshold = uint32(threshold)
		for _, raw := range args[1:] {
			addr, err := quorum.ParseAddress(raw)
			if err != nil {
				return nil, errors.Wrapf(err, "owner %q", raw)
			}
			gen.Owners = append(gen.Owners, addr)
		}
	}

	msg := multisig.InitMsg{Owners: gen.Owners, Threshold: gen.Threshold}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	opts, err := json.MarshalIndent(map[string]interface{}{"multisig": gen}, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "cannot serialize app state")
	}
	return opts, nil
}

type output struct {
	Pubkey *crypto.PublicKey  `json:"pub_key"`
	Secret *crypto.PrivateKey `json:"secret"`
}

// GenerateOwnerKey returns the address of a new key, along with a json
// representation of the keys.
func GenerateOwnerKey() (quorum.Address, string, error) {
	privKey := crypto.GenPrivKeyEd25519()
	pubKey := privKey.PublicKey()

	out := output{Pubkey: pubKey, Secret: privKey}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return pubKey.Address(), string(keys), nil
}

// Initializer returns the genesis initializer of the application.
func Initializer(e *multisig.Engine) quorum.Initializer {
	return quorum.ChainInitializers(
		&multisig.Initializer{Engine: e},
	)
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(home string, logger log.Logger, debug bool) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "quorum.db")
	}
	application, err := InlineApp(dbPath, logger, debug)
	if err != nil {
		return nil, err
	}
	return application, nil
}

// InlineApp builds the application on the database at dbPath, an empty
// path keeps everything in memory.
func InlineApp(dbPath string, logger log.Logger, debug bool) (app.BaseApp, error) {
	engine := Engine()
	application, err := Application(Name, Stack(engine), TxDecoder, dbPath, debug)
	if err != nil {
		return app.BaseApp{}, err
	}
	application.WithInit(Initializer(engine))

	// set the logger and return
	application.WithLogger(logger)
	return application, nil
}
