package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
	"github.com/spf13/cobra"
)

// bech32Prefix is the human readable part of bech32 addresses.
const bech32Prefix = "quorum"

// defaultPath is the SLIP-0010 derivation path of the first key.
const defaultPath = "m/44'/234'/0'"

// keyFile is the json form of a key, as written by keys generate.
type keyFile struct {
	Address string             `json:"address"`
	Bech32  string             `json:"bech32"`
	Pubkey  *crypto.PublicKey  `json:"pub_key"`
	Secret  *crypto.PrivateKey `json:"secret,omitempty"`
}

func newKeyFile(key *crypto.PrivateKey) (*keyFile, error) {
	pub := key.PublicKey()
	addr := pub.Address()
	b32, err := addr.Bech32(bech32Prefix)
	if err != nil {
		return nil, err
	}
	return &keyFile{
		Address: addr.String(),
		Bech32:  "bech32:" + b32,
		Pubkey:  pub,
		Secret:  key,
	}, nil
}

// loadKey reads the private key from a file written by keys generate.
func loadKey(path string) (*crypto.PrivateKey, error) {
	bz, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read key file")
	}
	var kf keyFile
	if err := json.Unmarshal(bz, &kf); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if kf.Secret == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "secret")
	}
	return kf.Secret, nil
}

func writeJSON(out io.Writer, obj interface{}) error {
	bz, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot serialize")
	}
	_, err = fmt.Fprintln(out, string(bz))
	return err
}

func keysCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Create owner keys",
	}

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kf, err := newKeyFile(crypto.GenPrivKeyEd25519())
			if err != nil {
				return err
			}
			return writeJSON(out, kf)
		},
	}

	var path string
	derive := &cobra.Command{
		Use:   "derive <seed-hex>",
		Short: "Derive a key from a master seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := hex.DecodeString(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrInput, "seed must be hex encoded")
			}
			key, err := crypto.DeriveEd25519(seed, path)
			if err != nil {
				return err
			}
			kf, err := newKeyFile(key)
			if err != nil {
				return err
			}
			return writeJSON(out, kf)
		},
	}
	derive.Flags().StringVar(&path, "path", defaultPath, "SLIP-0010 derivation path")

	show := &cobra.Command{
		Use:   "show <keyfile>",
		Short: "Print the addresses of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := loadKey(args[0])
			if err != nil {
				return err
			}
			kf, err := newKeyFile(key)
			if err != nil {
				return err
			}
			kf.Secret = nil
			return writeJSON(out, kf)
		},
	}

	cmd.AddCommand(generate, derive, show)
	return cmd
}
