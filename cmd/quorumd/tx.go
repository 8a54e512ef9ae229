package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/cmd/quorumd/app"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/multisig"
	"github.com/spf13/cobra"
)

// txFlags are shared by all tx subcommands.
type txFlags struct {
	keyFile  string
	sequence int64
	chainID  string
	encoding string
}

func txCmd(cfg *Config, out io.Writer) *cobra.Command {
	var flags txFlags
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Build and sign multisig transactions",
	}
	cmd.PersistentFlags().StringVar(&flags.keyFile, "key", "", "key file to sign with, unsigned if empty")
	cmd.PersistentFlags().Int64Var(&flags.sequence, "seq", 0, "sequence of the signing key")
	cmd.PersistentFlags().StringVar(&flags.chainID, "chain-id", cfg.ChainID, "chain the signature is valid for")
	cmd.PersistentFlags().StringVar(&flags.encoding, "encoding", "hex", "output encoding, hex or base64")

	emit := func(msg quorum.Msg) error {
		if err := msg.Validate(); err != nil {
			return err
		}
		bz, err := buildTx(msg, flags)
		if err != nil {
			return err
		}
		switch flags.encoding {
		case "hex":
			_, err = fmt.Fprintln(out, hex.EncodeToString(bz))
		case "base64":
			_, err = fmt.Fprintln(out, base64.StdEncoding.EncodeToString(bz))
		default:
			err = errors.Wrapf(errors.ErrInput, "unknown encoding %q", flags.encoding)
		}
		return err
	}

	initCmd := &cobra.Command{
		Use:   "init <threshold> <owner>...",
		Short: "Register the owners, accepted only once",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			threshold, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return errors.Wrapf(errors.ErrInput, "threshold %q", args[0])
			}
			owners, err := parseAddresses(args[1:])
			if err != nil {
				return err
			}
			return emit(&multisig.InitMsg{Owners: owners, Threshold: uint32(threshold)})
		},
	}

	var proposer, amount string
	submitCmd := &cobra.Command{
		Use:   "submit <recipient> --value <amount>",
		Short: "Propose to send value to recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipient, err := quorum.ParseAddress(args[0])
			if err != nil {
				return errors.Wrap(err, "recipient")
			}
			value, err := multisig.ParseValue(amount)
			if err != nil {
				return errors.Wrap(err, "value")
			}
			from, err := quorum.ParseAddress(proposer)
			if err != nil {
				return errors.Wrap(err, "proposer")
			}
			return emit(&multisig.SubmitMsg{Proposer: from, Recipient: recipient, Value: value})
		},
	}
	submitCmd.Flags().StringVar(&proposer, "proposer", "", "owner submitting, the signer if empty")
	// a flag so negative amounts are not taken for shorthand flags
	submitCmd.Flags().StringVar(&amount, "value", "", "signed 128 bit amount, e.g. --value=-42")
	_ = submitCmd.MarkFlagRequired("value")

	var owner string
	approveCmd := &cobra.Command{
		Use:   "approve <proposal-id>",
		Short: "Approve a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			addr, err := quorum.ParseAddress(owner)
			if err != nil {
				return errors.Wrap(err, "owner")
			}
			return emit(&multisig.ApproveMsg{ProposalID: id, Owner: addr})
		},
	}
	approveCmd.Flags().StringVar(&owner, "owner", "", "owner approving, the signer if empty")

	executeCmd := &cobra.Command{
		Use:   "execute <proposal-id>",
		Short: "Execute a proposal with enough approvals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			return emit(&multisig.ExecuteMsg{ProposalID: id})
		},
	}

	cmd.AddCommand(initCmd, submitCmd, approveCmd, executeCmd)
	return cmd
}

// buildTx wraps the message in a transaction, signed when a key file is
// given.
func buildTx(msg quorum.Msg, flags txFlags) ([]byte, error) {
	tx := app.NewTx(msg)
	if flags.keyFile != "" {
		if !quorum.IsValidChainID(flags.chainID) {
			return nil, errors.Wrapf(errors.ErrInput, "chain id %q", flags.chainID)
		}
		key, err := loadKey(flags.keyFile)
		if err != nil {
			return nil, err
		}
		if err := tx.Sign(key, flags.chainID, flags.sequence); err != nil {
			return nil, err
		}
	}
	return tx.Marshal()
}

func parseAddresses(raw []string) ([]quorum.Address, error) {
	addrs := make([]quorum.Address, 0, len(raw))
	for _, r := range raw {
		a, err := quorum.ParseAddress(r)
		if err != nil {
			return nil, errors.Wrapf(err, "address %q", r)
		}
		addrs = append(addrs, a)
	}
	return addrs, nil
}

func parseProposalID(raw string) (uint32, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "proposal id %q", raw)
	}
	return uint32(id), nil
}
