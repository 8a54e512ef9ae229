package main

import (
	"io"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/app"
	"github.com/iov-one/quorum/x/eventlog"
	"github.com/iov-one/quorum/x/multisig"
	"github.com/iov-one/quorum/x/sigs"
	"github.com/spf13/cobra"
)

// proposalView is a proposal with its current approval count.
type proposalView struct {
	*multisig.Proposal
	Approvals uint32 `json:"approvals"`
}

// registryView is the registry with the number of submitted proposals.
type registryView struct {
	*multisig.Registry
	Proposals int64 `json:"proposals"`
}

// eventView renders attributes as text.
type eventView struct {
	Height     int64             `json:"height"`
	Topic      string            `json:"topic"`
	Attributes map[string]string `json:"attributes"`
}

func queryCmd(cfg *Config, out io.Writer, open appOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Read the state of a stopped node",
	}

	// withStore runs fn against the committed state in home.
	withStore := func(fn func(db quorum.ReadOnlyKVStore) (interface{}, error)) error {
		application, err := open(cfg.Home)
		if err != nil {
			return err
		}
		res, err := fn(app.NewABCIStore(application))
		if err != nil {
			return err
		}
		return writeJSON(out, res)
	}
	engine := multisig.NewEngine(nil, nil)

	registry := &cobra.Command{
		Use:   "registry",
		Short: "Print the owners, the threshold and the proposal count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(db quorum.ReadOnlyKVStore) (interface{}, error) {
				r, err := engine.Registry(db)
				if err != nil {
					return nil, err
				}
				n, err := engine.ProposalCount(db)
				if err != nil {
					return nil, err
				}
				return registryView{Registry: r, Proposals: n}, nil
			})
		},
	}

	proposal := &cobra.Command{
		Use:   "proposal <id>",
		Short: "Print a proposal and its approval count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			return withStore(func(db quorum.ReadOnlyKVStore) (interface{}, error) {
				p, err := engine.Proposal(db, id)
				if err != nil {
					return nil, err
				}
				n, err := engine.Tally(db, id)
				if err != nil {
					return nil, err
				}
				return proposalView{Proposal: p, Approvals: n}, nil
			})
		},
	}

	proposals := &cobra.Command{
		Use:   "proposals",
		Short: "List all proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(db quorum.ReadOnlyKVStore) (interface{}, error) {
				return engine.Proposals(db)
			})
		},
	}

	approved := &cobra.Command{
		Use:   "approved <id> <owner>",
		Short: "Tell if an owner approved a proposal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			owner, err := quorum.ParseAddress(args[1])
			if err != nil {
				return err
			}
			return withStore(func(db quorum.ReadOnlyKVStore) (interface{}, error) {
				return engine.HasApproved(db, id, owner)
			})
		},
	}

	events := &cobra.Command{
		Use:   "events [topic]",
		Short: "List the event log, optionally of one topic",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var topic string
			if len(args) == 1 {
				topic = args[0]
			}
			return withStore(func(db quorum.ReadOnlyKVStore) (interface{}, error) {
				records, err := eventlog.NewBucket().Records(db, topic)
				if err != nil {
					return nil, err
				}
				views := make([]eventView, 0, len(records))
				for _, r := range records {
					v := eventView{Height: r.Height, Topic: r.Topic, Attributes: make(map[string]string)}
					for _, a := range r.Attributes {
						v.Attributes[a.Key] = string(a.Value)
					}
					views = append(views, v)
				}
				return views, nil
			})
		},
	}

	nonce := &cobra.Command{
		Use:   "nonce <address>",
		Short: "Print the sequence the next signature must carry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := quorum.ParseAddress(args[0])
			if err != nil {
				return err
			}
			return withStore(func(db quorum.ReadOnlyKVStore) (interface{}, error) {
				return sigs.NextNonce(db, addr)
			})
		},
	}

	cmd.AddCommand(registry, proposal, proposals, approved, events, nonce)
	return cmd
}
