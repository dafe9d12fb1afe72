package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const seedLongDesc string = `Load the built-in football knowledge documents into the configured
retrieval index. Documents are keyed by id, so seeding twice replaces
rather than duplicates them.`

type seedCommander struct {
	flags *globalFlags
}

func newSeedCmd(flags *globalFlags) *cobra.Command {
	cmder := &seedCommander{flags: flags}

	return &cobra.Command{
		Use:   "seed",
		Short: "Load the knowledge base",
		Long:  seedLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}
}

func (c *seedCommander) run(cmd *cobra.Command) error {
	cfg, logger, err := c.flags.load(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Retrieval.Backend == "none" {
		return errors.New("retrieval is disabled (retrieval.backend is none)")
	}

	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing index", zap.Error(err))
		}
	}()

	emb, idx, err := a.openKnowledge(cmd.Context())
	if err != nil {
		return err
	}
	a.onClose(emb.Close)
	a.onClose(idx.Close)

	n, err := a.seed(cmd.Context(), emb, idx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d documents into %s\n", n, cfg.Retrieval.Backend)
	return nil
}
