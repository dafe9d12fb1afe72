package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amoghd24/footagents-ai-game/internal/config"
	"github.com/amoghd24/footagents-ai-game/internal/logging"
)

const rootLongDesc string = `footagents runs conversations with football legends.

Each message flows through a graph of nodes: knowledge retrieval, context
summarization, in-character response generation and conversation
compaction once a dialogue grows long.

  footagents serve                          Run the HTTP API
  footagents chat --character messi "Hi"    Send one message
  footagents characters                     List the legends
  footagents seed                           Load the knowledge base`

const rootShortDesc string = "footagents - football legend conversations"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "footagents",
		Short:         rootShortDesc,
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "Path to a config file (default: ./footagents.yaml)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newChatCmd(flags))
	cmd.AddCommand(newCharactersCmd(flags))
	cmd.AddCommand(newSeedCmd(flags))

	return cmd
}

// load reads the configuration and builds a logger writing to the
// command's error stream.
func (f *globalFlags) load(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	v, err := config.InitViper(f.configFile)
	if err != nil {
		return nil, nil, err
	}
	if f.logLevel != "" {
		v.Set("log.level", f.logLevel)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewWithWriters(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	}, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
