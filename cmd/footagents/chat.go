package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amoghd24/footagents-ai-game/conversation"
)

const chatShortDesc string = "Send one message to a legend"

const chatLongDesc string = `Send one message to a football legend and print the reply.

Pass --conversation to continue an earlier conversation; with a persistent
storage backend the history survives between invocations.

  footagents chat --character messi "What's your advice for young players?"`

type chatCommander struct {
	flags          *globalFlags
	characterID    string
	conversationID string
	asJSON         bool
}

func newChatCmd(flags *globalFlags) *cobra.Command {
	cmder := &chatCommander{flags: flags}

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&cmder.characterID, "character", "", "Legend id (see 'footagents characters')")
	cmd.Flags().StringVar(&cmder.conversationID, "conversation", "", "Conversation id to continue")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print the full response as JSON")
	_ = cmd.MarkFlagRequired("character")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command, message string) error {
	cfg, logger, err := c.flags.load(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing dependencies", zap.Error(err))
		}
	}()

	resp, err := a.service.Chat(cmd.Context(), conversation.ChatRequest{
		Message:        message,
		CharacterID:    c.characterID,
		ConversationID: c.conversationID,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if c.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	profile, err := a.service.Character(cmd.Context(), resp.CharacterID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s\n", profile.Name, resp.Response)
	fmt.Fprintf(out, "(conversation %s)\n", resp.ConversationID)
	return nil
}
