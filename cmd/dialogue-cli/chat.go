package main

import (
	"bufio"
	"fmt"
	"strings"

	"booking-dialogue/internal/booking"
	"booking-dialogue/internal/catalog"
	"booking-dialogue/internal/conversation"
	"booking-dialogue/internal/dialogue/engine"
	"booking-dialogue/internal/dialogue/workflow"
	"booking-dialogue/internal/state"

	"github.com/spf13/cobra"
)

var (
	chatAgent        string
	chatWorkflowFile string
)

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatAgent, "agent", "car-rental", "assistant to talk to")
	chatCmd.Flags().StringVar(&chatWorkflowFile, "workflows", "", "workflow definition file (default: built-in workflows)")
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation with an assistant",
	Long: `Reads one message per line and prints the assistant's reply.

Commands:
  /reset   start a new conversation
  /quit    leave the chat

Examples:
  dialogue-cli chat --agent car-rental --catalog configs/agents
  echo "SUV-t szeretnék foglalni" | dialogue-cli chat --plain`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := newLogger()

	registry, err := workflow.LoadRegistry(chatWorkflowFile, "")
	if err != nil {
		return fmt.Errorf("load workflows: %w", err)
	}

	agents := catalog.NewStore(catalog.NewFileSource(catalogDir), 0, log)
	svc := conversation.NewService(engine.New(registry), agents, state.NewMemoryStore(0), nil, nil, log)
	renderer := newMarkdownRenderer(plainText)

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	conversationID := ""

	fmt.Fprintf(out, "%s asszisztens (kilépés: /quit)\n\n", chatAgent)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			if conversationID != "" {
				if err := svc.Reset(ctx, conversationID); err != nil {
					return err
				}
			}
			conversationID = ""
			fmt.Fprintln(out, "Új beszélgetés.")
			continue
		}

		resp, err := svc.Chat(ctx, conversation.Request{
			AgentType:      chatAgent,
			ConversationID: conversationID,
			Message:        line,
		})
		if err != nil {
			return err
		}
		conversationID = resp.ConversationID
		if resp.BookingID != "" {
			resp.BookingID = booking.Reference(resp.BookingID)
		}

		fmt.Fprintln(out, renderer.Render(turnMarkdown(resp)))
		fmt.Fprintln(out)
	}
}
