package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/cardboard/internal/dependencies/uuid"
	"github.com/mcoot/cardboard/internal/protocol"
)

func newCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Card operations",
		Long: `Add, move, delete and archive cards on a session's board.

Each command joins the session as this client, so edits on a started
session are only accepted during this client's turn or from the host.`,
	}

	cmd.AddCommand(newCardAddCmd())
	cmd.AddCommand(newCardMoveCmd())
	cmd.AddCommand(newCardDeleteCmd())
	cmd.AddCommand(newCardClearCmd())
	cmd.AddCommand(newCardSaveCmd())

	return cmd
}

// newCardID returns a uuid without dashes, the form browser clients use
func newCardID(ids uuid.UUID) string {
	return strings.ReplaceAll(ids.NewUUID(), "-", "")
}

func newCardAddCmd() *cobra.Command {
	var (
		id       string
		x, y     float64
		category string
		title    string
		body     string
	)

	cmd := &cobra.Command{
		Use:   "add <session>",
		Short: "Add a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				id = newCardID(uuid.New())
			}

			content := map[string]any{"category": category, "title": title, "content": body}
			patch := map[string]any{"x": x, "y": y, "content": content}

			return withSession(cmd, args[0], func(sock *Socket) error {
				return sock.Send(protocol.TypeUpdateCard, protocol.UpdateCard{ID: id, Card: patch})
			}, fmt.Sprintf("Added card %s", id))
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Card id (generated when empty)")
	cmd.Flags().Float64Var(&x, "x", 0, "X position")
	cmd.Flags().Float64Var(&y, "y", 0, "Y position")
	cmd.Flags().StringVar(&category, "category", "", "Card category")
	cmd.Flags().StringVar(&title, "title", "", "Card title")
	cmd.Flags().StringVar(&body, "body", "", "Card text")

	return cmd
}

func newCardMoveCmd() *cobra.Command {
	var x, y float64

	cmd := &cobra.Command{
		Use:   "move <session> <card>",
		Short: "Move a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := map[string]any{}
			if cmd.Flags().Changed("x") {
				patch["x"] = x
			}
			if cmd.Flags().Changed("y") {
				patch["y"] = y
			}
			if len(patch) == 0 {
				return fmt.Errorf("at least one of --x or --y is required")
			}

			return withSession(cmd, args[0], func(sock *Socket) error {
				return sock.Send(protocol.TypeUpdateCard, protocol.UpdateCard{ID: args[1], Card: patch})
			}, fmt.Sprintf("Moved card %s", args[1]))
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "New X position")
	cmd.Flags().Float64Var(&y, "y", 0, "New Y position")

	return cmd
}

func newCardDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session> <card>",
		Short: "Delete a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, args[0], func(sock *Socket) error {
				return sock.Send(protocol.TypeUpdateCard, protocol.UpdateCard{ID: args[1], Card: nil})
			}, fmt.Sprintf("Deleted card %s", args[1]))
		},
	}
}

func newCardClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <session>",
		Short: "Remove every card from the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, args[0], func(sock *Socket) error {
				return sock.Send(protocol.TypeUpdateCards, protocol.UpdateCards{Cards: nil})
			}, "Board cleared")
		},
	}
}

func newCardSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <session> <card>",
		Short: "Archive a snapshot of a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, args[0], func(sock *Socket) error {
				return sock.Send(protocol.TypeSaveCard, protocol.SaveCard{ID: args[1]})
			}, fmt.Sprintf("Saved card %s", args[1]))
		},
	}
}

// withSession joins the session, runs fn, then waits for the server to
// process it. Server notices received meanwhile are returned as an error.
func withSession(cmd *cobra.Command, sessionID string, fn func(*Socket) error, done string) error {
	sock, err := dialSession(cmd, sessionID)
	if err != nil {
		return err
	}
	defer func() { _ = sock.Close() }()

	if err := fn(sock); err != nil {
		return err
	}

	var notices []string
	err = sock.Sync(func(f Frame) {
		if f.Type == protocol.TypeServerMessage {
			notices = append(notices, serverMessageText(f))
		}
	})
	if err != nil {
		return err
	}
	if len(notices) > 0 {
		return fmt.Errorf("%s", strings.Join(notices, "; "))
	}

	NewOutput(cfg.Output).PrintMessage(done)
	return nil
}
