package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/cardboard/internal/protocol"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "watch <session>",
		Short: "Stream live updates from a session",
		Long: `Join the session over the websocket and print every update pushed by
the server.

Updates include:
  - update_card: A card was created, moved, edited or deleted
  - update_cards: Several cards changed at once, or the board was cleared
  - update_participant: A participant joined or changed their name
  - update_turns: The turn order was set
  - update_current_turn: The turn passed to someone else
  - update_session: The session was started or stopped
  - server_message: A notice from the server

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchSession(cmd, args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output updates as JSON lines")

	return cmd
}

// WatchEvent is one printed update
type WatchEvent struct {
	Time    time.Time       `json:"time"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func watchSession(cmd *cobra.Command, sessionID string, jsonOutput bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sock, err := Dial(ctx, cfg.ServerURL, cfg.ClientID)
	if err != nil {
		return err
	}

	snapshot, err := sock.Join(sessionID)
	if err != nil {
		_ = sock.Close()
		return err
	}

	// Closing the socket unblocks Next
	go func() {
		<-ctx.Done()
		_ = sock.Close()
	}()

	if !jsonOutput {
		fmt.Printf("Connected to session %s (%s): %d cards, %d participants, %s\n",
			snapshot.ID, snapshot.Name, len(snapshot.Cards), len(snapshot.Participants), snapshot.State)
	}

	for {
		f, err := sock.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrClosed) {
				if !jsonOutput {
					fmt.Println("\nDisconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}
		printFrame(f, jsonOutput)
	}
}

func printFrame(f Frame, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		data, _ := json.Marshal(WatchEvent{Time: now, Type: f.Type, Payload: f.Payload})
		fmt.Println(string(data))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	fmt.Printf("[%s] %s: %s\n", timestamp, f.Type, describeFrame(f))
}

// describeFrame renders a push as a single line
func describeFrame(f Frame) string {
	if f.Type == protocol.TypeServerMessage {
		return serverMessageText(f)
	}

	display := string(f.Payload)
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	return strings.ReplaceAll(display, "\n", " ")
}

func serverMessageText(f Frame) string {
	var msg protocol.ServerMessage
	if err := json.Unmarshal(f.Payload, &msg); err != nil || msg.Message == "" {
		return string(f.Payload)
	}
	return msg.Message
}

