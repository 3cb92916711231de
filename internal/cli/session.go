package cli

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/cardboard/internal/api/request"
	"github.com/mcoot/cardboard/internal/api/response"
	"github.com/mcoot/cardboard/internal/protocol"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session operations",
	}

	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionSavedCmd())
	cmd.AddCommand(newSessionStartCmd())
	cmd.AddCommand(newSessionStopCmd())
	cmd.AddCommand(newSessionTurnCmd())

	return cmd
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.SessionList
			if err := client.Get(cmd.Context(), "/api/v1/sessions", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionCreateCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.CreateSessionRequest{HostPassword: password}
			if len(args) == 1 {
				req.Name = args[0]
			}

			var result response.CreatedSession
			if err := client.Post(cmd.Context(), "/api/v1/sessions", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Host password")

	return cmd
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <session>",
		Short: "Show a session's cards and participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session
			if err := client.Get(cmd.Context(), "/api/v1/sessions/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionSavedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "saved <session>",
		Short: "List cards saved from a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.SavedCardList
			if err := client.Get(cmd.Context(), "/api/v1/sessions/"+url.PathEscape(args[0])+"/saved-cards", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

// hostLogin claims host rights for this client on the joined session
func hostLogin(sock *Socket, password string) error {
	var ack protocol.HostLoginAck
	if err := sock.Request(protocol.TypeHostLogin, protocol.HostLogin{Password: password}, &ack, nil); err != nil {
		return err
	}
	if ack.Error != "" {
		return errors.New(ack.Error)
	}
	if !ack.Matched {
		return errors.New("host password did not match")
	}
	return nil
}

func newSessionStartCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "start <session>",
		Short: "Start turn taking (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sock, err := dialSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = sock.Close() }()

			if cmd.Flags().Changed("password") {
				if err := hostLogin(sock, password); err != nil {
					return err
				}
			}

			var ack protocol.StartAck
			if err := sock.Request(protocol.TypeStartSession, nil, &ack, nil); err != nil {
				return err
			}
			if ack.Error != "" {
				return errors.New(ack.Error)
			}

			NewOutput(cfg.Output).Print(ack)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Host password; log in as host first")

	return cmd
}

func newSessionStopCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "stop <session>",
		Short: "Stop turn taking (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sock, err := dialSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = sock.Close() }()

			if cmd.Flags().Changed("password") {
				if err := hostLogin(sock, password); err != nil {
					return err
				}
			}

			var ack protocol.StopAck
			if err := sock.Request(protocol.TypeStopSession, nil, &ack, nil); err != nil {
				return err
			}
			if ack.Error != "" {
				return errors.New(ack.Error)
			}

			stoppedAt := ""
			if ack.Timestamp != nil {
				stoppedAt = " at " + ack.Timestamp.Format(time.RFC3339)
			}
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Session %s stopped%s", args[0], stoppedAt))
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Host password; log in as host first")

	return cmd
}

func newSessionTurnCmd() *cobra.Command {
	var (
		index int
		next  bool
	)

	cmd := &cobra.Command{
		Use:   "turn <session>",
		Short: "Pass the turn to a position in the turn order, or to the next participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !next {
				return withSession(cmd, args[0], func(sock *Socket) error {
					return sock.Send(protocol.TypeUpdateCurrentTurn, protocol.UpdateCurrentTurn{Index: index})
				}, fmt.Sprintf("Turn passed to position %d", index))
			}

			sock, err := dialSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = sock.Close() }()

			var ack protocol.AdvanceTurnAck
			if err := sock.Request(protocol.TypeAdvanceTurn, nil, &ack, nil); err != nil {
				return err
			}
			if ack.Error != "" {
				return errors.New(ack.Error)
			}
			if ack.Index == nil {
				return errors.New("advance_turn ack carried no index")
			}
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Turn passed to position %d", *ack.Index))
			return nil
		},
	}

	cmd.Flags().IntVar(&index, "index", 0, "Turn order position")
	cmd.Flags().BoolVar(&next, "next", false, "Pass the turn to the next participant in order")
	cmd.MarkFlagsOneRequired("index", "next")
	cmd.MarkFlagsMutuallyExclusive("index", "next")

	return cmd
}
