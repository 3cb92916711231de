package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/cardboard/internal/dependencies/uuid"
	"github.com/mcoot/cardboard/internal/protocol"
)

// Jira export columns
const (
	columnIssueType = "Issue Type"
	columnIssueKey  = "Issue key"
	columnSummary   = "Summary"
)

// Imported cards are stacked down from the top-left of the board
const (
	importOriginX = -200
	importOriginY = -200
	importStepY   = 20
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <session> <csv>",
		Short: "Import cards from a Jira CSV export",
		Long: `Create one card per row of a Jira CSV export.

The issue type becomes the card category, the issue key its title and the
summary its text. All cards are sent in a single batch.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			ids := uuid.New()
			cards, err := ParseJiraCSV(f, func() string { return newCardID(ids) })
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				return errors.New("no rows to import")
			}

			return withSession(cmd, args[0], func(sock *Socket) error {
				return sock.Send(protocol.TypeUpdateCards, protocol.UpdateCards{Cards: cards})
			}, fmt.Sprintf("Imported %d cards", len(cards)))
		},
	}
}

// ParseJiraCSV turns a Jira CSV export into card patches keyed by new card ids
func ParseJiraCSV(r io.Reader, newID func() string) (map[string]any, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		// Jira sometimes prefixes the first column with a byte order mark
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}
	for _, required := range []string{columnIssueType, columnIssueKey, columnSummary} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		if i := columns[name]; i < len(row) {
			return row[i]
		}
		return ""
	}

	cards := make(map[string]any)
	y := float64(importOriginY)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		cards[newID()] = map[string]any{
			"x": float64(importOriginX),
			"y": y,
			"content": map[string]any{
				"category": strings.ToLower(field(row, columnIssueType)),
				"title":    field(row, columnIssueKey),
				"content":  field(row, columnSummary),
			},
		}
		y += importStepY
	}

	return cards, nil
}
