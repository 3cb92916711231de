package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mcoot/cardboard/internal/api/response"
	"github.com/mcoot/cardboard/internal/protocol"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.SessionList:
		o.printSessionList(v)
	case response.CreatedSession:
		fmt.Printf("Session: %s (%s)\n", v.ID, v.Name)
	case response.Session:
		o.printSession(v)
	case response.SavedCardList:
		o.printSavedCards(v)
	case protocol.StartAck:
		o.printStartAck(v)
	case HealthResult:
		fmt.Printf("Status: %s (%s, %dms)\n", v.Status, v.Server, v.LatencyMS)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printSessionList(l response.SessionList) {
	if len(l.Sessions) == 0 {
		fmt.Println("No sessions")
		return
	}
	for _, s := range l.Sessions {
		fmt.Printf("%-12s %-30s %d participants\n", s.ID, s.Name, s.ParticipantCount)
	}
}

func (o *Output) printSession(s response.Session) {
	fmt.Printf("Session: %s (%s)\n", s.Name, s.ID)
	fmt.Printf("State: %s\n", s.State)
	if s.StartedAt != nil {
		fmt.Printf("Started: %s\n", s.StartedAt.Format(time.RFC3339))
	}
	if s.StoppedAt != nil {
		fmt.Printf("Stopped: %s\n", s.StoppedAt.Format(time.RFC3339))
	}

	names := make(map[string]string, len(s.Participants))
	fmt.Printf("Participants (%d):\n", len(s.Participants))
	for _, p := range s.Participants {
		names[p.ID] = p.Name
		hostStr := ""
		if p.Host {
			hostStr = " [host]"
		}
		fmt.Printf("  - %s (%s)%s\n", p.Name, p.ID, hostStr)
	}

	if len(s.TurnOrder) > 0 {
		order := make([]string, len(s.TurnOrder))
		for i, id := range s.TurnOrder {
			name := names[id]
			if name == "" {
				name = id
			}
			if i == s.CurrentTurn {
				name = "*" + name
			}
			order[i] = name
		}
		fmt.Printf("Turn order: %s\n", strings.Join(order, ", "))
	}

	fmt.Printf("Cards (%d):\n", len(s.Cards))
	for _, c := range s.Cards {
		o.printCard(c)
	}
}

func (o *Output) printCard(c response.Card) {
	fmt.Printf("  - %s at (%g, %g)", c.ID, c.X, c.Y)
	if category, ok := c.Content["category"].(string); ok && category != "" {
		fmt.Printf(" [%s]", category)
	}
	if title, ok := c.Content["title"].(string); ok && title != "" {
		fmt.Printf(" %s", title)
	}
	fmt.Println()

	// Any other content fields, in a stable order
	keys := make([]string, 0, len(c.Content))
	for k := range c.Content {
		if k != "category" && k != "title" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("      %s: %v\n", k, c.Content[k])
	}
}

func (o *Output) printSavedCards(l response.SavedCardList) {
	if len(l.SavedCards) == 0 {
		fmt.Println("No saved cards")
		return
	}
	for _, s := range l.SavedCards {
		fmt.Printf("Saved by %s at %s:\n", s.SavedBy, s.SavedAt.Format(time.RFC3339))
		o.printCard(s.Card)
	}
}

func (o *Output) printStartAck(a protocol.StartAck) {
	if a.Timestamp != nil {
		fmt.Printf("Session started at %s\n", a.Timestamp.Format(time.RFC3339))
	}
	fmt.Printf("Turn order: %s\n", strings.Join(a.TurnOrder, ", "))
}
