package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/mcoot/cardboard/internal/dependencies/mocks"
)

type CLISuite struct {
	suite.Suite
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("card%d", n)
	}
}

func (s *CLISuite) TestParseJiraCSV() {
	input := "Summary,Issue key,Issue id,Issue Type\n" +
		"Flaky deploys,OPS-1,1001,Bug\n" +
		"\"Faster CI, please\",OPS-2,1002,Story\n"

	cards, err := ParseJiraCSV(strings.NewReader(input), sequentialIDs())
	s.Require().NoError(err)
	s.Require().Len(cards, 2)

	s.Equal(map[string]any{
		"x": -200.0,
		"y": -200.0,
		"content": map[string]any{
			"category": "bug",
			"title":    "OPS-1",
			"content":  "Flaky deploys",
		},
	}, cards["card1"])

	second := cards["card2"].(map[string]any)
	s.Equal(-200.0, second["x"])
	s.Equal(-180.0, second["y"])
	s.Equal("Faster CI, please", second["content"].(map[string]any)["content"])
	s.Equal("story", second["content"].(map[string]any)["category"])
}

func (s *CLISuite) TestParseJiraCSVByteOrderMark() {
	input := "\ufeffIssue Type,Issue key,Summary\nTask,OPS-3,Tidy up\n"

	cards, err := ParseJiraCSV(strings.NewReader(input), sequentialIDs())
	s.Require().NoError(err)
	s.Require().Len(cards, 1)
	s.Equal("task", cards["card1"].(map[string]any)["content"].(map[string]any)["category"])
}

func (s *CLISuite) TestParseJiraCSVMissingColumn() {
	_, err := ParseJiraCSV(strings.NewReader("Issue Type,Summary\nBug,Broken\n"), sequentialIDs())
	s.Require().Error(err)
	s.Contains(err.Error(), "Issue key")
}

func (s *CLISuite) TestParseJiraCSVShortRow() {
	cards, err := ParseJiraCSV(strings.NewReader("Issue Type,Issue key,Summary\nBug,OPS-4\n"), sequentialIDs())
	s.Require().NoError(err)
	s.Equal("", cards["card1"].(map[string]any)["content"].(map[string]any)["content"])
}

func (s *CLISuite) TestParseJiraCSVEmpty() {
	cards, err := ParseJiraCSV(strings.NewReader(""), sequentialIDs())
	s.Require().NoError(err)
	s.Empty(cards)
}

func (s *CLISuite) TestWebsocketURL() {
	cases := map[string]string{
		"http://localhost:8080":      "ws://localhost:8080/ws",
		"https://board.example.com/": "wss://board.example.com/ws",
		"http://host/cardboard":      "ws://host/cardboard/ws",
		"ws://localhost:8080":        "ws://localhost:8080/ws",
	}
	for in, want := range cases {
		got, err := websocketURL(in)
		s.Require().NoError(err, in)
		s.Equal(want, got, in)
	}

	_, err := websocketURL("ftp://host")
	s.Error(err)
}

func (s *CLISuite) TestLoadClientIDCreatesFile() {
	ctrl := gomock.NewController(s.T())
	ids := mocks.NewMockUUID(ctrl)
	ids.EXPECT().NewUUID().Return("11111111-2222-3333-4444-555555555555").Times(1)

	path := filepath.Join(s.T().TempDir(), "nested", "client_id")
	c := &Config{ClientIDFile: path}

	s.Require().NoError(c.LoadClientID(ids))
	s.Equal("11111111-2222-3333-4444-555555555555", c.ClientID)

	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Equal("11111111-2222-3333-4444-555555555555", string(data))

	// A second load reuses the stored id
	again := &Config{ClientIDFile: path}
	s.Require().NoError(again.LoadClientID(ids))
	s.Equal(c.ClientID, again.ClientID)
}

func (s *CLISuite) TestLoadClientIDPrefersExplicit() {
	ctrl := gomock.NewController(s.T())
	ids := mocks.NewMockUUID(ctrl)

	c := &Config{ClientID: "explicit", ClientIDFile: filepath.Join(s.T().TempDir(), "client_id")}
	s.Require().NoError(c.LoadClientID(ids))
	s.Equal("explicit", c.ClientID)
	s.NoFileExists(c.ClientIDFile)
}

func (s *CLISuite) TestNewCardID() {
	ctrl := gomock.NewController(s.T())
	ids := mocks.NewMockUUID(ctrl)
	ids.EXPECT().NewUUID().Return("aaaa-bbbb-cccc")

	s.Equal("aaaabbbbcccc", newCardID(ids))
}
