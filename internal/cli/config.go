package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mcoot/cardboard/internal/config"
	"github.com/mcoot/cardboard/internal/dependencies/uuid"
)

// Config holds CLI configuration
type Config struct {
	ServerURL    string
	ClientID     string
	ClientIDFile string
	Output       string
	Verbose      bool
}

// DefaultConfig returns a Config with values from the environment
func DefaultConfig() (*Config, error) {
	env, err := config.LoadClient()
	if err != nil {
		return nil, err
	}

	idFile := env.ClientIDFile
	if idFile == "" {
		idFile = defaultClientIDFile()
	}
	return &Config{
		ServerURL:    env.Server,
		ClientID:     env.ClientID,
		ClientIDFile: idFile,
		Output:       "text",
		Verbose:      false,
	}, nil
}

// LoadClientID reads the persistent client id, creating one on first use.
// The same id makes the CLI the same participant across runs.
func (c *Config) LoadClientID(ids uuid.UUID) error {
	if c.ClientID != "" {
		return nil
	}

	data, err := os.ReadFile(c.ClientIDFile)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			c.ClientID = id
			return nil
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	return c.SaveClientID(ids.NewUUID())
}

// SaveClientID saves the client id to the id file
func (c *Config) SaveClientID(id string) error {
	c.ClientID = id

	dir := filepath.Dir(c.ClientIDFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.ClientIDFile, []byte(id), 0600)
}

func defaultClientIDFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cardboard/client_id"
	}
	return filepath.Join(home, ".cardboard", "client_id")
}
