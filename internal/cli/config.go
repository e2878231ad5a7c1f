package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/gofrs/flock"
	"github.com/sdassow/atomic"
	"github.com/spf13/cobra"
)

// ConfigPath is the location of the config file relative to the user's
// config directory.
const ConfigPath = "console/config.json"

var ErrUnknownConfigKey = errors.New("unknown config key: must be one of url, workspace or token")

type (
	// ConfigStore is a JSON file holding default settings for the CLI. Access
	// is guarded by a lock file so that concurrent invocations do not clobber
	// one another's changes.
	ConfigStore struct {
		path string
		lock *flock.Flock
	}

	Config struct {
		URL       string `json:"url,omitempty"`
		Workspace string `json:"workspace,omitempty"`
		Token     string `json:"token,omitempty"`
	}
)

func NewConfigStore() (*ConfigStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return newConfigStore(filepath.Join(dir, ConfigPath)), nil
}

func newConfigStore(path string) *ConfigStore {
	return &ConfigStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Load reads the config. A missing file yields an empty config.
func (s *ConfigStore) Load() (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, err
	}
	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("locking config: %w", err)
	}
	defer s.lock.Unlock()

	return s.read()
}

// Set updates a single key of the config.
func (s *ConfigStore) Set(key, value string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("locking config: %w", err)
	}
	defer s.lock.Unlock()

	cfg, err := s.read()
	if err != nil {
		return err
	}
	switch key {
	case "url":
		cfg.URL = value
	case "workspace":
		cfg.Workspace = value
	case "token":
		cfg.Token = value
	default:
		return ErrUnknownConfigKey
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// token is a secret
	return atomic.WriteFile(s.path, bytes.NewReader(b), atomic.DefaultFileMode(0o600))
}

func (s *ConfigStore) read() (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &cfg, nil
	} else if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return &cfg, nil
}

func (a *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Default settings for the CLI",
		// config commands do not talk to the server
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	}
	cmd.AddCommand(&cobra.Command{
		Use:           "set [url|workspace|token] [value]",
		Short:         "Set a default setting",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "show",
		Short:         "Show default settings",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.store.Load()
			if err != nil {
				return err
			}
			token := ""
			if cfg.Token != "" {
				token = "********"
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "url\t%s\n", cfg.URL)
			fmt.Fprintf(w, "workspace\t%s\n", cfg.Workspace)
			fmt.Fprintf(w, "token\t%s\n", token)
			return w.Flush()
		},
	})
	return cmd
}
