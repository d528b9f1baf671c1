package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

const (
	fileName = "auth.cfg"
	section  = "habitica"
)

// Config models auth.cfg.
type Config struct {
	URL        string
	Login      string
	Password   string
	Checklists bool
}

// Load reads and validates the auth config from a workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("auth config %s not found; create it with a [Habitica] section (url, login, password)", path)
		}
		return nil, err
	}
	return FromFile(path)
}

// FromFile reads an INI auth config from the given path.
func FromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	v.SetDefault(section+".checklists", false)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("invalid auth config %s: %w", path, err)
	}
	cfg := &Config{
		URL:        v.GetString(section + ".url"),
		Login:      v.GetString(section + ".login"),
		Password:   v.GetString(section + ".password"),
		Checklists: v.GetBool(section + ".checklists"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate ensures the config has everything needed to talk to the service.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("habitica.url is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("habitica.url must be an absolute URL, got %q", c.URL)
	}
	if c.Login == "" {
		return fmt.Errorf("habitica.login is required")
	}
	if _, err := uuid.Parse(c.Login); err != nil {
		return fmt.Errorf("habitica.login must be a user id (uuid): %w", err)
	}
	if c.Password == "" {
		return fmt.Errorf("habitica.password is required")
	}
	return nil
}

// Path returns the auth config path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, fileName)
}
