// Package config holds the shipmate run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the optional per-directory config file.
const FileName = "shipmate.toml"

// Default timing values. The web interface can take minutes on a first
// boot, so the readiness budget is deliberately generous; the +code reply
// arrives within seconds or not at all.
const (
	DefaultReadyTimeout = 600 * time.Second
	DefaultReadyPoll    = 2 * time.Second
	DefaultCodeTimeout  = 20 * time.Second
	DefaultCodePoll     = time.Second
	DefaultSettleDelay  = 5 * time.Second
	DefaultStartGrace   = 2 * time.Second
)

// shipNameRe matches an Urbit ship name without the leading sigil:
// lowercase phonemic syllables joined by hyphens (zod, sampel-palnet).
var shipNameRe = regexp.MustCompile(`^[a-z]+(-[a-z]+)*$`)

// Config is the explicit run configuration for the orchestrator.
// All fields have documented defaults; nothing is read from globals.
type Config struct {
	// Ship is the ship name without the ~ sigil (e.g. "zod", "sampel-palnet").
	Ship string

	// PierRoot is the directory piers live in. The pier itself is
	// PierRoot/Ship. Defaults to the current directory.
	PierRoot string

	// LogPath is the boot log file. Defaults to <pier>.boot.log.
	LogPath string

	// SessionName is the tmux session hosting the ship.
	// Defaults to "urbit-<ship>".
	SessionName string

	// ReadyTimeout / ReadyPoll bound the wait for the web interface.
	ReadyTimeout time.Duration
	ReadyPoll    time.Duration

	// CodeTimeout / CodePoll bound the wait for the +code reply.
	CodeTimeout time.Duration
	CodePoll    time.Duration

	// SettleDelay is how long to let the dojo settle before sending +code.
	SettleDelay time.Duration

	// StartGrace is how long after session creation the session must still
	// be alive for the launch to count as successful.
	StartGrace time.Duration

	// OpenBrowser controls the best-effort endpoint handoff.
	OpenBrowser bool

	// CopyCode controls the best-effort clipboard handoff.
	CopyCode bool
}

// fileConfig is the on-disk TOML schema.
type fileConfig struct {
	Ship struct {
		Name     string `toml:"name"`
		PierRoot string `toml:"pier_root"`
		Session  string `toml:"session"`
		Log      string `toml:"log"`
	} `toml:"ship"`

	Timeouts struct {
		ReadySecs  int `toml:"ready_secs"`
		CodeSecs   int `toml:"code_secs"`
		SettleSecs int `toml:"settle_secs"`
	} `toml:"timeouts"`

	Handoff struct {
		Browser   *bool `toml:"browser"`
		Clipboard *bool `toml:"clipboard"`
	} `toml:"handoff"`
}

// Default returns the configuration for a ship with all defaults applied.
func Default(ship string) Config {
	return Config{
		Ship:         ship,
		PierRoot:     ".",
		ReadyTimeout: DefaultReadyTimeout,
		ReadyPoll:    DefaultReadyPoll,
		CodeTimeout:  DefaultCodeTimeout,
		CodePoll:     DefaultCodePoll,
		SettleDelay:  DefaultSettleDelay,
		StartGrace:   DefaultStartGrace,
		OpenBrowser:  true,
		CopyCode:     true,
	}
}

// Load reads shipmate.toml from dir, if present, on top of defaults.
// Returns (Default(ship), nil) when the file does not exist.
func Load(dir, ship string) (Config, error) {
	cfg := Default(ship)

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	var fc fileConfig
	if _, err := toml.Decode(string(data), &fc); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	if cfg.Ship == "" {
		cfg.Ship = fc.Ship.Name
	}
	if fc.Ship.PierRoot != "" {
		cfg.PierRoot = fc.Ship.PierRoot
	}
	if fc.Ship.Session != "" {
		cfg.SessionName = fc.Ship.Session
	}
	if fc.Ship.Log != "" {
		cfg.LogPath = fc.Ship.Log
	}
	if fc.Timeouts.ReadySecs > 0 {
		cfg.ReadyTimeout = time.Duration(fc.Timeouts.ReadySecs) * time.Second
	}
	if fc.Timeouts.CodeSecs > 0 {
		cfg.CodeTimeout = time.Duration(fc.Timeouts.CodeSecs) * time.Second
	}
	if fc.Timeouts.SettleSecs > 0 {
		cfg.SettleDelay = time.Duration(fc.Timeouts.SettleSecs) * time.Second
	}
	if fc.Handoff.Browser != nil {
		cfg.OpenBrowser = *fc.Handoff.Browser
	}
	if fc.Handoff.Clipboard != nil {
		cfg.CopyCode = *fc.Handoff.Clipboard
	}

	return cfg, nil
}

// Finalize fills the fields derived from the ship name and validates.
// Call after flags and file values are merged.
func (c *Config) Finalize() error {
	if c.Ship == "" {
		return fmt.Errorf("no ship name given")
	}
	if !shipNameRe.MatchString(c.Ship) {
		return fmt.Errorf("invalid ship name %q (expected e.g. zod or sampel-palnet, without the ~)", c.Ship)
	}
	if c.SessionName == "" {
		c.SessionName = "urbit-" + c.Ship
	}
	if c.PierRoot == "" {
		c.PierRoot = "."
	}
	if c.LogPath == "" {
		c.LogPath = c.PierPath() + ".boot.log"
	}
	return nil
}

// PierPath returns the pier directory for the configured ship.
func (c *Config) PierPath() string {
	return filepath.Join(c.PierRoot, c.Ship)
}

// LockPath returns the per-pier lock file guarding concurrent orchestrators.
func (c *Config) LockPath() string {
	return c.PierPath() + ".boot.lock"
}

// StatusPath returns the per-pier run status file.
func (c *Config) StatusPath() string {
	return c.PierPath() + ".boot-status.json"
}
