package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is looked up in the scanned directory when --config is not
// given.
const ConfigFileName = ".jackdir.toml"

// Config holds the settings that can come from the config file, the
// environment, or flags, in increasing order of precedence.
type Config struct {
	IncludeHidden  bool      `toml:"include_hidden"`
	RespectIgnore  bool      `toml:"respect_ignore"`
	ExtraIgnore    []string  `toml:"extra_ignore"`
	Listen         string    `toml:"listen"`
	HistoryDB      string    `toml:"history_db"`
	TokenEstimator string    `toml:"token_estimator"`
	Log            LogConfig `toml:"log"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		RespectIgnore:  true,
		Listen:         ":6789",
		HistoryDB:      defaultHistoryDB(),
		TokenEstimator: "simple",
	}
}

func defaultHistoryDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "jackdir", "history.db")
}

// LoadConfig resolves the configuration for args.
func LoadConfig(args *Args) (*Config, error) {
	cfg := DefaultConfig()

	path := args.Config
	explicit := path != ""
	if !explicit {
		path = filepath.Join(args.Root(), ConfigFileName)
	}
	if err := loadConfigFile(&cfg, path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	applyFlags(&cfg, args)
	return &cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	decoder := toml.NewDecoder(f)
	md, err := decoder.Decode(cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys in config %s: %v", path, undecoded)
	}
	return nil
}

// applyEnv overrides cfg with JACKDIR_* variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	bools := map[string]*bool{
		"JACKDIR_INCLUDE_HIDDEN": &cfg.IncludeHidden,
		"JACKDIR_RESPECT_IGNORE": &cfg.RespectIgnore,
		"JACKDIR_LOG_PRETTY":     &cfg.Log.Pretty,
	}
	for key, dst := range bools {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = b
	}

	strs := map[string]*string{
		"JACKDIR_LISTEN":          &cfg.Listen,
		"JACKDIR_HISTORY_DB":      &cfg.HistoryDB,
		"JACKDIR_TOKEN_ESTIMATOR": &cfg.TokenEstimator,
		"JACKDIR_LOG_LEVEL":       &cfg.Log.Level,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("JACKDIR_EXTRA_IGNORE"); ok {
		cfg.ExtraIgnore = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func applyFlags(cfg *Config, args *Args) {
	if args.IncludeHidden {
		cfg.IncludeHidden = true
	}
	if args.NoIgnore {
		cfg.RespectIgnore = false
	}
	if args.TokenEstimator != "" {
		cfg.TokenEstimator = args.TokenEstimator
	}
	if args.Debug {
		cfg.Log.Level = "debug"
		cfg.Log.Pretty = true
	}
	if args.Serve != nil && args.Serve.Listen != "" {
		cfg.Listen = args.Serve.Listen
	}
	if cfg.Log.Level == "" {
		// request logs are the point of the server's output
		if args.Serve != nil {
			cfg.Log.Level = "info"
		} else {
			cfg.Log.Level = "warn"
		}
	}
}
