package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the data directory.
const FileName = "colorplane.config"

// EnvPrefix prefixes environment overrides, e.g. COLORPLANE_LISTEN_ADDR.
const EnvPrefix = "COLORPLANE"

type Config struct {
	DataDir               string `json:"data_dir" mapstructure:"data_dir"`
	ListenAddr            string `json:"listen_addr" mapstructure:"listen_addr"`
	LogLevel              string `json:"log_level" mapstructure:"log_level"`
	LogFormat             string `json:"log_format" mapstructure:"log_format"`
	SiteTitle             string `json:"site_title" mapstructure:"site_title"`
	SiteDescription       string `json:"site_description" mapstructure:"site_description"`
	ContentSecurityPolicy string `json:"content_security_policy" mapstructure:"content_security_policy"`
}

func Default() Config {
	return Config{
		DataDir:               ".",
		ListenAddr:            ":8080",
		LogLevel:              "info",
		LogFormat:             "console",
		SiteTitle:             "colorplane",
		SiteDescription:       "Agent color styles",
		ContentSecurityPolicy: "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; object-src 'none'",
	}
}

// Load reads the config file from dataDir, falling back to defaults when it
// does not exist. Environment variables override both.
func Load(dataDir string) (Config, error) {
	def := Default()

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("listen_addr", def.ListenAddr)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("site_title", def.SiteTitle)
	v.SetDefault("site_description", def.SiteDescription)
	v.SetDefault("content_security_policy", def.ContentSecurityPolicy)

	cfgPath := filepath.Join(dataDir, FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", cfgPath, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}

	return cfg, nil
}

func Save(cfg Config) error {
	cfgPath := filepath.Join(cfg.DataDir, FileName)

	// Create directory if it doesn't exist
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	tmp := cfgPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, cfgPath)
}
