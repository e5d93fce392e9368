package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/atlas-foundry/mtlx-go-sdk/exporter"
	"github.com/atlas-foundry/mtlx-go-sdk/mtlx"
)

const defaultConfigPath = "mtlx-export.toml"

// Config mirrors mtlx-export.toml.
type Config struct {
	Export ExportConfig `toml:"export"`
	Log    LogConfig    `toml:"log"`
	Serve  ServeConfig  `toml:"serve"`
}

type ExportConfig struct {
	OnlySelected bool   `toml:"only_selected"`
	Indent       string `toml:"indent"`
	Header       bool   `toml:"header"`
	Version      string `toml:"version"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type ServeConfig struct {
	Addr      string `toml:"addr"`
	BodyLimit string `toml:"body_limit"`
}

// DefaultConfig is used for keys the file leaves out, and when there is no file.
func DefaultConfig() Config {
	return Config{
		Export: ExportConfig{Indent: mtlx.DefaultIndent, Header: true},
		Log:    LogConfig{Level: "info"},
		Serve:  ServeConfig{Addr: ":8080", BodyLimit: "8M"},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error;
// unknown keys are.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("read config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ExportOptions converts the [export] table into exporter options.
func (c Config) ExportOptions(log *slog.Logger) exporter.Options {
	enc := mtlx.EncodeOptions{Indent: c.Export.Indent, IncludeHeader: c.Export.Header}
	if enc.Indent == "" {
		enc.Indent = mtlx.DefaultIndent
	}
	return exporter.Options{
		OnlySelected: c.Export.OnlySelected,
		Version:      c.Export.Version,
		Encode:       enc,
		Logger:       log,
	}
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return lvl, nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
