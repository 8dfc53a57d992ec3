// Package config loads engine settings.
//
// Load order: Defaults, then an optional file (.yaml/.yml or .cue), then
// SCRIPTPLAY_* environment variables, then validation of the merged result
// against the CUE schema in schema.cue.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue/cuecontext"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCRIPTPLAY_"

// Settings configures the engine and the CLI around it.
type Settings struct {
	AutoPlayDelay time.Duration `yaml:"auto_play_delay" json:"auto_play_delay" env:"AUTO_PLAY_DELAY"`
	TextSpeed     int           `yaml:"text_speed" json:"text_speed" env:"TEXT_SPEED"`
	VoicePrefix   string        `yaml:"voice_prefix" json:"voice_prefix" env:"VOICE_PREFIX"`
	AssetGuard    time.Duration `yaml:"asset_guard" json:"asset_guard" env:"ASSET_GUARD"`
	MaxJumpChain  int           `yaml:"max_jump_chain" json:"max_jump_chain" env:"MAX_JUMP_CHAIN"`
	FrameInterval time.Duration `yaml:"frame_interval" json:"frame_interval" env:"FRAME_INTERVAL"`
	ScriptDir     string        `yaml:"script_dir" json:"script_dir" env:"SCRIPT_DIR"`
	Database      string        `yaml:"database" json:"database" env:"DATABASE"`
	Logging       Logging       `yaml:"logging" json:"logging" envPrefix:"LOG_"`
}

// Logging configures the CLI's slog handler.
type Logging struct {
	Level  string `yaml:"level" json:"level" env:"LEVEL"`
	Format string `yaml:"format" json:"format" env:"FORMAT"`
	File   string `yaml:"file" json:"file" env:"FILE"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		AutoPlayDelay: 1500 * time.Millisecond,
		TextSpeed:     40,
		VoicePrefix:   "voice/",
		AssetGuard:    2 * time.Second,
		MaxJumpChain:  64,
		FrameInterval: 16 * time.Millisecond,
		ScriptDir:     ".",
		Database:      "saves.db",
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds Settings from defaults, the file at path (if non-empty) and
// the environment, then validates the result.
func Load(path string) (Settings, error) {
	s := Defaults()
	if path != "" {
		if err := mergeFile(&s, path); err != nil {
			return Settings{}, err
		}
	}
	if err := env.ParseWithOptions(&s, env.Options{Prefix: EnvPrefix}); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if err := Validate(s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func mergeFile(s *Settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
	case ".cue":
		data, err = cueToJSON(data, path)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	return decodeYAML(s, data, path)
}

// decodeYAML overlays data onto s. JSON input is accepted as YAML.
func decodeYAML(s *Settings, data []byte, path string) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// cueToJSON evaluates a CUE config file into concrete JSON.
func cueToJSON(src []byte, path string) ([]byte, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cueFilename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile config %s: %w", path, err)
	}
	out, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("evaluate config %s: %w", path, err)
	}
	return out, nil
}

// SlogLevel maps Logging.Level to a slog level; unknown names mean info.
func (l Logging) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
