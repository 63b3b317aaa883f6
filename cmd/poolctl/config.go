package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

const (
	encodingHex    = "hex"
	encodingBase64 = "base64"
)

// serumDexV3 is the default order book program pools trade on.
var serumDexV3 = solana.MustPublicKeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")

// poolctl config.toml key mapping.
type fileConfig struct {
	ProgramID      string `toml:"program_id"`
	DexProgramID   string `toml:"dex_program_id"`
	OutputEncoding string `toml:"output_encoding"`
	LogLevel       string `toml:"log_level"`
}

type config struct {
	ProgramID      solana.PublicKey
	DexProgramID   solana.PublicKey
	OutputEncoding string
	LogLevel       zerolog.Level
}

func defaultConfig() config {
	return config{
		DexProgramID:   serumDexV3,
		OutputEncoding: encodingHex,
		LogLevel:       zerolog.InfoLevel,
	}
}

// loadConfig overlays the keys defined in the TOML file at path on the
// defaults. An empty path returns the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load poolctl config: %w", err)
	}

	var errs []error
	if meta.IsDefined("program_id") {
		key, err := solana.PublicKeyFromBase58(strings.TrimSpace(raw.ProgramID))
		if err != nil {
			errs = append(errs, fmt.Errorf("program_id: %w", err))
		}
		cfg.ProgramID = key
	}
	if meta.IsDefined("dex_program_id") {
		key, err := solana.PublicKeyFromBase58(strings.TrimSpace(raw.DexProgramID))
		if err != nil {
			errs = append(errs, fmt.Errorf("dex_program_id: %w", err))
		}
		cfg.DexProgramID = key
	}
	if meta.IsDefined("output_encoding") {
		cfg.OutputEncoding = strings.ToLower(strings.TrimSpace(raw.OutputEncoding))
		if err := checkEncoding(cfg.OutputEncoding); err != nil {
			errs = append(errs, fmt.Errorf("output_encoding: %w", err))
		}
	}
	if meta.IsDefined("log_level") {
		level, err := zerolog.ParseLevel(strings.TrimSpace(raw.LogLevel))
		if err != nil {
			errs = append(errs, fmt.Errorf("log_level: %w", err))
		}
		cfg.LogLevel = level
	}

	if len(errs) > 0 {
		return config{}, fmt.Errorf("load poolctl config %q: %w", path, errors.Join(errs...))
	}
	return cfg, nil
}

func checkEncoding(encoding string) error {
	switch encoding {
	case encodingHex, encodingBase64:
		return nil
	}
	return fmt.Errorf("unsupported encoding %q (expected hex or base64)", encoding)
}
