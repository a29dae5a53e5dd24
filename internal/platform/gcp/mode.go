package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

// Mode selects the real GCS API or a fake-gcs-server emulator.
type Mode string

const (
	ModeGCS      Mode = "gcs"
	ModeEmulator Mode = "gcs_emulator"
)

// StorageConfig is the resolved object storage mode.
type StorageConfig struct {
	Mode         Mode
	EmulatorHost string
	// Inferred is set when no mode was given and the emulator host chose it.
	Inferred bool
}

func (c StorageConfig) Emulated() bool { return c.Mode == ModeEmulator }

// ErrorCode classifies storage configuration failures for startup logs.
type ErrorCode string

const (
	CodeInvalidMode         ErrorCode = "invalid_mode"
	CodeMissingEmulatorHost ErrorCode = "missing_emulator_host"
	CodeInvalidEmulatorHost ErrorCode = "invalid_emulator_host"
	CodeInvalidPublicURL    ErrorCode = "invalid_public_url"
	CodeConnectFailed       ErrorCode = "connect_failed"
)

type ConfigError struct {
	Code  ErrorCode
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	switch e.Code {
	case CodeInvalidMode:
		return fmt.Sprintf("object storage: unknown mode %q (want %q or %q)", e.Value, ModeGCS, ModeEmulator)
	case CodeMissingEmulatorHost:
		return fmt.Sprintf("object storage: mode %q needs STORAGE_EMULATOR_HOST", ModeEmulator)
	case CodeInvalidEmulatorHost:
		return fmt.Sprintf("object storage: STORAGE_EMULATOR_HOST %q is not an absolute URL", e.Value)
	case CodeInvalidPublicURL:
		return fmt.Sprintf("object storage: public base URL %q is not an absolute URL", e.Value)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("object storage: %s: %v", e.Code, e.Cause)
		}
		return fmt.Sprintf("object storage: %s", e.Code)
	}
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// ResolveStorageConfig validates the raw mode. An empty mode picks the
// emulator when a host is configured and real GCS otherwise.
func ResolveStorageConfig(rawMode, emulatorHost string) (StorageConfig, error) {
	cfg := StorageConfig{EmulatorHost: strings.TrimRight(strings.TrimSpace(emulatorHost), "/")}
	switch mode := Mode(strings.ToLower(strings.TrimSpace(rawMode))); mode {
	case "":
		cfg.Mode, cfg.Inferred = ModeGCS, cfg.EmulatorHost != ""
		if cfg.Inferred {
			cfg.Mode = ModeEmulator
		}
	case ModeGCS, ModeEmulator:
		cfg.Mode = mode
	default:
		return cfg, &ConfigError{Code: CodeInvalidMode, Value: strings.TrimSpace(rawMode)}
	}
	if !cfg.Emulated() {
		return cfg, nil
	}
	if cfg.EmulatorHost == "" {
		return cfg, &ConfigError{Code: CodeMissingEmulatorHost}
	}
	if !absoluteURL(cfg.EmulatorHost) {
		return cfg, &ConfigError{Code: CodeInvalidEmulatorHost, Value: cfg.EmulatorHost}
	}
	return cfg, nil
}

func absoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
