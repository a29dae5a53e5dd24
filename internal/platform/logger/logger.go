package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a sugared zap logger and scrubs sensitive fields before
// they reach the sink.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
	scrub         *scrubber
}

// New builds a logger for mode ("production", "development" or "test").
// LOG_LEVEL overrides the mode's default level. LOG_REDACTION_ENABLED=false
// turns scrubbing off and LOG_HASH_SALT salts hashed identifiers.
func New(mode string) (*Logger, error) {
	scrub := newScrubber(os.Getenv("LOG_REDACTION_ENABLED"), os.Getenv("LOG_HASH_SALT"))

	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	case "test":
		return &Logger{SugaredLogger: zap.NewNop().Sugar(), scrub: scrub}, nil
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	if lvl := strings.TrimSpace(os.Getenv("LOG_LEVEL")); lvl != "" {
		parsed, err := zapcore.ParseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zl.Sugar(), scrub: scrub}, nil
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, kv ...interface{}) {
	l.SugaredLogger.Debugw(msg, l.scrub.pairs(kv)...)
}
func (l *Logger) Info(msg string, kv ...interface{}) {
	l.SugaredLogger.Infow(msg, l.scrub.pairs(kv)...)
}
func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.SugaredLogger.Warnw(msg, l.scrub.pairs(kv)...)
}
func (l *Logger) Error(msg string, kv ...interface{}) {
	l.SugaredLogger.Errorw(msg, l.scrub.pairs(kv)...)
}
func (l *Logger) Fatal(msg string, kv ...interface{}) {
	l.SugaredLogger.Fatalw(msg, l.scrub.pairs(kv)...)
}

func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.scrub.pairs(kv)...), scrub: l.scrub}
}

type fieldAction int

const (
	keep fieldAction = iota
	redact
	hash
)

const redacted = "[REDACTED]"

// Guardian contact data and credentials are dropped. Identifiers are
// hashed so log lines for one account still correlate.
var fieldRules = []struct {
	fragment string
	action   fieldAction
}{
	{"senha", redact},
	{"password", redact},
	{"token", redact},
	{"authorization", redact},
	{"secret", redact},
	{"email", redact},
	{"telefone", redact},
	{"imagem", redact},
	{"login_id", hash},
	{"account_id", hash},
	{"crianca_id", hash},
	{"child_id", hash},
}

type scrubber struct {
	enabled bool
	salt    string
}

func newScrubber(enabled, salt string) *scrubber {
	s := &scrubber{enabled: true, salt: strings.TrimSpace(salt)}
	switch strings.ToLower(strings.TrimSpace(enabled)) {
	case "0", "false", "no", "off":
		s.enabled = false
	}
	return s
}

func (s *scrubber) pairs(kv []interface{}) []interface{} {
	if s == nil || !s.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i+1 == len(kv) {
			out = append(out, kv[i])
			break
		}
		key := stringify(kv[i])
		out = append(out, key, s.value(key, kv[i+1]))
	}
	return out
}

func (s *scrubber) value(key string, val interface{}) interface{} {
	switch actionFor(key) {
	case redact:
		return redacted
	case hash:
		return s.hash(val)
	}
	switch v := val.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = s.value(k, inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, inner := range v {
			out[i] = s.value("", inner)
		}
		return out
	case string:
		if looksLikeJWT(v) {
			return redacted
		}
	}
	return val
}

func actionFor(key string) fieldAction {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return keep
	}
	for _, r := range fieldRules {
		if strings.Contains(key, r.fragment) {
			return r.action
		}
	}
	return keep
}

func (s *scrubber) hash(val interface{}) string {
	raw := stringify(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func looksLikeJWT(v string) bool {
	parts := strings.Split(v, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
