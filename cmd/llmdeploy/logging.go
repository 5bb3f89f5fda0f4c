package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"llmdeploy/internal/config"
)

const logLevelEnvKey = "LLMDEPLOY_LOG_LEVEL"

// levelChoice is the raw level text and where it came from.
type levelChoice struct {
	raw    string
	source string
}

// configureLoggerForCLI installs the default logger. An invalid flag is an
// error; invalid env or config values fall back to the default with a warning.
func configureLoggerForCLI(flagLevel, configLevel string) (string, error) {
	choice := selectLogLevel(flagLevel, os.Getenv(logLevelEnvKey), configLevel)
	level, err := parseLogLevel(choice.raw)
	if err == nil {
		slog.SetDefault(newLogger(os.Stderr, level))
		return "", nil
	}

	switch choice.source {
	case "flag":
		return "", fmt.Errorf("invalid --log-level %q", flagLevel)
	case "env":
		slog.SetDefault(newLogger(os.Stderr, slog.LevelInfo))
		return fmt.Sprintf("warning: invalid %s=%q; defaulting to %s", logLevelEnvKey, choice.raw, config.DefaultLogLevel), nil
	default:
		slog.SetDefault(newLogger(os.Stderr, slog.LevelInfo))
		return fmt.Sprintf("warning: invalid log_level=%q; defaulting to %s", choice.raw, config.DefaultLogLevel), nil
	}
}

func selectLogLevel(flagLevel, envLevel, configLevel string) levelChoice {
	switch {
	case strings.TrimSpace(flagLevel) != "":
		return levelChoice{raw: flagLevel, source: "flag"}
	case strings.TrimSpace(envLevel) != "":
		return levelChoice{raw: envLevel, source: "env"}
	case strings.TrimSpace(configLevel) != "":
		return levelChoice{raw: configLevel, source: "config"}
	default:
		return levelChoice{source: "default"}
	}
}

func parseLogLevel(raw string) (slog.Level, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return slog.LevelInfo, nil
	}
	if strings.EqualFold(value, "warning") {
		value = "warn"
	}
	if numeric, err := strconv.Atoi(value); err == nil {
		return slog.Level(numeric), nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
