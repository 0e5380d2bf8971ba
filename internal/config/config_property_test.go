package config

import (
	"fmt"
	"os"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// validLogLevels are the accepted log level values.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// durationEnvKeys lists all Config fields that are parsed as time.Duration.
var durationEnvKeys = []string{"PRUNE_SLACK", "PRUNE_TICK_INTERVAL"}

// allEnvKeys is every config-related env var key.
var allEnvKeys = append([]string{"LOG_LEVEL", "PRUNE_CUTOFF_HOUR", "PRUNE_CUTOFF_MINUTE"}, durationEnvKeys...)

// unsetAllConfigEnv clears all config env vars.
func unsetAllConfigEnv() {
	for _, key := range allEnvKeys {
		os.Unsetenv(key)
	}
}

// genDurationString generates a valid Go duration string (e.g. "3s", "500ms", "2m").
func genDurationString() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		unit := rapid.SampledFrom([]string{"ms", "s", "m"}).Draw(t, "unit")
		val := rapid.IntRange(1, 600).Draw(t, "val")
		return fmt.Sprintf("%d%s", val, unit)
	})
}

// parseDurationOrDefault parses a duration string, returning the default if empty.
func parseDurationOrDefault(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, _ := time.ParseDuration(s)
	return d
}

func TestProperty_ValidConfigParsing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		unsetAllConfigEnv()
		defer unsetAllConfigEnv()

		cutoffHourStr := rapid.OneOf(
			rapid.Just(""),
			rapid.Map(rapid.IntRange(0, 23), func(v int) string { return fmt.Sprintf("%d", v) }),
		).Draw(t, "cutoffHour")

		cutoffMinuteStr := rapid.OneOf(
			rapid.Just(""),
			rapid.Map(rapid.IntRange(0, 59), func(v int) string { return fmt.Sprintf("%d", v) }),
		).Draw(t, "cutoffMinute")

		logLevel := rapid.OneOf(
			rapid.Just(""),
			rapid.SampledFrom(validLogLevels),
		).Draw(t, "logLevel")

		durStrs := make(map[string]string, len(durationEnvKeys))
		for _, key := range durationEnvKeys {
			durStrs[key] = rapid.OneOf(
				rapid.Just(""),
				genDurationString(),
			).Draw(t, key)
		}

		if cutoffHourStr != "" {
			os.Setenv("PRUNE_CUTOFF_HOUR", cutoffHourStr)
		}
		if cutoffMinuteStr != "" {
			os.Setenv("PRUNE_CUTOFF_MINUTE", cutoffMinuteStr)
		}
		if logLevel != "" {
			os.Setenv("LOG_LEVEL", logLevel)
		}
		for _, key := range durationEnvKeys {
			if durStrs[key] != "" {
				os.Setenv(key, durStrs[key])
			}
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned error for valid inputs: %v", err)
		}

		expectedHour := 16
		if cutoffHourStr != "" {
			fmt.Sscanf(cutoffHourStr, "%d", &expectedHour)
		}
		if cfg.PruneCutoffHour != expectedHour {
			t.Fatalf("PruneCutoffHour = %d, want %d", cfg.PruneCutoffHour, expectedHour)
		}

		expectedMinute := 0
		if cutoffMinuteStr != "" {
			fmt.Sscanf(cutoffMinuteStr, "%d", &expectedMinute)
		}
		if cfg.PruneCutoffMinute != expectedMinute {
			t.Fatalf("PruneCutoffMinute = %d, want %d", cfg.PruneCutoffMinute, expectedMinute)
		}

		expectedLogLevel := "info"
		if logLevel != "" {
			expectedLogLevel = logLevel
		}
		if cfg.LogLevel != expectedLogLevel {
			t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, expectedLogLevel)
		}

		type durField struct {
			envKey string
			got    time.Duration
			defVal time.Duration
		}
		durFields := []durField{
			{"PRUNE_SLACK", cfg.PruneSlack, 100 * time.Millisecond},
			{"PRUNE_TICK_INTERVAL", cfg.PruneTickInterval, 30 * time.Second},
		}
		for _, df := range durFields {
			expected := parseDurationOrDefault(durStrs[df.envKey], df.defVal)
			if df.got != expected {
				t.Fatalf("%s = %v, want %v (env=%q)", df.envKey, df.got, expected, durStrs[df.envKey])
			}
		}
	})
}

func TestProperty_InvalidCutoffHourReturnsError(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		unsetAllConfigEnv()
		defer unsetAllConfigEnv()

		invalid := rapid.OneOf(
			rapid.IntRange(24, 1000),
			rapid.IntRange(-1000, -1),
		).Draw(t, "invalidHour")

		os.Setenv("PRUNE_CUTOFF_HOUR", fmt.Sprintf("%d", invalid))

		_, err := Load()
		if err == nil {
			t.Fatalf("Load() should return error for out-of-range PRUNE_CUTOFF_HOUR %d", invalid)
		}
	})
}

func TestProperty_InvalidLogLevelReturnsError(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		unsetAllConfigEnv()
		defer unsetAllConfigEnv()

		invalidLevel := rapid.StringMatching(`[a-z]{1,20}`).Filter(func(s string) bool {
			for _, v := range validLogLevels {
				if s == v {
					return false
				}
			}
			return s != ""
		}).Draw(t, "invalidLevel")

		os.Setenv("LOG_LEVEL", invalidLevel)

		_, err := Load()
		if err == nil {
			t.Fatalf("Load() should return error for invalid LOG_LEVEL %q", invalidLevel)
		}
	})
}

func TestProperty_InvalidDurationReturnsError(t *testing.T) {
	for _, key := range durationEnvKeys {
		t.Run(key, func(t *testing.T) {
			rapid.Check(t, func(t *rapid.T) {
				unsetAllConfigEnv()
				defer unsetAllConfigEnv()

				invalidDur := rapid.OneOf(
					rapid.StringMatching(`[a-zA-Z]{2,10}`),
					rapid.Just("notaduration"),
					rapid.Just("5x"),
					rapid.Just("abc123"),
				).Filter(func(s string) bool {
					if s == "" {
						return false
					}
					_, err := time.ParseDuration(s)
					return err != nil
				}).Draw(t, "invalidDuration")

				os.Setenv(key, invalidDur)

				_, err := Load()
				if err == nil {
					t.Fatalf("Load() should return error for invalid %s=%q", key, invalidDur)
				}
			})
		})
	}
}
