package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	PGDSN          string
	Input          string
	RPCURL         string
	BaseToken      string
	BaseDecimals   int32
	RewardToken    string
	RewardDecimals int32
	OutputToken    string
	Feeds          []string
	StaticPrices   []string
	StateFile      string
	RecomputeFrom  string
	MaxRetries     int
	RetryBackoff   time.Duration
	SaveEvery      int
	LogLevel       string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STAKEMETRICS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("in", "./data/staking_events.jsonl")
	v.SetDefault("base-decimals", 18)
	v.SetDefault("reward-decimals", 18)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("save-every", 500)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		PGDSN:          v.GetString("pg-dsn"),
		Input:          v.GetString("in"),
		RPCURL:         v.GetString("rpc"),
		BaseToken:      v.GetString("base-token"),
		BaseDecimals:   v.GetInt32("base-decimals"),
		RewardToken:    v.GetString("reward-token"),
		RewardDecimals: v.GetInt32("reward-decimals"),
		OutputToken:    v.GetString("output-token"),
		Feeds:          getStringSlice(v, "feed"),
		StaticPrices:   getStringSlice(v, "static-price"),
		StateFile:      v.GetString("state-file"),
		RecomputeFrom:  v.GetString("recompute-from"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		SaveEvery:      v.GetInt("save-every"),
		LogLevel:       v.GetString("log-level"),
	}

	return cfg, nil
}

// ParseTimestamp accepts unix seconds or an RFC3339 time; empty means zero.
func ParseTimestamp(value string) (uint64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	if unix, err := strconv.ParseUint(value, 10, 64); err == nil {
		return unix, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return uint64(parsed.Unix()), nil
}

// ParsePairs splits "key=value" entries into a map.
func ParsePairs(items []string) (map[string]string, error) {
	out := make(map[string]string, len(items))
	for _, item := range items {
		key, value, found := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !found || key == "" || value == "" {
			return nil, fmt.Errorf("invalid key=value pair %q", item)
		}
		out[key] = value
	}
	return out, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
