package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stakemetrics/internal/chain"
	"stakemetrics/internal/config"
	"stakemetrics/internal/metrics"
	"stakemetrics/internal/oracle"
	"stakemetrics/internal/pipeline"
	"stakemetrics/internal/storage"
	"stakemetrics/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "stakemetrics",
		Short:        "Staking pool financial metrics aggregator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Apply decoded staking events to the metrics store",
		RunE:  runPipeline,
	}

	runCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	runCmd.Flags().String("in", "./data/staking_events.jsonl", "input staking events JSONL")
	runCmd.Flags().String("rpc", "", "chain RPC URL for price feeds")
	runCmd.Flags().String("base-token", "", "base token address (balance slot 1)")
	runCmd.Flags().Int32("base-decimals", 18, "base token decimals")
	runCmd.Flags().String("reward-token", "", "reward token address (balance slot 0)")
	runCmd.Flags().Int32("reward-decimals", 18, "reward token decimals")
	runCmd.Flags().String("output-token", "", "output token address (protocol and pool id)")
	runCmd.Flags().StringSlice("feed", nil, "token=feed price feed mappings (comma-separated)")
	runCmd.Flags().StringSlice("static-price", nil, "token=price fixed prices, bypasses the rpc oracle")
	runCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	runCmd.Flags().String("recompute-from", "", "recompute from timestamp (unix seconds or RFC3339)")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts per event")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().Int("save-every", 500, "events between state saves")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}
	if cfg.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.BaseToken == "" || cfg.RewardToken == "" || cfg.OutputToken == "" {
		return fmt.Errorf("base-token, reward-token, and output-token are required")
	}

	recomputeFrom, err := config.ParseTimestamp(cfg.RecomputeFrom)
	if err != nil {
		return fmt.Errorf("parse recompute-from: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	priceOracle, closeOracle, err := buildOracle(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeOracle()

	var stateStore pipeline.StateStore
	if cfg.StateFile != "" {
		stateStore = &pipeline.FileStateStore{Path: cfg.StateFile}
	} else {
		stateStore = &pipeline.DBStateStore{Store: store, Name: "pipeline"}
	}

	engine := metrics.NewEngine(store, priceOracle, metrics.TokenConfig{
		BaseToken:      cfg.BaseToken,
		BaseDecimals:   cfg.BaseDecimals,
		RewardToken:    cfg.RewardToken,
		RewardDecimals: cfg.RewardDecimals,
		OutputToken:    cfg.OutputToken,
	}, logger)

	source := storage.NewJsonlEventSource(cfg.Input)

	runner := pipeline.NewRunner(pipeline.Config{
		RecomputeFrom: recomputeFrom,
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  cfg.RetryBackoff,
		StateStore:    stateStore,
		SaveEvery:     cfg.SaveEvery,
	}, engine, source, logger)

	logger.Info("pipeline start",
		zap.String("input", cfg.Input),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("base_token", cfg.BaseToken),
		zap.String("reward_token", cfg.RewardToken),
		zap.String("output_token", cfg.OutputToken),
		zap.Uint64("recompute_from", recomputeFrom),
	)

	return runner.Run(ctx)
}

// buildOracle returns a static oracle when fixed prices are configured,
// otherwise a feed oracle backed by the chain RPC.
func buildOracle(ctx context.Context, cfg config.Config, logger *zap.Logger) (metrics.Oracle, func(), error) {
	if len(cfg.StaticPrices) > 0 {
		pairs, err := config.ParsePairs(cfg.StaticPrices)
		if err != nil {
			return nil, nil, fmt.Errorf("parse static prices: %w", err)
		}
		prices := make(map[string]decimal.Decimal, len(pairs))
		for token, value := range pairs {
			price, err := decimal.NewFromString(value)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid static price for %s: %w", token, err)
			}
			prices[token] = price
		}
		return oracle.NewStaticOracle(prices), func() {}, nil
	}

	if cfg.RPCURL == "" {
		return nil, nil, fmt.Errorf("rpc url is required unless static prices are set")
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rpc: %w", err)
	}

	chainID, err := chainClient.ChainID(ctx)
	if err != nil {
		chainClient.Close()
		return nil, nil, fmt.Errorf("chain id: %w", err)
	}
	logger.Info("connected to chain", zap.String("chain_id", chainID.String()))

	feeds, err := config.ParsePairs(cfg.Feeds)
	if err != nil {
		chainClient.Close()
		return nil, nil, fmt.Errorf("parse feeds: %w", err)
	}

	feedOracle, err := oracle.NewFeedOracle(chainClient, feeds)
	if err != nil {
		chainClient.Close()
		return nil, nil, err
	}
	return feedOracle, chainClient.Close, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
