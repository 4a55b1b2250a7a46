package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gourdian25/gourdianclaims"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel  string
	redisAddr string
	logger    *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "gourdianclaims",
		Short: "Issue and verify claim tokens",
		Long: `gourdianclaims issues and verifies HS256 claim tokens.

Configuration is read from GOURDIAN_JWT_* environment variables and an
optional .env file in the working directory.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.logger = newLogger(cmd, opts.logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.redisAddr, "redis-addr", "", "cache verified claims in this Redis server")

	cmd.AddCommand(newIssueCmd(opts), newVerifyCmd(opts), newSecretCmd())
	return cmd
}

func newLogger(cmd *cobra.Command, level string) *slog.Logger {
	var slogLevel slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		slogLevel = slog.LevelDebug
	case "INFO":
		slogLevel = slog.LevelInfo
	case "ERROR":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slogLevel}))
}

// newManager loads the environment configuration, applies override when set
// and builds a Manager with an optional Redis claims cache.
func (o *rootOptions) newManager(ctx context.Context, override func(*gourdianclaims.Config)) (*gourdianclaims.Manager, func(), error) {
	config, err := gourdianclaims.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if override != nil {
		override(&config)
	}
	o.logger.DebugContext(ctx, "configuration loaded", slog.String("config", config.String()))

	managerOpts := []gourdianclaims.Option{gourdianclaims.WithLogger(o.logger)}
	cleanup := func() {}

	if o.redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: o.redisAddr})
		cache, err := gourdianclaims.NewRedisClaimsCache(client)
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to set up claims cache: %w", err)
		}
		managerOpts = append(managerOpts, gourdianclaims.WithClaimsCache(cache, gourdianclaims.DefaultCacheTTL))
		cleanup = func() { _ = client.Close() }
	}

	manager, err := gourdianclaims.NewManager(gourdianclaims.StaticConfig(config), managerOpts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return manager, cleanup, nil
}

// validityOverride sets the validity period only when the flag was given.
func validityOverride(cmd *cobra.Command, validity time.Duration) func(*gourdianclaims.Config) {
	if !cmd.Flags().Changed("validity") {
		return nil
	}
	return func(config *gourdianclaims.Config) {
		config.ValidityPeriod = validity.Milliseconds()
	}
}
