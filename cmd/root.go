package cmd

import (
	"fmt"
	"os"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"staycation/config"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "staycation",
	Short:         "Staycation property rental API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.AddCommand(serveCmd(), migrateCmd(), sweepCmd())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtime holds the connections shared by every command.
type runtime struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
	rdb *redis.Client
	cld *cloudinary.Cloudinary
}

func bootstrap(withCache bool) (*runtime, error) {
	if err := config.LoadEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := config.NewLogger(cfg.Server.Env, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("configuration loaded", cfg.Fields()...)

	rt := &runtime{cfg: cfg, log: log}
	if rt.db, err = config.ConnectDB(cfg.DB, log); err != nil {
		return nil, err
	}
	if !withCache {
		return rt, nil
	}
	if rt.rdb, err = config.ConnectRedis(cfg.Redis); err != nil {
		// the API works without the cache
		log.Warn("redis unavailable, caching disabled", zap.Error(err))
	}
	if rt.cld, err = config.ConnectCloudinary(cfg.Cloudinary); err != nil {
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) close() {
	if rt.rdb != nil {
		_ = rt.rdb.Close()
	}
	if sqlDB, err := rt.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rt.log.Sync()
}
