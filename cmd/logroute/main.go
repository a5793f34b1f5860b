package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	replaycmd "github.com/rzbill/logroute/internal/cmd/replay"
	cfgpkg "github.com/rzbill/logroute/internal/config"
	"github.com/rzbill/logroute/pkg/router"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "logroute",
		Short: "Log routing pipeline CLI",
		Long:  "logroute validates routing configs, replays broker backup files, and emits test records.",
	}

	// validate
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a config file and build the pipeline it describes",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := cfgpkg.Load(path)
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)
			rt, err := cfgpkg.Build(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()
			fmt.Printf("ok: %d formatters, %d handlers, %d loggers\n",
				len(cfg.Formatters), len(cfg.Handlers), len(cfg.Loggers))
			return nil
		},
	}
	validateCmd.Flags().String("config", "", "Path to config file (YAML or JSON)")
	rootCmd.AddCommand(validateCmd)

	// replay
	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Publish a broker backup file back to Kafka",
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, _ := cmd.Flags().GetString("backup")
			brokers, _ := cmd.Flags().GetString("brokers")
			topic, _ := cmd.Flags().GetString("topic")
			batchSize, _ := cmd.Flags().GetInt("batch-size")
			truncate, _ := cmd.Flags().GetBool("truncate")

			if backup == "" {
				backup = cfgpkg.DefaultBackupPath()
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return replaycmd.Run(ctx, replaycmd.Options{
				BackupPath: backup,
				Brokers:    cfgpkg.SplitBrokers(brokers),
				Topic:      topic,
				BatchSize:  batchSize,
				Truncate:   truncate,
			})
		},
	}
	replayCmd.Flags().String("backup", "", "Backup file to replay (default: the standard backup path)")
	replayCmd.Flags().String("brokers", "localhost:9092", "Comma-separated Kafka broker addresses")
	replayCmd.Flags().String("topic", "", "Kafka topic to publish to")
	replayCmd.Flags().Int("batch-size", replaycmd.DefaultBatchSize, "Messages per publish call")
	replayCmd.Flags().Bool("truncate", false, "Empty the backup file after a full replay")
	rootCmd.AddCommand(replayCmd)

	// emit
	emitCmd := &cobra.Command{
		Use:   "emit MESSAGE",
		Short: "Send one record through a configured pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			loggerName, _ := cmd.Flags().GetString("logger")
			levelStr, _ := cmd.Flags().GetString("level")

			level, err := router.ParseLevel(levelStr)
			if err != nil {
				return err
			}
			cfg, err := cfgpkg.Load(path)
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)
			rt, err := cfgpkg.Build(cfg)
			if err != nil {
				return err
			}
			if err := rt.Emit(loggerName, router.NewRecord(level, args[0], 0)); err != nil {
				rt.Close()
				return err
			}
			return rt.Close()
		},
	}
	emitCmd.Flags().String("config", "", "Path to config file (YAML or JSON)")
	emitCmd.Flags().String("logger", router.RootLogger, "Logger name to emit through")
	emitCmd.Flags().String("level", "INFO", "Record level")
	rootCmd.AddCommand(emitCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
