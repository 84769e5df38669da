// Package commands wires the trace command line: the HTTP server, the MCP
// server, the terminal UI and a few one-shot journal commands.
package commands

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/trace/internal/ai"
	"github.com/klabast/wb-services/trace/internal/calendar"
	"github.com/klabast/wb-services/trace/internal/config"
	"github.com/klabast/wb-services/trace/internal/logging"
	"github.com/klabast/wb-services/trace/internal/store"
)

// Version is set at build time with -ldflags "-X ...commands.Version=..."
var Version = "dev"

var envFile string

var rootCmd = &cobra.Command{
	Use:   "trace",
	Short: "Work journal with week and month views",
	Long: `trace keeps one journal entry per day (what happened, mood, people,
plan for tomorrow) and summarizes it by week and month.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(
		serveCmd,
		mcpCmd,
		tuiCmd,
		weekCmd,
		calendarCmd,
		exportCmd,
		importCmd,
		hashPasswordCmd,
		versionCmd,
	)
	rootCmd.PersistentFlags().StringVarP(&envFile, "env", "e", ".env", "Environment file")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

// deps is what every command needs: settings, log output and the
// opened store
type deps struct {
	cfg   config.Config
	log   *logging.Output
	store *store.Store
	cal   *calendar.Calendar
}

// boot loads the configuration, points the logger at its outputs and
// opens the store. quiet keeps log lines off stdout.
func boot(quiet bool) (*deps, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	out, err := logging.Setup(logging.Options{
		File:       cfg.Log,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Quiet:      quiet,
	})
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	storeCfg := store.DefaultConfig()
	storeCfg.DataDir = cfg.DataDir
	s, err := store.New(storeCfg)
	if err != nil {
		_ = out.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &deps{
		cfg:   cfg,
		log:   out,
		store: s,
		cal:   calendar.New(calendar.SystemClock{}),
	}, nil
}

// Close releases the store and the log file
func (rt *deps) Close() {
	if err := rt.store.Close(); err != nil {
		log.Printf("❌ Error closing store: %v", err)
	}
	if err := rt.log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", err)
	}
}

// model returns the Gemini client when a key is configured, nil otherwise
func (rt *deps) model(ctx context.Context) (ai.Model, error) {
	if !rt.cfg.AIEnabled() {
		return nil, nil
	}
	g, err := ai.NewGemini(ctx, rt.cfg.GeminiAPIKey, rt.cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ AI enabled (model: %s)", g.Name())
	return g, nil
}
