package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/treloar/keepsake/internal/config"
	"github.com/treloar/keepsake/internal/game"
	"github.com/treloar/keepsake/internal/prose"
	"github.com/treloar/keepsake/internal/server"
	sig "github.com/treloar/keepsake/internal/signal"
	"github.com/treloar/keepsake/internal/store"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "keepsake.yaml", "Path to config file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}

	// Check for OPENAI_API_KEY env override
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}

	// Resolve database path
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Live biosignal feed
	feed := sig.NewFeed(
		sig.WithPeriod(time.Duration(cfg.Signal.TickMillis)*time.Millisecond),
		sig.WithMagnitude(cfg.Signal.Magnitude),
		sig.WithHistorySize(cfg.Signal.HistorySize),
	)
	feed.Start()
	defer feed.Stop()

	// Prose client; absent key degrades to canned fallback text
	var gen *prose.Generator
	if cfg.OpenAI.APIKey != "" {
		gen = prose.NewGenerator(prose.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens))
		fmt.Fprintf(os.Stderr, "  prose: openai (%s)\n", cfg.OpenAI.Model)
	} else {
		gen = prose.NewGenerator(nil)
		fmt.Fprintln(os.Stderr, "warning: OPENAI_API_KEY not set, prose generation uses fallback text")
	}

	eng := game.NewEngine(db, feed, cfg.Game.RewardProbabilities, cfg.Signal.HistorySize, cfg.Game.MaxTrials)

	srv := server.New(db, feed, eng, gen, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "keepsake serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
