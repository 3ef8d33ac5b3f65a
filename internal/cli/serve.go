package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/PinkDiamond1/blob-simulation/internal/config"
	"github.com/PinkDiamond1/blob-simulation/internal/server"
	"github.com/PinkDiamond1/blob-simulation/internal/sim"
	"github.com/PinkDiamond1/blob-simulation/internal/store"
)

var serveFlags struct {
	config    string
	board     string
	knowledge string
	noHistory bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulation continuously behind the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.config, "config", "", "config file (YAML)")
	serveCmd.Flags().StringVar(&serveFlags.board, "board", "", "board file (required)")
	serveCmd.Flags().StringVar(&serveFlags.knowledge, "knowledge", "", "knowledge file (required)")
	serveCmd.Flags().BoolVar(&serveFlags.noHistory, "no-history", false, "disable run recording")
	serveCmd.MarkFlagRequired("board")
	serveCmd.MarkFlagRequired("knowledge")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveFlags.config)
	if err != nil {
		return err
	}

	b, m, seed, err := buildColony(serveFlags.board, serveFlags.knowledge, cfg.Simulation.Seed)
	if err != nil {
		return err
	}
	runner := sim.NewRunner(m, b)
	defer runner.Stop()

	var db *store.DB
	if !serveFlags.noHistory {
		dbPath := cfg.Database.Path
		if dbPath == "" {
			dbPath, err = store.DefaultDBPath()
			if err != nil {
				return fmt.Errorf("resolve db path: %w", err)
			}
		}
		db, err = store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		defer db.Close()

		run, err := db.StartRun(seed, serveFlags.board, serveFlags.knowledge)
		if err != nil {
			return err
		}
		runner.AttachStore(db, run.ID)
		defer func() {
			if err := db.FinishRun(run.ID, false); err != nil {
				log.Printf("finish run: %v", err)
			}
		}()
		fmt.Fprintf(os.Stderr, "  db: %s\n", dbPath)
	}

	interval := time.Duration(cfg.Simulation.TickMillis) * time.Millisecond
	runner.Start(interval)

	srv := server.New(runner, db, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "blobsim serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  seed: %d, tick every %s\n", seed, interval)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")
	runner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
