package cli

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/PinkDiamond1/blob-simulation/internal/sim"
	"github.com/PinkDiamond1/blob-simulation/internal/store"
)

var runFlags struct {
	board         string
	knowledge     string
	ticks         int
	seed          int64
	db            string
	saveBoard     string
	saveKnowledge string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation for a fixed number of ticks",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runFlags.board, "board", "", "board file (required)")
	runCmd.Flags().StringVar(&runFlags.knowledge, "knowledge", "", "knowledge file (required)")
	runCmd.Flags().IntVar(&runFlags.ticks, "ticks", 100, "ticks to simulate")
	runCmd.Flags().Int64Var(&runFlags.seed, "seed", 0, "random seed (0 = from clock)")
	runCmd.Flags().StringVar(&runFlags.db, "db", "", "record the run to this history database")
	runCmd.Flags().StringVar(&runFlags.saveBoard, "save-board", "", "write the final board here")
	runCmd.Flags().StringVar(&runFlags.saveKnowledge, "save-knowledge", "", "write the knowledge record here")
	runCmd.MarkFlagRequired("board")
	runCmd.MarkFlagRequired("knowledge")
}

func runRun(cmd *cobra.Command, args []string) error {
	if runFlags.ticks < 1 {
		return fmt.Errorf("--ticks must be positive, got %d", runFlags.ticks)
	}

	b, m, seed, err := buildColony(runFlags.board, runFlags.knowledge, runFlags.seed)
	if err != nil {
		return err
	}
	runner := sim.NewRunner(m, b)
	defer runner.Stop()

	var runID int64
	if runFlags.db != "" {
		db, err := store.Open(runFlags.db)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		defer db.Close()

		run, err := db.StartRun(seed, runFlags.board, runFlags.knowledge)
		if err != nil {
			return err
		}
		runID = run.ID
		runner.AttachStore(db, runID)
		defer func() {
			if err := db.FinishRun(runID, false); err != nil {
				log.Printf("finish run: %v", err)
			}
		}()
	}

	log.Printf("run: seed %d, %d ticks", seed, runFlags.ticks)
	stat := runner.Run(runFlags.ticks)
	fmt.Fprintf(os.Stderr, "tick %d: %d scouters (target %d), blob %.1f over %d cells, %d foods known\n",
		stat.Tick, stat.Scouters, stat.Target, stat.BlobTotal, stat.Cover, stat.KnownFoods)

	if runFlags.saveBoard != "" {
		if err := b.Save(runFlags.saveBoard); err != nil {
			return err
		}
	}
	if runFlags.saveKnowledge != "" {
		if err := m.SaveKnowledge(runFlags.saveKnowledge); err != nil {
			return err
		}
	}
	return nil
}
