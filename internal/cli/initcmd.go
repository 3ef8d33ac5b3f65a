package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/PinkDiamond1/blob-simulation/internal/board"
	"github.com/PinkDiamond1/blob-simulation/internal/knowledge"
)

var initFlags struct {
	dir    string
	width  int
	height int
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write starter board and knowledge files",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initFlags.dir, "dir", ".", "directory to write into")
	initCmd.Flags().IntVar(&initFlags.width, "width", 40, "board width")
	initCmd.Flags().IntVar(&initFlags.height, "height", 40, "board height")
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(initFlags.dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", initFlags.dir, err)
	}

	knowledgePath := filepath.Join(initFlags.dir, "knowledge.json")
	if _, err := os.Stat(knowledgePath); err == nil {
		return fmt.Errorf("%s already exists", knowledgePath)
	}
	if err := knowledge.Default().Save(knowledgePath); err != nil {
		return err
	}

	boardPath := filepath.Join(initFlags.dir, "board.txt")
	if _, err := os.Stat(boardPath); err == nil {
		return fmt.Errorf("%s already exists", boardPath)
	}
	b, err := starterBoard(initFlags.width, initFlags.height)
	if err != nil {
		return err
	}
	if err := b.Save(boardPath); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "wrote %s and %s\n", knowledgePath, boardPath)
	return nil
}

// starterBoard seeds a blob patch in the center and a food source near
// each of two opposite corners, enough for a first exploratory run.
func starterBoard(width, height int) (*board.Board, error) {
	b, err := board.New(width, height)
	if err != nil {
		return nil, err
	}

	cx, cy := width/2, height/2
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			b.AddBlob(cx+dx, cy+dy, 100)
		}
	}

	b.SetFood(width/5, height/5, true)
	b.SetFood(width-1-width/5, height-1-height/5, true)
	return b, nil
}
