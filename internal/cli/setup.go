package cli

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/PinkDiamond1/blob-simulation/internal/board"
	"github.com/PinkDiamond1/blob-simulation/internal/colony"
	"github.com/PinkDiamond1/blob-simulation/internal/knowledge"
	"github.com/PinkDiamond1/blob-simulation/internal/scouter"
)

// buildColony assembles the simulation from its two input files. seed 0
// seeds from the clock; the effective seed is returned so runs can be
// recorded and replayed.
func buildColony(boardPath, knowledgePath string, seed int64) (*board.Board, *colony.Manager, int64, error) {
	b, err := board.Load(boardPath)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("load board: %w", err)
	}
	know, err := knowledge.Load(knowledgePath)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("load knowledge: %w", err)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	spawn := func(x, y int) colony.Scouter {
		return scouter.New(b, rng, x, y, know.Scouters.Drop)
	}

	m, err := colony.New(b, know, spawn, rng)
	if err != nil {
		return nil, nil, 0, err
	}
	return b, m, seed, nil
}
