// Package scouter provides the default foraging agent: a two-state
// machine that explores outward from the blob and hauls trail mass
// back once it finds food. The colony manager only sees it through its
// Position/Move/Update surface.
package scouter

import (
	"math/rand"

	"github.com/PinkDiamond1/blob-simulation/internal/board"
)

// State is the agent's movement mode.
type State int

const (
	// Exploring walks with a bias toward cells the blob has not
	// reached yet.
	Exploring State = iota
	// Harvesting follows the strongest neighboring trail while the
	// agent still carries food energy.
	Harvesting
)

// Name returns a short label for logging.
func (s State) Name() string {
	switch s {
	case Exploring:
		return "exploring"
	case Harvesting:
		return "harvesting"
	default:
		return "unknown"
	}
}

// harvestTicks is how many steps a fed agent keeps its harvesting bias
// before reverting to exploration.
const harvestTicks = 8

// Exploration bias: untouched neighbors weigh this much against 1 for
// cells already in the trail network.
const untouchedWeight = 3.0

// Ant is one scouting agent bound to a board cell.
type Ant struct {
	b     *board.Board
	rng   *rand.Rand
	drop  float64
	state State
	fed   int

	X, Y int
}

// New places an ant on the board. drop is the trail mass deposited per
// step (doubled while harvesting). Movement draws from rng in call
// order, so a seeded source replays exactly.
func New(b *board.Board, rng *rand.Rand, x, y int, drop float64) *Ant {
	return &Ant{b: b, rng: rng, drop: drop, X: x, Y: y}
}

// Position returns the ant's cell.
func (a *Ant) Position() (int, int) { return a.X, a.Y }

// CurrentState returns the current movement mode.
func (a *Ant) CurrentState() State { return a.state }

var directions = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Move attempts one step. The ant stays put only when no neighboring
// cell is on the board, which the manager classifies as dead.
func (a *Ant) Move() {
	type option struct {
		x, y int
		w    float64
	}
	var (
		options []option
		total   float64
	)
	for _, d := range directions {
		nx, ny := a.X+d[0], a.Y+d[1]
		if !a.b.InBounds(nx, ny) {
			continue
		}
		var w float64
		switch a.state {
		case Harvesting:
			// Follow the trail home: heavier blob pulls harder.
			w = a.b.Blob(nx, ny) + 1
		default:
			w = 1
			if !a.b.IsTouched(nx, ny) {
				w = untouchedWeight
			}
		}
		total += w
		options = append(options, option{nx, ny, w})
	}
	if len(options) == 0 {
		return
	}

	draw := a.rng.Float64() * total
	acc := 0.0
	next := options[len(options)-1]
	for _, o := range options {
		acc += o.w
		if draw < acc {
			next = o
			break
		}
	}
	a.X, a.Y = next.x, next.y

	if a.b.HasFood(a.X, a.Y) {
		a.state = Harvesting
		a.fed = harvestTicks
	} else if a.state == Harvesting {
		a.fed--
		if a.fed <= 0 {
			a.state = Exploring
		}
	}
}

// Update deposits trail mass on the current cell. Harvesting ants drop
// double, thickening the path between food and the blob body.
func (a *Ant) Update() {
	qt := a.drop
	if a.state == Harvesting {
		qt *= 2
	}
	a.b.AddBlob(a.X, a.Y, qt)
}
