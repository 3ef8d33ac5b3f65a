// Package colony implements the colony manager: the per-tick decision
// logic that sizes the scouter population from board state, keeps the
// shared food knowledge, and drives global blob decay.
package colony

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	log "github.com/sirupsen/logrus"

	"github.com/PinkDiamond1/blob-simulation/internal/knowledge"
)

// ErrUnknownFood is returned when a food event names a coordinate the
// colony never learned. It marks a caller bug, not a runtime
// condition, and is kept distinct from knowledge.ErrInvalid.
var ErrUnknownFood = errors.New("colony: food coordinate not known")

// Coord is a board position.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DefaultSpawn is where a scouter lands when the board carries no
// touched cell to sample from.
var DefaultSpawn = Coord{0, 0}

// Board is the grid the colony lives on. The manager only queries it,
// plus the single ManageBlob decay instruction per tick.
type Board interface {
	Size() (width, height int)
	HasFood(x, y int) bool
	IsTouched(x, y int) bool
	Blob(x, y int) float64
	BlobTotal() float64
	Cover() int
	ManageBlob(globalDecrease, minOnFood float64)
}

// Scouter is one mobile foraging agent. Move attempts a single step
// according to the agent's own logic; Update records its post-move
// side effect (trail deposit). The manager identifies scouters only by
// position, so two may share a cell.
type Scouter interface {
	Position() (x, y int)
	Move()
	Update()
}

// SpawnFunc builds a new scouter at a cell. Injected so the per-agent
// state machine stays outside this package.
type SpawnFunc func(x, y int) Scouter

// Manager owns the active scouter list and the colony's derived
// runtime state. It is not safe for concurrent use; callers run ticks
// strictly one after another.
type Manager struct {
	board Board
	know  knowledge.Knowledge
	spawn SpawnFunc
	rng   *rand.Rand

	scouters []Scouter
	food     []Coord
	foodSet  map[Coord]struct{}
	target   int

	// OnTargetChange, when set, fires whenever the recomputed target
	// differs from the previous tick's value.
	OnTargetChange func(old, target int)
}

// New builds a manager over board with already-loaded knowledge. It
// scans the board once for cells that are both food-bearing and
// touched, seeds the known food set from them, computes the initial
// population target, and spawns scouters up to it.
//
// All randomness is drawn from rng; replaying with the same seed and
// the same board reproduces the run.
func New(b Board, know knowledge.Knowledge, spawn SpawnFunc, rng *rand.Rand) (*Manager, error) {
	if b == nil || spawn == nil || rng == nil {
		return nil, fmt.Errorf("colony: board, spawn and rng are all required")
	}
	m := &Manager{
		board:   b,
		know:    know,
		spawn:   spawn,
		rng:     rng,
		foodSet: make(map[Coord]struct{}),
	}

	width, height := b.Size()
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			if b.HasFood(x, y) && b.IsTouched(x, y) {
				m.insertFood(Coord{x, y})
			}
		}
	}

	m.target = m.computeMaxScouters()
	for len(m.scouters) < m.target {
		m.addScouter()
	}
	log.Printf("colony: %d scouters", len(m.scouters))
	return m, nil
}

// NewFromFile is New with knowledge loaded from a file. A missing,
// unreadable or incomplete file is a configuration error; the manager
// is not usable afterward.
func NewFromFile(b Board, path string, spawn SpawnFunc, rng *rand.Rand) (*Manager, error) {
	know, err := knowledge.Load(path)
	if err != nil {
		return nil, err
	}
	return New(b, know, spawn, rng)
}

// Knowledge returns the persisted parameter record. The derived food
// set and target are not part of it.
func (m *Manager) Knowledge() knowledge.Knowledge { return m.know }

// SaveKnowledge persists the parameter record. This is the colony's
// only persistence boundary.
func (m *Manager) SaveKnowledge(path string) error { return m.know.Save(path) }

// Target returns the current population target.
func (m *Manager) Target() int { return m.target }

// Count returns the number of active scouters.
func (m *Manager) Count() int { return len(m.scouters) }

// Positions returns the current scouter positions in list order.
func (m *Manager) Positions() []Coord {
	out := make([]Coord, len(m.scouters))
	for i, s := range m.scouters {
		x, y := s.Position()
		out[i] = Coord{x, y}
	}
	return out
}

// KnownFood returns a copy of the known food coordinates in discovery
// order.
func (m *Manager) KnownFood() []Coord {
	out := make([]Coord, len(m.food))
	copy(out, m.food)
	return out
}

// Step runs one simulation tick. The phase order is fixed: scouter
// moves with inline food discovery, target recomputation, grow/shrink
// reconciliation, dead replacement, then board decay. Reordering the
// phases (or the random draws inside them) changes trajectories.
func (m *Manager) Step() {
	var deads []Scouter
	for _, s := range m.scouters {
		oldX, oldY := s.Position()
		s.Move()
		x, y := s.Position()
		if x == oldX && y == oldY {
			deads = append(deads, s)
			continue
		}
		c := Coord{x, y}
		if m.board.HasFood(x, y) && !m.contains(c) {
			m.FoodDiscovered(x, y)
		}
		s.Update()
	}

	next := m.computeMaxScouters()
	if next != m.target {
		log.Printf("colony: %d scouters", next)
		if m.OnTargetChange != nil {
			m.OnTargetChange(m.target, next)
		}
	}
	m.target = next

	diff := m.target - len(m.scouters)
	for i := 0; i < diff; i++ {
		m.addScouter()
	}
	for i := 0; i < -diff; i++ {
		m.removeScouter()
	}

	// Dead scouters are replaced one for one, after reconciliation, so
	// this pass never changes the net count. A dead scouter the shrink
	// pass already culled gets no replacement.
	for _, dead := range deads {
		if m.removeExact(dead) {
			m.addScouter()
		}
	}

	m.board.ManageBlob(m.know.GlobalDecrease, m.know.RemainingOnFood)
}

// computeMaxScouters derives the population target from current board
// state. Never memoized.
func (m *Manager) computeMaxScouters() int {
	c := m.know.Computing
	f := c.BlobSizeFactor*m.board.BlobTotal() +
		c.CoveringFactor*float64(m.board.Cover()) +
		c.KnownFoodsFactor*float64(len(m.food))

	width, height := m.board.Size()
	f *= c.GlobalFactor * float64(height*width) / 100000

	if n := int(math.Floor(f)); n > m.know.Scouters.Min {
		return n
	}
	return m.know.Scouters.Min
}

// addScouter spawns one scouter: at a uniformly random known food
// coordinate when any is known, otherwise at a blob-weighted touched
// cell, otherwise at DefaultSpawn. At-target calls are a logged no-op.
func (m *Manager) addScouter() {
	if len(m.scouters) >= m.target {
		log.Print("colony: max scouters already reached")
		return
	}
	var at Coord
	if len(m.food) > 0 {
		at = m.food[m.rng.Intn(len(m.food))]
	} else {
		at = m.findBlobSquare()
	}
	m.scouters = append(m.scouters, m.spawn(at.X, at.Y))
}

// removeScouter culls one scouter uniformly at random. Calling it with
// an empty list is a programmer error: the tick algorithm only shrinks
// down to the floor-bounded target, which is at least one.
func (m *Manager) removeScouter() {
	if len(m.scouters) == 0 {
		panic("colony: remove from empty scouter list")
	}
	i := m.rng.Intn(len(m.scouters))
	m.scouters = append(m.scouters[:i], m.scouters[i+1:]...)
}

// removeExact drops a specific scouter, reporting whether it was still
// active.
func (m *Manager) removeExact(s Scouter) bool {
	for i, cur := range m.scouters {
		if cur == s {
			m.scouters = append(m.scouters[:i], m.scouters[i+1:]...)
			return true
		}
	}
	return false
}

// findBlobSquare samples one touched cell with probability
// proportional to blob mass + 1, so zero-mass touched cells stay
// reachable. The draw is uniform in [0, total) and selects the first
// cell whose cumulative weight exceeds it, giving every cell a
// marginal probability of exactly weight/total. Returns DefaultSpawn
// when nothing is touched.
func (m *Manager) findBlobSquare() Coord {
	type weighted struct {
		at Coord
		w  float64
	}
	var (
		cells []weighted
		total float64
	)
	width, height := m.board.Size()
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			if !m.board.IsTouched(x, y) {
				continue
			}
			w := m.board.Blob(x, y) + 1
			total += w
			cells = append(cells, weighted{Coord{x, y}, w})
		}
	}
	if len(cells) == 0 {
		return DefaultSpawn
	}

	draw := m.rng.Float64() * total
	acc := 0.0
	for _, c := range cells {
		acc += c.w
		if draw < acc {
			return c.at
		}
	}
	// Accumulated rounding can leave draw a hair past acc.
	return cells[len(cells)-1].at
}

// Reset clears everything the colony holds at a cell: scouters
// standing on it are removed, and known food there is forgotten with
// the cached target decremented by one. Resetting an empty cell is a
// no-op.
func (m *Manager) Reset(x, y int) {
	kept := m.scouters[:0]
	for _, s := range m.scouters {
		sx, sy := s.Position()
		if sx != x || sy != y {
			kept = append(kept, s)
		}
	}
	m.scouters = kept

	c := Coord{x, y}
	if m.contains(c) {
		m.deleteFood(c)
		m.target--
	}
}

// FoodDiscovered records a food coordinate. Idempotent: rediscovering
// a known coordinate changes nothing.
func (m *Manager) FoodDiscovered(x, y int) {
	c := Coord{x, y}
	if m.contains(c) {
		return
	}
	m.insertFood(c)
}

// FoodDestroyed forgets a food coordinate. Destroying food the colony
// never knew violates a precondition and returns ErrUnknownFood.
func (m *Manager) FoodDestroyed(x, y int) error {
	c := Coord{x, y}
	if !m.contains(c) {
		return fmt.Errorf("destroy food at (%d,%d): %w", x, y, ErrUnknownFood)
	}
	m.deleteFood(c)
	return nil
}

func (m *Manager) contains(c Coord) bool {
	_, ok := m.foodSet[c]
	return ok
}

func (m *Manager) insertFood(c Coord) {
	m.food = append(m.food, c)
	m.foodSet[c] = struct{}{}
}

func (m *Manager) deleteFood(c Coord) {
	delete(m.foodSet, c)
	for i, cur := range m.food {
		if cur == c {
			m.food = append(m.food[:i], m.food[i+1:]...)
			return
		}
	}
}
