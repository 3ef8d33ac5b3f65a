package colony

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/PinkDiamond1/blob-simulation/internal/board"
	"github.com/PinkDiamond1/blob-simulation/internal/knowledge"
)

// stillScouter never moves, so every tick classifies it dead.
type stillScouter struct{ x, y int }

func (s *stillScouter) Position() (int, int) { return s.x, s.y }
func (s *stillScouter) Move()                {}
func (s *stillScouter) Update()              {}

// walker steps +1 in x each tick until it hits the board edge.
type walker struct {
	b    *board.Board
	x, y int
}

func (w *walker) Position() (int, int) { return w.x, w.y }
func (w *walker) Move() {
	if w.b.InBounds(w.x+1, w.y) {
		w.x++
	}
}
func (w *walker) Update() {}

func stillSpawner() SpawnFunc {
	return func(x, y int) Scouter { return &stillScouter{x, y} }
}

// minimal knowledge: all factors zero so the target pins to Min.
func minKnowledge(min int) knowledge.Knowledge {
	k := knowledge.Default()
	k.Computing = knowledge.Computing{GlobalFactor: 1}
	k.Scouters.Min = min
	return k
}

func testRNG() *rand.Rand { return rand.New(rand.NewSource(42)) }

func TestNewClampsToMinimum(t *testing.T) {
	b, _ := board.New(10, 10)
	m, err := New(b, minKnowledge(2), stillSpawner(), testRNG())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Empty board, all factors zero: the formula evaluates to 0 and the
	// target clamps to Scouters.Min.
	if m.Target() != 2 {
		t.Errorf("Target = %d, want 2", m.Target())
	}
	if m.Count() != 2 {
		t.Errorf("Count = %d, want 2", m.Count())
	}
}

func TestNewComputesFormula(t *testing.T) {
	b, _ := board.New(100, 100)
	for i := 0; i < 10; i++ {
		b.AddBlob(i, 0, 10)
	}
	// BlobTotal 100, Cover 10, no food. Area scale 100*100/100000 = 0.1.
	k := minKnowledge(2)
	k.Computing = knowledge.Computing{
		BlobSizeFactor: 1,
		CoveringFactor: 2,
		GlobalFactor:   1,
	}
	m, err := New(b, k, stillSpawner(), testRNG())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.Target() != 12 {
		t.Errorf("Target = %d, want floor((100+20)*0.1) = 12", m.Target())
	}
	if m.Count() != 12 {
		t.Errorf("Count = %d, want 12", m.Count())
	}
}

func TestNewSeedsFoodFromBoard(t *testing.T) {
	b, _ := board.New(5, 5)
	b.SetFood(1, 1, true)
	b.AddBlob(1, 1, 4) // food and touched: known at construction
	b.SetFood(3, 3, true)
	// (3,3) stays untouched: food exists but the colony has not reached
	// it, so it must not be known.

	m, err := New(b, minKnowledge(1), stillSpawner(), testRNG())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	food := m.KnownFood()
	if len(food) != 1 || food[0] != (Coord{1, 1}) {
		t.Errorf("KnownFood = %v, want [{1 1}]", food)
	}
}

func TestNewRejectsNilCollaborators(t *testing.T) {
	b, _ := board.New(3, 3)
	if _, err := New(nil, minKnowledge(1), stillSpawner(), testRNG()); err == nil {
		t.Error("expected error for nil board")
	}
	if _, err := New(b, minKnowledge(1), nil, testRNG()); err == nil {
		t.Error("expected error for nil spawn func")
	}
	if _, err := New(b, minKnowledge(1), stillSpawner(), nil); err == nil {
		t.Error("expected error for nil rng")
	}
}

func TestStepReplacesDead(t *testing.T) {
	b, _ := board.New(10, 10)
	spawned := 0
	spawn := func(x, y int) Scouter {
		spawned++
		return &stillScouter{x, y}
	}
	m, err := New(b, minKnowledge(3), spawn, testRNG())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if spawned != 3 {
		t.Fatalf("construction spawned %d, want 3", spawned)
	}

	// Every scouter is a stillScouter: all die each tick and are
	// replaced one for one.
	m.Step()
	if m.Count() != 3 {
		t.Errorf("Count after step = %d, want 3", m.Count())
	}
	if spawned != 6 {
		t.Errorf("spawned = %d, want 6 (3 replacements)", spawned)
	}
}

func TestStepDiscoversFood(t *testing.T) {
	b, _ := board.New(10, 1)
	b.SetFood(1, 0, true)

	spawn := func(x, y int) Scouter { return &walker{b: b, x: x, y: y} }
	m, err := New(b, minKnowledge(1), spawn, testRNG())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m.Step() // walker moves 0,0 -> 1,0 onto food
	food := m.KnownFood()
	if len(food) != 1 || food[0] != (Coord{1, 0}) {
		t.Fatalf("KnownFood = %v, want [{1 0}]", food)
	}

	m.Step() // moving off the cell must not duplicate the entry
	if got := len(m.KnownFood()); got != 1 {
		t.Errorf("KnownFood has %d entries after second step, want 1", got)
	}
}

func TestStepReconcilesTarget(t *testing.T) {
	b, _ := board.New(100, 100)
	k := minKnowledge(2)
	k.Computing = knowledge.Computing{CoveringFactor: 1, GlobalFactor: 1}

	m, err := New(b, k, stillSpawner(), testRNG())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.Count() != 2 {
		t.Fatalf("Count = %d, want 2", m.Count())
	}

	var changes [][2]int
	m.OnTargetChange = func(old, target int) {
		changes = append(changes, [2]int{old, target})
	}

	// 50 touched cells * 1 * 0.1 = 5: target grows, population follows.
	for i := 0; i < 50; i++ {
		b.AddBlob(i, 50, 0)
	}
	m.Step()
	if m.Target() != 5 {
		t.Fatalf("Target = %d, want 5", m.Target())
	}
	if m.Count() != 5 {
		t.Errorf("Count = %d, want 5", m.Count())
	}
	if len(changes) != 1 || changes[0] != [2]int{2, 5} {
		t.Errorf("changes = %v, want [[2 5]]", changes)
	}

	// Unchanged board: no further notification.
	m.Step()
	if len(changes) != 1 {
		t.Errorf("notified on unchanged target: %v", changes)
	}

	// Board reverts (decay cannot clear touched, so rebuild): shrink
	// path, population culled back to the floor.
	b2, _ := board.New(100, 100)
	m.board = b2
	m.Step()
	if m.Target() != 2 || m.Count() != 2 {
		t.Errorf("after shrink Target = %d Count = %d, want 2/2", m.Target(), m.Count())
	}
	if len(changes) != 2 || changes[1] != [2]int{5, 2} {
		t.Errorf("changes = %v, want shrink notification 5->2", changes)
	}
}

func TestCountNeverBelowMinimum(t *testing.T) {
	b, _ := board.New(20, 20)
	b.SetFood(4, 4, true)
	b.AddBlob(4, 4, 10)
	k := minKnowledge(3)
	k.Computing = knowledge.Computing{BlobSizeFactor: 0.5, CoveringFactor: 1, GlobalFactor: 2, KnownFoodsFactor: 5}
	k.GlobalDecrease = 2
	k.RemainingOnFood = 5

	m, err := New(b, k, stillSpawner(), testRNG())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 50; i++ {
		m.Step()
		if m.Count() < 3 {
			t.Fatalf("tick %d: Count = %d fell below minimum 3", i, m.Count())
		}
	}
}

func TestFoodDiscoveredIdempotent(t *testing.T) {
	b, _ := board.New(5, 5)
	m, _ := New(b, minKnowledge(1), stillSpawner(), testRNG())

	m.FoodDiscovered(2, 3)
	m.FoodDiscovered(2, 3)
	if got := len(m.KnownFood()); got != 1 {
		t.Errorf("KnownFood has %d entries, want exactly 1", got)
	}
}

func TestFoodDestroyed(t *testing.T) {
	b, _ := board.New(5, 5)
	m, _ := New(b, minKnowledge(1), stillSpawner(), testRNG())

	m.FoodDiscovered(2, 3)
	if err := m.FoodDestroyed(2, 3); err != nil {
		t.Fatalf("FoodDestroyed: %v", err)
	}
	if len(m.KnownFood()) != 0 {
		t.Error("food still known after destroy")
	}

	err := m.FoodDestroyed(2, 3)
	if !errors.Is(err, ErrUnknownFood) {
		t.Errorf("destroying unknown food: got %v, want ErrUnknownFood", err)
	}
}

func TestReset(t *testing.T) {
	b, _ := board.New(5, 5)
	b.SetFood(2, 2, true)
	b.AddBlob(2, 2, 8) // known at construction; scouters spawn on it
	m, _ := New(b, minKnowledge(2), stillSpawner(), testRNG())

	if m.Count() != 2 {
		t.Fatalf("Count = %d, want 2", m.Count())
	}
	before := m.Target()

	m.Reset(2, 2)
	if m.Count() != 0 {
		t.Errorf("Count after reset = %d, want 0 (both scouters stood on the cell)", m.Count())
	}
	if len(m.KnownFood()) != 0 {
		t.Error("food still known after reset")
	}
	if m.Target() != before-1 {
		t.Errorf("Target = %d, want %d (decremented, not recomputed)", m.Target(), before-1)
	}
}

func TestResetEmptyCellIsNoop(t *testing.T) {
	b, _ := board.New(5, 5)
	m, _ := New(b, minKnowledge(2), stillSpawner(), testRNG())
	count, target := m.Count(), m.Target()

	m.Reset(4, 4)
	if m.Count() != count || m.Target() != target {
		t.Errorf("reset of empty cell changed state: count %d->%d target %d->%d",
			count, m.Count(), target, m.Target())
	}
}

func TestRemoveScouterEmptyPanics(t *testing.T) {
	b, _ := board.New(5, 5)
	m, _ := New(b, minKnowledge(1), stillSpawner(), testRNG())
	m.scouters = nil

	defer func() {
		if recover() == nil {
			t.Error("expected panic when culling from empty list")
		}
	}()
	m.removeScouter()
}

func TestFindBlobSquareWeighted(t *testing.T) {
	b, _ := board.New(2, 1)
	b.AddBlob(0, 0, 2) // weight 3
	b.AddBlob(1, 0, 0) // weight 1
	m, _ := New(b, minKnowledge(1), stillSpawner(), testRNG())

	const draws = 20000
	hits := 0
	for i := 0; i < draws; i++ {
		if m.findBlobSquare() == (Coord{0, 0}) {
			hits++
		}
	}
	got := float64(hits) / draws
	if math.Abs(got-0.75) > 0.02 {
		t.Errorf("heavy cell frequency = %.3f, want 0.75 ± 0.02", got)
	}
}

func TestFindBlobSquareOnlyTouched(t *testing.T) {
	b, _ := board.New(10, 10)
	touched := map[Coord]bool{}
	for _, c := range []Coord{{1, 1}, {2, 7}, {4, 4}, {8, 0}, {9, 9}} {
		b.AddBlob(c.X, c.Y, 0)
		touched[c] = true
	}
	m, _ := New(b, minKnowledge(1), stillSpawner(), testRNG())

	for i := 0; i < 500; i++ {
		if c := m.findBlobSquare(); !touched[c] {
			t.Fatalf("draw %d landed on untouched cell %v", i, c)
		}
	}
}

func TestFindBlobSquareEmptyBoard(t *testing.T) {
	b, _ := board.New(10, 10)
	m, _ := New(b, minKnowledge(1), stillSpawner(), testRNG())
	if got := m.findBlobSquare(); got != DefaultSpawn {
		t.Errorf("findBlobSquare on empty board = %v, want %v", got, DefaultSpawn)
	}
}

func TestSpawnPrefersKnownFood(t *testing.T) {
	b, _ := board.New(10, 10)
	b.SetFood(6, 6, true)
	b.AddBlob(6, 6, 1)
	b.AddBlob(3, 3, 50) // heavy blob elsewhere must not attract spawns
	m, _ := New(b, minKnowledge(4), stillSpawner(), testRNG())

	for _, p := range m.Positions() {
		if p != (Coord{6, 6}) {
			t.Errorf("scouter spawned at %v, want food cell {6 6}", p)
		}
	}
}

func TestSaveReloadRoundTrip(t *testing.T) {
	b, _ := board.New(5, 5)
	m, err := New(b, knowledge.Default(), stillSpawner(), testRNG())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Runtime state must never reach the persisted record.
	m.FoodDiscovered(1, 1)
	m.Reset(3, 3)

	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	if err := m.SaveKnowledge(first); err != nil {
		t.Fatalf("SaveKnowledge: %v", err)
	}

	blank, _ := board.New(5, 5)
	m2, err := NewFromFile(blank, first, stillSpawner(), testRNG())
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	second := filepath.Join(dir, "second.json")
	if err := m2.SaveKnowledge(second); err != nil {
		t.Fatalf("SaveKnowledge: %v", err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read first: %v", err)
	}
	c, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("read second: %v", err)
	}
	if !bytes.Equal(a, c) {
		t.Errorf("save -> reload -> save not byte-identical:\nfirst:\n%s\nsecond:\n%s", a, c)
	}
}

func TestNewFromFileConfigError(t *testing.T) {
	b, _ := board.New(3, 3)
	_, err := NewFromFile(b, filepath.Join(t.TempDir(), "missing.json"), stillSpawner(), testRNG())
	if !errors.Is(err, knowledge.ErrInvalid) {
		t.Errorf("missing knowledge file: got %v, want knowledge.ErrInvalid", err)
	}
}

func TestSeededRunsReproduce(t *testing.T) {
	build := func() *Manager {
		b, _ := board.New(30, 30)
		for i := 0; i < 12; i++ {
			b.AddBlob(i*2, i, float64(i))
		}
		k := minKnowledge(3)
		k.Computing = knowledge.Computing{BlobSizeFactor: 1, CoveringFactor: 1, GlobalFactor: 5}
		k.GlobalDecrease = 1
		m, err := New(b, k, stillSpawner(), rand.New(rand.NewSource(7)))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return m
	}

	a, b := build(), build()
	for i := 0; i < 20; i++ {
		a.Step()
		b.Step()
	}
	pa, pb := a.Positions(), b.Positions()
	if len(pa) != len(pb) {
		t.Fatalf("population diverged: %d vs %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("scouter %d diverged: %v vs %v", i, pa[i], pb[i])
		}
	}
	if a.Target() != b.Target() {
		t.Errorf("targets diverged: %d vs %d", a.Target(), b.Target())
	}
}
