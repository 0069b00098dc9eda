// Package tt implements the shared transposition table: a fixed-size, bucketed cache from
// Zobrist hash to the best score/move/bound found for a position, so iterative deepening and
// pondering don't redo work across overlapping searches.
package tt

import (
	"context"
	"fmt"
	"math/bits"
	"sync"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/seekerror/logw"
)

// Bound records whether a stored score is exact, or only a bound because search cut off early
// via alpha-beta pruning on that subtree.
type Bound uint8

const (
	ExactBound Bound = iota
	LowerBound
	UpperBound
)

func (b Bound) String() string {
	switch b {
	case ExactBound:
		return "exact"
	case LowerBound:
		return "lower"
	case UpperBound:
		return "upper"
	default:
		return "?"
	}
}

// entriesPerBucket is the associativity of the table: each hash maps to a small ordered bucket
// so a shallow write next to a deep one doesn't have to evict it outright.
const entriesPerBucket = 4

// entry is one stored search result.
type entry struct {
	hash  board.ZobristHash
	score board.Score
	side  board.Color
	bound Bound
	level int // ply from the search root, used for depth-from-root eviction priority
	depth int // remaining depth searched below this node
	move  board.Move
}

// bucket is guarded by its own lock: the teacher's table uses a single lock-free atomic pointer
// per slot, but comparing and evicting among several ordered entries at once needs a real
// critical section, so each bucket gets a sync.Mutex instead.
type bucket struct {
	mu      sync.Mutex
	entries [entriesPerBucket]entry
	filled  [entriesPerBucket]bool
}

// Table is a fixed-size, bucketed transposition table keyed by Zobrist hash.
type Table struct {
	buckets []bucket
	mask    uint64
}

// New allocates a table sized to approximately size bytes.
func New(ctx context.Context, size uint64) *Table {
	const bucketSize = entriesPerBucket * 40 // rough entry footprint, generous for the bookkeeping above

	n := size / bucketSize
	if n == 0 {
		n = 1
	}
	n = uint64(1) << (bits.Len64(n) - 1) // round down to a power of two, at least 1

	logw.Infof(ctx, "allocating %vMB transposition table with %v buckets", size>>20, n)

	return &Table{
		buckets: make([]bucket, n),
		mask:    n - 1,
	}
}

// Size returns the table's approximate footprint in bytes.
func (t *Table) Size() uint64 {
	if t == nil {
		return 0
	}
	return uint64(len(t.buckets)) * entriesPerBucket * 40
}

// Used returns the fraction of slots holding a live entry, [0;1].
func (t *Table) Used() float64 {
	if t == nil {
		return 0
	}

	var used int
	for i := range t.buckets {
		b := &t.buckets[i]
		b.mu.Lock()
		for _, f := range b.filled {
			if f {
				used++
			}
		}
		b.mu.Unlock()
	}
	return float64(used) / float64(len(t.buckets)*entriesPerBucket)
}

// Stats returns (size, used fraction) in one call, as String reports them.
func (t *Table) Stats() (uint64, float64) {
	return t.Size(), t.Used()
}

// Read looks up hash for a caller at the given remaining depth and level (ply from root). A hit
// requires the stored depth to be at least as deep as the caller's, the side to move to match,
// and the stored level to be no deeper than the caller's — an entry recorded near the root is
// valid evidence anywhere below it, but a deep leaf's entry says nothing about a shallower node.
//
// A nil *Table is a valid, always-missing table, so search code need not special-case the
// "no hash table configured" setting.
func (t *Table) Read(hash board.ZobristHash, side board.Color, depth, level int) (Bound, board.Score, board.Move, bool) {
	if t == nil {
		return 0, 0, board.Move{}, false
	}

	b := &t.buckets[uint64(hash)&t.mask]

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.entries {
		if !b.filled[i] || e.hash != hash {
			continue
		}
		if e.depth >= depth && e.side == side && e.level <= level {
			return e.bound, e.score, e.move, true
		}
		return 0, 0, board.Move{}, false
	}
	return 0, 0, board.Move{}, false
}

// Write stores an entry. If the bucket is full, the entry with the highest level (furthest
// from the root) is evicted first, since entries closer to the root are more broadly useful.
// A no-op on a nil *Table.
func (t *Table) Write(hash board.ZobristHash, side board.Color, bound Bound, depth, level int, score board.Score, move board.Move) {
	if t == nil {
		return
	}

	fresh := entry{hash: hash, score: score, side: side, bound: bound, level: level, depth: depth, move: move}

	b := &t.buckets[uint64(hash)&t.mask]

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.entries {
		if b.filled[i] && e.hash == hash {
			b.entries[i] = fresh
			return
		}
	}

	for i := range b.entries {
		if !b.filled[i] {
			b.entries[i] = fresh
			b.filled[i] = true
			return
		}
	}

	worst := 0
	for i := 1; i < len(b.entries); i++ {
		if b.entries[i].level > b.entries[worst].level {
			worst = i
		}
	}
	b.entries[worst] = fresh
}

func (t *Table) String() string {
	size, used := t.Stats()
	return fmt.Sprintf("tt[%vMB @ %v%%]", size>>20, int(100*used))
}
