package repository

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/maidx/internal/domain/types"
	"github.com/okian/maidx/pkg/metrics"
)

// Treap-based, in-memory Store implementation, one tree per region.
//
// Ordering: rating DESC, then player ASC. "less" means ranks earlier, so an
// in-order walk yields the leaderboard from best to worst. Players with the
// same rating share a rank and the next distinct rating takes the next rank
// (1, 1, 2). Each board also keeps a treap of its distinct ratings so a rank
// is the size-augmented count of higher ratings, plus one.

type node struct {
	player string
	rating int
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(aRating int, aPlayer string, bRating int, bPlayer string) bool {
	if aRating != bRating {
		return aRating > bRating
	}
	return aPlayer < bPlayer
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, player string, rating int) *node {
	if n == nil {
		return &node{player: player, rating: rating, prio: rand.Uint64(), size: 1} //nolint:gosec // treap priority
	}
	if less(rating, player, n.rating, n.player) {
		n.left = insert(n.left, player, rating)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, player, rating)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, player string, rating int) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.player == player && n.rating == rating:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, player, rating)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, player, rating)
		}
	case less(rating, player, n.rating, n.player):
		n.left = deleteNode(n.left, player, rating)
	default:
		n.right = deleteNode(n.right, player, rating)
	}
	fix(n)
	return n
}

// before counts the nodes ordered strictly ahead of (rating, player).
func before(n *node, rating int, player string) int {
	c := 0
	for n != nil {
		if less(n.rating, n.player, rating, player) {
			c += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return c
}

// walk visits nodes in rank order until visit returns false.
func walk(n *node, visit func(*node) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, visit) {
		return false
	}
	if !visit(n) {
		return false
	}
	return walk(n.right, visit)
}

type board struct {
	root     *node
	byPlayer map[string]int
	ratings  *node       // one node per distinct rating, player ""
	holders  map[int]int // players per rating
}

func newBoard() *board {
	return &board{byPlayer: make(map[string]int), holders: make(map[int]int)}
}

func (b *board) add(player string, rating int) {
	b.byPlayer[player] = rating
	b.root = insert(b.root, player, rating)
	if b.holders[rating] == 0 {
		b.ratings = insert(b.ratings, "", rating)
	}
	b.holders[rating]++
}

func (b *board) drop(player string, rating int) {
	delete(b.byPlayer, player)
	b.root = deleteNode(b.root, player, rating)
	if b.holders[rating]--; b.holders[rating] == 0 {
		delete(b.holders, rating)
		b.ratings = deleteNode(b.ratings, "", rating)
	}
}

// denseRank is 1 + the number of distinct ratings above rating.
func (b *board) denseRank(rating int) int {
	return before(b.ratings, rating, "") + 1
}

// TreapStore keeps one treap per region behind a single RWMutex.
type TreapStore struct {
	mu       sync.RWMutex
	boards   map[string]*board
	allowed  map[string]bool
	maxLimit int
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{boards: make(map[string]*board)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TreapStore) checkRegion(region string) error {
	if region == "" || (s.allowed != nil && !s.allowed[region]) {
		return fmt.Errorf("%q: %w", region, ErrInvalidRegion)
	}
	return nil
}

// Set implements Store.Set in O(log n) expected time.
func (s *TreapStore) Set(_ context.Context, region, player string, rating int) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	if err := s.checkRegion(region); err != nil {
		return false, err
	}

	s.mu.Lock()
	b, ok := s.boards[region]
	if !ok {
		b = newBoard()
		s.boards[region] = b
	}
	if old, ok := b.byPlayer[player]; ok {
		if old == rating {
			s.mu.Unlock()
			return false, nil
		}
		b.drop(player, old)
	}
	b.add(player, rating)
	count := len(b.byPlayer)
	s.mu.Unlock()

	metrics.UpdateLeaderboardPlayers(region, count)
	return true, nil
}

// Remove implements Store.Remove.
func (s *TreapStore) Remove(_ context.Context, region, player string) error {
	if err := s.checkRegion(region); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[region]
	if !ok {
		return nil
	}
	if old, ok := b.byPlayer[player]; ok {
		b.drop(player, old)
		metrics.UpdateLeaderboardPlayers(region, len(b.byPlayer))
	}
	return nil
}

// Rank implements Store.Rank in O(log n) expected time.
func (s *TreapStore) Rank(_ context.Context, region, player string) (types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	if err := s.checkRegion(region); err != nil {
		return types.Entry{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boards[region]
	if !ok {
		return types.Entry{}, ErrNotFound
	}
	rating, ok := b.byPlayer[player]
	if !ok {
		metrics.RecordErrorByComponent("leaderboard", "not_found")
		return types.Entry{}, ErrNotFound
	}

	return types.Entry{Rank: b.denseRank(rating), Player: player, Rating: rating}, nil
}

// TopN returns the top n entries of region.
func (s *TreapStore) TopN(_ context.Context, region string, n int) ([]types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	if n < 1 {
		metrics.RecordErrorByComponent("leaderboard", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	if err := s.checkRegion(region); err != nil {
		return nil, err
	}
	if s.maxLimit > 0 && n > s.maxLimit {
		n = s.maxLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Entry, 0, min(n, 64))
	b, ok := s.boards[region]
	if !ok {
		return out, nil
	}
	rank, last := 0, 0
	walk(b.root, func(nd *node) bool {
		if rank == 0 || nd.rating != last {
			rank++
			last = nd.rating
		}
		out = append(out, types.Entry{Rank: rank, Player: nd.player, Rating: nd.rating})
		return len(out) < n
	})
	return out, nil
}

// Count returns the number of ranked players in region.
func (s *TreapStore) Count(_ context.Context, region string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.boards[region]; ok {
		return len(b.byPlayer)
	}
	return 0
}
