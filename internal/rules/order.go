// Package rules holds the pure half of the rule ordering protocol:
// batch validation and the two-phase move plan the store executes
// inside a single transaction.
package rules

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateID    = errors.New("duplicate rule ids in order batch")
	ErrDuplicateIndex = errors.New("duplicate indices in order batch")
	ErrBatchCover     = errors.New("order batch must cover exactly the configuration's rules")
)

// Entry pairs a rule id with an index, both for the current state and
// for a requested ordering.
type Entry struct {
	ID    int
	Index int
}

// Move relocates one rule. Scratch is a negative index disjoint from
// every valid position; applying all scratch moves before any final
// move keeps the unique index constraint satisfied at every point.
type Move struct {
	ID      int
	Scratch int
	Final   int
}

// PlanReorder validates a requested ordering against the rules
// currently in the configuration's group and returns moves for the
// rules whose index actually changes.
//
// The batch must reference each current rule exactly once and assign
// each index at most once; duplicate, missing or foreign ids and
// colliding indices reject the whole batch before any write.
func PlanReorder(current, requested []Entry) ([]Move, error) {
	seen := make(map[int]bool, len(requested))
	seenIndex := make(map[int]bool, len(requested))
	for _, e := range requested {
		if seen[e.ID] {
			return nil, fmt.Errorf("%w: id %d", ErrDuplicateID, e.ID)
		}
		seen[e.ID] = true
		if seenIndex[e.Index] {
			return nil, fmt.Errorf("%w: index %d", ErrDuplicateIndex, e.Index)
		}
		seenIndex[e.Index] = true
	}

	if len(requested) != len(current) {
		return nil, fmt.Errorf("%w: got %d ids, have %d rules", ErrBatchCover, len(requested), len(current))
	}

	currentIndex := make(map[int]int, len(current))
	for _, e := range current {
		currentIndex[e.ID] = e.Index
	}

	var moves []Move
	for _, e := range requested {
		have, ok := currentIndex[e.ID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown id %d", ErrBatchCover, e.ID)
		}
		if have == e.Index {
			continue
		}
		// -index-1 so that index 0 still leaves the valid domain
		moves = append(moves, Move{ID: e.ID, Scratch: -e.Index - 1, Final: e.Index})
	}
	return moves, nil
}

// NextIndex returns the index a freshly appended rule should get:
// one past the largest existing index, or 0 for the first rule. New
// rules therefore start with the lowest priority in their group.
func NextIndex(existing []Entry) int {
	next := 0
	for _, e := range existing {
		if e.Index >= next {
			next = e.Index + 1
		}
	}
	return next
}
