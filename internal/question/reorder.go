package question

import (
	"context"
	"fmt"
)

// Move relocates the question at list index from to index to (indices
// into the display_order-sorted bank) and rewrites display_order for the
// affected contiguous range only. The range's positions keep the order
// values they already held, so records outside the range never move
// relative to it. Updates run one by one in ascending index order; a
// failure partway leaves a consistent partial ordering.
func Move(ctx context.Context, store Store, from, to int) error {
	if from == to {
		return nil
	}
	list, err := store.List(ctx)
	if err != nil {
		return err
	}
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return fmt.Errorf("reorder out of range: %d -> %d (have %d)", from, to, len(list))
	}

	start, end := from, to
	if start > end {
		start, end = end, start
	}
	// display_order values currently occupying the affected positions,
	// already ascending because list is sorted.
	vals := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		vals = append(vals, list[i].DisplayOrder)
	}

	moved := list[from]
	list = append(list[:from], list[from+1:]...)
	rest := append([]Question{}, list[to:]...)
	list = append(append(list[:to:to], moved), rest...)

	for i := start; i <= end; i++ {
		if _, err := store.Update(ctx, list[i].ID, Fields{"display_order": vals[i-start]}); err != nil {
			return fmt.Errorf("reorder at index %d: %w", i, err)
		}
	}
	return nil
}
