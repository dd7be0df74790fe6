package services

import (
	"math/rand/v2"

	"github.com/SAP-F-2025/voice-service/internal/models"
)

// Shuffler permutes ids in place. Tests inject a deterministic one.
type Shuffler func(ids []uint)

// DefaultShuffle is a uniform Fisher-Yates shuffle.
func DefaultShuffle(ids []uint) {
	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}

// ReconcileOrder maps a persisted order onto the current applicable set,
// given in bank order. The persisted order is never modified.
//
// With OrderAppend, persisted ids that are still applicable keep their
// position and applicable ids missing from the persisted order follow in
// bank order. With OrderDrop only persisted ids that are still applicable
// are returned. An empty persisted order yields the bank order.
func ReconcileOrder(persisted, applicable []uint, policy models.OrderPolicy) []uint {
	if len(persisted) == 0 {
		return append([]uint{}, applicable...)
	}

	current := make(map[uint]struct{}, len(applicable))
	for _, id := range applicable {
		current[id] = struct{}{}
	}

	out := make([]uint, 0, len(applicable))
	listed := make(map[uint]struct{}, len(persisted))
	for _, id := range persisted {
		if _, ok := current[id]; !ok {
			continue
		}
		if _, dup := listed[id]; dup {
			continue
		}
		listed[id] = struct{}{}
		out = append(out, id)
	}

	if policy == models.OrderDrop {
		return out
	}
	for _, id := range applicable {
		if _, ok := listed[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
