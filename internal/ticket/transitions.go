package ticket

import (
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// allowedTransitions is the full lifecycle lattice. Terminal states have no
// entry. Every transition is actor-initiated; nothing moves on a timer.
var allowedTransitions = map[models.TicketStatus][]models.TicketStatus{
	models.StatusPending: {
		models.StatusScheduled,
		models.StatusRejected,
	},
	models.StatusPendingTriage: {
		models.StatusScheduled,
		models.StatusRejected,
		models.StatusDerived,
	},
	models.StatusEnRoute: {
		models.StatusCompleted,
		models.StatusPendingTriage,
	},
	models.StatusScheduled: {
		models.StatusInProgress,
	},
	// in_progress may regress to scheduled when a mechanic pauses.
	models.StatusInProgress: {
		models.StatusScheduled,
		models.StatusCompleted,
	},
}

// CanTransition reports whether a ticket may move from one status to another.
func CanTransition(from, to models.TicketStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
