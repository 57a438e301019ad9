package queue

import (
	"fmt"
	"sort"

	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/models"
)

// View is the derived state of one doctor's queue: what the front desk and
// the waiting-room display render. It is recomputed from stored entries on
// every read, never maintained incrementally.
type View struct {
	NowServing  *models.QueueEntry  `json:"now_serving,omitempty"`
	Next        *models.QueueEntry  `json:"next,omitempty"`
	WaitingList []models.QueueEntry `json:"waiting_list"`
	Display     []models.QueueEntry `json:"display"`
	Warnings    []string            `json:"warnings,omitempty"`
}

var statusRank = map[string]int{
	models.StatusInConsultation: 1,
	models.StatusWaiting:        2,
	models.StatusSkipped:        3,
	models.StatusCompleted:      4,
	models.StatusCancelled:      5,
}

// BuildView derives the queue view from the entries of one doctor and
// (optionally) one session. Waiting order is by token number, the single
// canonical sort key. More than one in-consultation entry is an integrity
// problem: the view stays deterministic (lowest token wins) and the
// condition is surfaced as a warning rather than repaired.
func BuildView(entries []models.QueueEntry) View {
	view := View{WaitingList: []models.QueueEntry{}}

	var serving []models.QueueEntry
	for _, entry := range entries {
		switch entry.Status {
		case models.StatusInConsultation:
			serving = append(serving, entry)
		case models.StatusWaiting:
			view.WaitingList = append(view.WaitingList, entry)
		}
	}

	sort.Slice(view.WaitingList, func(i, j int) bool {
		return view.WaitingList[i].TokenNumber < view.WaitingList[j].TokenNumber
	})
	if len(view.WaitingList) > 0 {
		next := view.WaitingList[0]
		view.Next = &next
	}

	if len(serving) > 0 {
		sort.Slice(serving, func(i, j int) bool {
			return serving[i].TokenNumber < serving[j].TokenNumber
		})
		current := serving[0]
		view.NowServing = &current
		if len(serving) > 1 {
			view.Warnings = append(view.Warnings, fmt.Sprintf(
				"%d entries in consultation for doctor %s session %q; showing token %d",
				len(serving), current.DoctorID, current.Session, current.TokenNumber))
		}
	}

	view.Display = append([]models.QueueEntry(nil), entries...)
	sort.SliceStable(view.Display, func(i, j int) bool {
		ri, rj := displayRank(view.Display[i].Status), displayRank(view.Display[j].Status)
		if ri != rj {
			return ri < rj
		}
		return view.Display[i].CheckInTime.Before(view.Display[j].CheckInTime)
	})

	return view
}

func displayRank(status string) int {
	if rank, ok := statusRank[status]; ok {
		return rank
	}
	return len(statusRank) + 1
}

// IsOutOfTurn reports whether calling entryID would jump the line: another
// entry is in consultation and entryID is not the head of the waiting list.
// Such a call requires a justification reason.
func IsOutOfTurn(entries []models.QueueEntry, entryID string) bool {
	view := BuildView(entries)
	if view.NowServing == nil || view.Next == nil {
		return false
	}
	return view.Next.EntryID != entryID
}
