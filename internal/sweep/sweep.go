// Package sweep auto-closes sessions whose window has passed. Operators can
// close a session explicitly; the sweeper is the backstop that marks the
// stragglers no-show when nobody presses the button.
package sweep

import (
	"context"
	"log"
	"time"

	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/models"
	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/session"
	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/store"
)

type Storage interface {
	ListOpenSessions(ctx context.Context, visitDate string) ([]store.OpenSession, error)
	GetClinicWindows(ctx context.Context, clinicID string) ([]models.WindowConfig, error)
	EndSession(ctx context.Context, input store.EndSessionInput) (models.SessionStats, []models.QueueEntry, error)
}

type Sweeper struct {
	store    Storage
	interval time.Duration
	grace    time.Duration
	now      func() time.Time
}

func New(storage Storage, interval, grace time.Duration) *Sweeper {
	return &Sweeper{store: storage, interval: interval, grace: grace, now: time.Now}
}

// Run blocks until ctx is cancelled. A zero interval disables the sweeper.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := s.now().UTC()
	visitDate := now.Format(models.DateFormat)

	open, err := s.store.ListOpenSessions(ctx, visitDate)
	if err != nil {
		log.Printf("sweep list error: %v", err)
		return
	}

	windowCache := map[string][]models.SessionWindow{}
	for _, item := range open {
		windows, ok := windowCache[item.ClinicID]
		if !ok {
			configs, err := s.store.GetClinicWindows(ctx, item.ClinicID)
			if err != nil {
				log.Printf("sweep windows clinic=%s error: %v", item.ClinicID, err)
				continue
			}
			windows, err = session.Parse(configs)
			if err != nil {
				log.Printf("sweep parse clinic=%s error: %v", item.ClinicID, err)
				continue
			}
			windowCache[item.ClinicID] = windows
		}

		if !Due(windows, item.Session, now, s.grace) {
			continue
		}
		stats, _, err := s.store.EndSession(ctx, store.EndSessionInput{
			ClinicID:  item.ClinicID,
			DoctorID:  item.DoctorID,
			Session:   item.Session,
			VisitDate: visitDate,
			Now:       now,
		})
		if err != nil {
			log.Printf("sweep close clinic=%s doctor=%s session=%s error: %v",
				item.ClinicID, item.DoctorID, item.Session, err)
			continue
		}
		log.Printf("sweep closed clinic=%s doctor=%s session=%s no_show=%d",
			item.ClinicID, item.DoctorID, item.Session, stats.NoShowPatients)
	}
}

// Due reports whether the named window ended at least grace ago today.
// Unknown session names are never due; an operator has to close those by hand.
func Due(windows []models.SessionWindow, sessionName string, now time.Time, grace time.Duration) bool {
	for _, w := range windows {
		if w.Name != sessionName {
			continue
		}
		end := time.Date(now.Year(), now.Month(), now.Day(), w.End/100, w.End%100, 0, 0, now.Location())
		return now.Sub(end) >= grace
	}
	return false
}
