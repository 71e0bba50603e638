package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kondate-app/kondate/internal/model"
	"github.com/kondate-app/kondate/internal/store"
)

const (
	// expiryLeadDays controls how far ahead the scheduler warns about
	// stock approaching its expiration date.
	expiryLeadDays = 2

	tickInterval = time.Hour
)

// Scheduler periodically scans fridge stock and sends expiry reminders.
type Scheduler struct {
	mu      sync.RWMutex
	service *Service
	push    *store.PushStore
	fridge  *store.FridgeStore
	logger  *slog.Logger
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler creates an expiry reminder scheduler.
func NewScheduler(svc *Service, pushStore *store.PushStore, fridgeStore *store.FridgeStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service: svc,
		push:    pushStore,
		fridge:  fridgeStore,
		logger:  logger,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now().UTC())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(now time.Time) {
	cutoff := now.AddDate(0, 0, expiryLeadDays)
	lots, err := s.fridge.ListExpiringBefore(cutoff)
	if err != nil {
		s.logger.Error("expiry scan", "error", err)
		return
	}

	for userID, userLots := range groupByUser(lots) {
		s.notifyUser(userID, userLots, now)
	}
}

func (s *Scheduler) notifyUser(userID int64, lots []model.FridgeLot, now time.Time) {
	// Only remind about each lot once per expiration date
	var fresh []model.FridgeLot
	for _, lot := range lots {
		refID := expiryRefID(lot)
		sent, err := s.push.WasSent(userID, model.NotifTypeExpiry, refID)
		if err != nil {
			s.logger.Error("check sent log", "error", err)
			continue
		}
		if !sent {
			fresh = append(fresh, lot)
		}
	}
	if len(fresh) == 0 {
		return
	}

	subs, err := s.push.ListByUser(userID)
	if err != nil {
		s.logger.Error("list subscriptions", "error", err)
		return
	}

	payload := expiryPayload(fresh, now)
	for i := range subs {
		if err := s.service.Send(&subs[i], payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.push.DeleteByEndpoint(subs[i].Endpoint)
			} else {
				s.logger.Warn("send expiry reminder", "error", err)
			}
		}
	}

	for _, lot := range fresh {
		if err := s.push.RecordSent(userID, model.NotifTypeExpiry, expiryRefID(lot)); err != nil {
			s.logger.Error("record sent", "error", err)
		}
	}
}

func groupByUser(lots []model.FridgeLot) map[int64][]model.FridgeLot {
	grouped := make(map[int64][]model.FridgeLot)
	for _, lot := range lots {
		grouped[lot.UserID] = append(grouped[lot.UserID], lot)
	}
	return grouped
}

func expiryRefID(lot model.FridgeLot) string {
	return fmt.Sprintf("lot-%d-%s", lot.ID, lot.ExpireAt.Format(model.DayKeyLayout))
}

// expiryPayload builds a reminder covering one user's expiring stock.
func expiryPayload(lots []model.FridgeLot, now time.Time) Payload {
	body := fmt.Sprintf("%d items in your fridge are expiring soon", len(lots))
	if len(lots) == 1 {
		lot := lots[0]
		switch {
		case lot.ExpireAt.Before(now):
			body = fmt.Sprintf("%s has passed its expiration date", lot.FoodName)
		case lot.ExpireAt.Sub(now) < 24*time.Hour:
			body = fmt.Sprintf("%s expires today", lot.FoodName)
		default:
			body = fmt.Sprintf("%s expires soon", lot.FoodName)
		}
	}

	return Payload{
		Title: "Fridge Check",
		Body:  body,
		URL:   "/fridge",
		Tag:   "expiry-reminder",
	}
}
