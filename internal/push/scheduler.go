package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/ladle/internal/model"
	"github.com/dukerupert/ladle/internal/store"
)

// Scheduler sends the daily dinner reminder to families with push
// subscriptions. Each family gets at most one reminder per day, sent
// once the local clock passes the configured hour.
type Scheduler struct {
	mu           sync.RWMutex
	service      *Service
	push         *store.PushStore
	plans        *store.MealPlanStore
	recipes      *store.RecipeStore
	reminderHour int
	interval     time.Duration
	logger       *slog.Logger
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewScheduler creates a reminder scheduler. reminderHour is the hour
// of day (0-23) after which reminders go out.
func NewScheduler(svc *Service, pushStore *store.PushStore, planStore *store.MealPlanStore, recipeStore *store.RecipeStore, reminderHour int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:      svc,
		push:         pushStore,
		plans:        planStore,
		recipes:      recipeStore,
		reminderHour: reminderHour,
		interval:     60 * time.Second,
		logger:       logger.With("component", "push"),
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
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now())
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
	if !s.service.Configured() {
		return
	}
	if now.Hour() < s.reminderHour {
		return
	}

	familyIDs, err := s.push.ListFamilyIDs()
	if err != nil {
		s.logger.Error("list families", "error", err)
		return
	}

	for _, fid := range familyIDs {
		s.sendDinnerReminder(fid, now)
	}
}

func (s *Scheduler) sendDinnerReminder(familyID int64, now time.Time) {
	today := now.Format("2006-01-02")
	refID := "dinner-" + today

	sent, err := s.push.WasSent(familyID, model.NotifTypeMealReminder, refID)
	if err != nil {
		s.logger.Error("check sent", "family_id", familyID, "error", err)
		return
	}
	if sent {
		return
	}

	slot, err := s.plans.GetSlot(familyID, today, model.MealDinner)
	if err != nil {
		s.logger.Error("get dinner slot", "family_id", familyID, "error", err)
		return
	}
	if slot == nil || slot.RecipeID == nil {
		return
	}

	recipe, err := s.recipes.GetByID(*slot.RecipeID)
	if err != nil || recipe == nil {
		return
	}

	subs, err := s.push.ListByFamily(familyID)
	if err != nil {
		s.logger.Error("list subscriptions", "family_id", familyID, "error", err)
		return
	}

	payload := Payload{
		Title: "Tonight's dinner",
		Body:  fmt.Sprintf("%s is on the menu tonight", recipe.Title),
		URL:   "/plan",
		Tag:   refID,
	}

	for _, sub := range subs {
		if err := s.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.push.DeleteByEndpoint(sub.Endpoint)
			} else {
				s.logger.Error("send reminder", "family_id", familyID, "error", err)
			}
		}
	}

	if err := s.push.MarkSent(familyID, model.NotifTypeMealReminder, refID); err != nil {
		s.logger.Error("mark sent", "family_id", familyID, "error", err)
	}
}
