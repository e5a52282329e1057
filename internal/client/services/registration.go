package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evolveua/queuevault/internal/client/kvstore"
	"github.com/evolveua/queuevault/internal/client/relayclient"
	"github.com/evolveua/queuevault/internal/client/securestore"
	"github.com/evolveua/queuevault/internal/common"
	"github.com/evolveua/queuevault/internal/logging"
	"github.com/google/uuid"
)

// Protected storage keys. Both values are sealed envelopes once a derived
// key exists; legacy plain values are upgraded on read.
const (
	RegistrationsKey = "registrations"
	StatsKey         = "stats"
)

// Registration is one queue entry. The profile fields are locked to the
// account that created it.
type Registration struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	EventID         string    `json:"eventId"`
	EventName       string    `json:"eventName"`
	Timestamp       time.Time `json:"timestamp"`
	Attendances     []string  `json:"attendances"`
	AttendanceCount int       `json:"attendanceCount"`
	PhoneVerified   bool      `json:"phoneVerified"`
	UserID          string    `json:"userId,omitempty"`
	UserEmail       string    `json:"userEmail,omitempty"`
}

// Stats is the aggregate object kept alongside the registration list.
type Stats struct {
	TotalRegistrations int       `json:"totalRegistrations"`
	LastUpdated        time.Time `json:"lastUpdated"`
}

// RegistrationService appends queue registrations locally and authenticates
// them to the external system through the signed relay. The local write is
// optimistic: if the relay rejects the event, the write is rolled back and
// the error surfaces to the user. There is never a silent partial success.
type RegistrationService struct {
	durable kvstore.Store
	relay   relayclient.Submitter
	logger  logging.Logger
	now     func() time.Time
}

func NewRegistrationService(durable kvstore.Store, relay relayclient.Submitter, logger logging.Logger) *RegistrationService {
	return &RegistrationService{
		durable: durable,
		relay:   relay,
		logger:  logger.With("module", "registration"),
		now:     time.Now,
	}
}

// Submit registers the session's user for event. On success the returned
// record is both stored locally (sealed) and acknowledged by the relay.
func (s *RegistrationService) Submit(ctx context.Context, sess *Session, event Event) (*Registration, error) {
	if sess == nil || len(sess.Key) == 0 {
		return nil, fmt.Errorf("submit registration: %w", common.ErrKeyUnavailable)
	}
	if event.ID == "" {
		return nil, fmt.Errorf("event not selected: %w", common.ErrValidation)
	}
	if sess.User.FullName == "" {
		return nil, fmt.Errorf("name required: %w", common.ErrValidation)
	}

	store := securestore.New(s.durable, sess.Key, s.logger)

	regs, err := s.loadRegistrations(ctx, store)
	if err != nil {
		return nil, err
	}

	reg := Registration{
		ID:            uuid.NewString(),
		Name:          sess.User.FullName,
		Phone:         sess.User.Phone,
		EventID:       event.ID,
		EventName:     event.Name,
		Timestamp:     s.now().UTC(),
		Attendances:   []string{},
		PhoneVerified: sess.User.PhoneVerified,
		UserID:        sess.User.ID,
		UserEmail:     sess.User.Email,
	}

	// Optimistic local write first, then the relay call.
	withNew := append(regs, reg)
	if err := s.saveAll(ctx, store, withNew); err != nil {
		return nil, err
	}

	if err := s.relay.Submit(ctx, "register", reg); err != nil {
		// Compensating rollback: drop the optimistic write so the local
		// state never claims an external record that does not exist.
		if rbErr := s.saveAll(ctx, store, regs); rbErr != nil {
			s.logger.Error(ctx, "rollback failed", "registration_id", reg.ID, "error", rbErr)
		}
		return nil, err
	}

	s.logger.Info(ctx, "registration submitted", "registration_id", reg.ID, "event_id", event.ID)
	return &reg, nil
}

// List returns the session user's view of the stored registrations.
func (s *RegistrationService) List(ctx context.Context, sess *Session) ([]Registration, error) {
	if sess == nil || len(sess.Key) == 0 {
		return nil, fmt.Errorf("list registrations: %w", common.ErrKeyUnavailable)
	}
	store := securestore.New(s.durable, sess.Key, s.logger)
	return s.loadRegistrations(ctx, store)
}

// Stats returns the aggregate object, or zero values when none exists yet.
func (s *RegistrationService) Stats(ctx context.Context, sess *Session) (*Stats, error) {
	if sess == nil || len(sess.Key) == 0 {
		return nil, fmt.Errorf("load stats: %w", common.ErrKeyUnavailable)
	}
	store := securestore.New(s.durable, sess.Key, s.logger)

	var st Stats
	if err := store.Get(ctx, StatsKey, &st); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &Stats{}, nil
		}
		return nil, err
	}
	return &st, nil
}

func (s *RegistrationService) loadRegistrations(ctx context.Context, store *securestore.Store) ([]Registration, error) {
	var regs []Registration
	if err := store.Get(ctx, RegistrationsKey, &regs); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return regs, nil
}

// saveAll writes the registration list and refreshes the stats object.
func (s *RegistrationService) saveAll(ctx context.Context, store *securestore.Store, regs []Registration) error {
	if err := store.Set(ctx, RegistrationsKey, regs); err != nil {
		return err
	}
	return store.Set(ctx, StatsKey, Stats{
		TotalRegistrations: len(regs),
		LastUpdated:        s.now().UTC(),
	})
}
