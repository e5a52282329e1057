package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/evolveua/queuevault/internal/client/kvstore"
	"github.com/evolveua/queuevault/internal/client/securestore"
	"github.com/evolveua/queuevault/internal/common"
)

// EventsKey is the storage key the admin-managed event catalog lives behind.
// The catalog is needed before login, so it is stored plain.
const EventsKey = "admin_events"

// Event is a registerable event.
type Event struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EventCatalog loads events from the durable store, falling back to a local
// events.json file when the store has none.
type EventCatalog struct {
	durable kvstore.Store
	path    string
}

func NewEventCatalog(durable kvstore.Store, path string) *EventCatalog {
	return &EventCatalog{durable: durable, path: path}
}

// Load returns the available events, or an empty slice when no catalog
// exists anywhere.
func (c *EventCatalog) Load(ctx context.Context) ([]Event, error) {
	raw, err := c.durable.Get(ctx, EventsKey)
	if err == nil {
		// The catalog is written plain so it can be read pre-login; a sealed
		// value cannot be opened here and falls through to the file.
		if sv, derr := securestore.Decode(raw); derr == nil && sv.Kind == securestore.Plain {
			var events []Event
			if err := json.Unmarshal(sv.Raw, &events); err != nil {
				return nil, fmt.Errorf("decode event catalog: %w", err)
			}
			if len(events) > 0 {
				return events, nil
			}
		}
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if c.path == "" {
		return nil, nil
	}
	raw, err = os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read events file: %w", err)
	}
	var events []Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("decode events file: %w", err)
	}
	return events, nil
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// Select picks an event by id, or by 1-based position when param is all
// digits (the share-link form). Unknown selectors yield common.ErrNotFound.
func Select(events []Event, param string) (*Event, error) {
	if param == "" {
		return nil, fmt.Errorf("event selector empty: %w", common.ErrValidation)
	}

	if digitsOnly.MatchString(param) {
		idx, err := strconv.Atoi(param)
		if err == nil && idx >= 1 && idx <= len(events) {
			e := events[idx-1]
			return &e, nil
		}
	}

	for i := range events {
		if events[i].ID == param {
			e := events[i]
			return &e, nil
		}
	}
	return nil, fmt.Errorf("event %q: %w", param, common.ErrNotFound)
}
