// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package syncclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/innitec-lgtm/SupportCenter-v1/models"
)

// ErrStale is returned by Apply for a message older than the cached copy
var ErrStale = errors.New("stale sync message")

// Cache is the client's copy of the three collections. Every update
// replaces a whole collection.
type Cache struct {
	mu            sync.RWMutex
	tickets       []models.Ticket
	ticketIDs     map[string]struct{}
	ticketsLoaded bool
	engineers     models.EngineerRoster
	contacts      []models.Contact
	revisions     map[string]uint64
}

func NewCache() *Cache {
	return &Cache{
		tickets:   []models.Ticket{},
		ticketIDs: map[string]struct{}{},
		contacts:  []models.Contact{},
		revisions: map[string]uint64{},
	}
}

// ReplaceTickets swaps in a new ticket list and returns the tickets whose
// IDs were not in the previous one. The first load reports nothing.
func (c *Cache) ReplaceTickets(tickets []models.Ticket) []models.Ticket {
	ids := make(map[string]struct{}, len(tickets))
	for _, t := range tickets {
		ids[t.ID] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var added []models.Ticket
	if c.ticketsLoaded {
		for _, t := range tickets {
			if _, seen := c.ticketIDs[t.ID]; !seen {
				added = append(added, t)
			}
		}
	}

	c.tickets = append([]models.Ticket(nil), tickets...)
	c.ticketIDs = ids
	c.ticketsLoaded = true
	return added
}

func (c *Cache) ReplaceEngineers(roster models.EngineerRoster) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engineers = roster
}

func (c *Cache) ReplaceContacts(contacts []models.Contact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contacts = append([]models.Contact(nil), contacts...)
}

// Apply decodes a sync message into the matching collection. It returns
// the newly seen tickets for ticket events. A message whose revision is
// below the cached one is dropped with ErrStale.
func (c *Cache) Apply(msg models.SyncMessage) ([]models.Ticket, error) {
	c.mu.RLock()
	current, seen := c.revisions[msg.Event]
	c.mu.RUnlock()
	if seen && msg.Revision < current {
		return nil, fmt.Errorf("%w: %s revision %d, have %d", ErrStale, msg.Event, msg.Revision, current)
	}
	return c.replace(msg)
}

// ApplySnapshot is Apply without the revision check, for documents
// fetched directly from the server
func (c *Cache) ApplySnapshot(msg models.SyncMessage) ([]models.Ticket, error) {
	return c.replace(msg)
}

// ResetRevisions forgets the revisions seen so far. Server revisions start
// over when the server restarts, so a new connection starts from scratch.
func (c *Cache) ResetRevisions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revisions = map[string]uint64{}
}

func (c *Cache) replace(msg models.SyncMessage) ([]models.Ticket, error) {
	var added []models.Ticket
	switch msg.Event {
	case models.EventTickets:
		var tickets []models.Ticket
		if err := json.Unmarshal(msg.Data, &tickets); err != nil {
			return nil, fmt.Errorf("failed to decode tickets: %w", err)
		}
		if tickets == nil {
			tickets = []models.Ticket{}
		}
		added = c.ReplaceTickets(tickets)
	case models.EventEngineers:
		var roster models.EngineerRoster
		if err := json.Unmarshal(msg.Data, &roster); err != nil {
			return nil, fmt.Errorf("failed to decode engineers: %w", err)
		}
		c.ReplaceEngineers(roster)
	case models.EventContacts:
		var contacts []models.Contact
		if err := json.Unmarshal(msg.Data, &contacts); err != nil {
			return nil, fmt.Errorf("failed to decode contacts: %w", err)
		}
		c.ReplaceContacts(contacts)
	default:
		return nil, fmt.Errorf("unknown event %q", msg.Event)
	}

	c.mu.Lock()
	c.revisions[msg.Event] = msg.Revision
	c.mu.Unlock()
	return added, nil
}

func (c *Cache) Tickets() []models.Ticket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Ticket(nil), c.tickets...)
}

func (c *Cache) Engineers() models.EngineerRoster {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r := c.engineers
	r.Engineers = append([]models.Engineer(nil), r.Engineers...)
	return r
}

func (c *Cache) Contacts() []models.Contact {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Contact(nil), c.contacts...)
}

// Revision returns the last revision seen for an event
func (c *Cache) Revision(event string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revisions[event]
}
