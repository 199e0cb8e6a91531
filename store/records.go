// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/innitec-lgtm/SupportCenter-v1/ids"
	"github.com/innitec-lgtm/SupportCenter-v1/models"
)

var ErrTicketNotFound = errors.New("ticket not found")

// GetTicket returns one ticket by ID
func (s *Store) GetTicket(ctx context.Context, id string) (models.Ticket, error) {
	tickets, _ := s.Tickets.Load(ctx)
	for _, t := range tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Ticket{}, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
}

// CreateTicket appends a new PENDING ticket. The server assigns the ID and
// the request time.
func (s *Store) CreateTicket(ctx context.Context, req models.CreateTicketRequest, now time.Time) (models.Ticket, error) {
	ticket := models.Ticket{
		Name:        strings.TrimSpace(req.Name),
		Department:  strings.TrimSpace(req.Department),
		Phone:       strings.TrimSpace(req.Phone),
		Requirement: strings.TrimSpace(req.Requirement),
		Urgency:     req.Urgency,
		RequestTime: now.UnixMilli(),
		Status:      models.StatusPending,
	}
	if ticket.Urgency == "" {
		ticket.Urgency = models.UrgencyMedium
	}
	if ticket.Urgency.Rank() == 0 {
		return models.Ticket{}, fmt.Errorf("%w: %q", models.ErrInvalidUrgency, ticket.Urgency)
	}
	if ticket.Name == "" || ticket.Department == "" || ticket.Requirement == "" {
		return models.Ticket{}, fmt.Errorf("%w: name, department and requirement", models.ErrMissingField)
	}

	_, _, err := s.Tickets.Update(ctx, func(tickets []models.Ticket) ([]models.Ticket, error) {
		taken := make(map[string]bool, len(tickets))
		for _, t := range tickets {
			taken[t.ID] = true
		}
		for {
			id, err := ids.NewTicketID()
			if err != nil {
				return nil, err
			}
			if !taken[id] {
				ticket.ID = id
				break
			}
		}
		return append(tickets, ticket), nil
	})
	if err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

// UpdateTicket merges req into the ticket with the given ID. A ticket
// without an engineer gets the roster's default engineer.
func (s *Store) UpdateTicket(ctx context.Context, id string, req models.UpdateTicketRequest, now time.Time) (models.Ticket, error) {
	roster, _ := s.Engineers.Load(ctx)
	fallback := roster.DefaultName()

	var updated models.Ticket
	_, _, err := s.Tickets.Update(ctx, func(tickets []models.Ticket) ([]models.Ticket, error) {
		for i, t := range tickets {
			if t.ID != id {
				continue
			}
			next, err := t.Apply(req, fallback, now)
			if err != nil {
				return nil, err
			}
			out := append([]models.Ticket(nil), tickets...)
			out[i] = next
			updated = next
			return out, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	})
	if err != nil {
		return models.Ticket{}, err
	}
	return updated, nil
}

// DeleteTicket removes the ticket with the given ID
func (s *Store) DeleteTicket(ctx context.Context, id string) error {
	_, _, err := s.Tickets.Update(ctx, func(tickets []models.Ticket) ([]models.Ticket, error) {
		out := make([]models.Ticket, 0, len(tickets))
		for _, t := range tickets {
			if t.ID != id {
				out = append(out, t)
			}
		}
		if len(out) == len(tickets) {
			return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
		}
		return out, nil
	})
	return err
}

// ReplaceEngineers validates and stores a new roster. A default that
// points at an engineer no longer listed moves to the first engineer.
func (s *Store) ReplaceEngineers(ctx context.Context, roster models.EngineerRoster, expected *uint64) (uint64, error) {
	if roster.Engineers == nil {
		roster.Engineers = []models.Engineer{}
	}
	roster = roster.EnsureDefault()
	if err := roster.Validate(); err != nil {
		return 0, err
	}
	return s.Engineers.Replace(ctx, roster, expected)
}

// PutEngineer adds an engineer, or renames it when the ID is already
// listed. The first engineer of an empty roster becomes the default.
func (s *Store) PutEngineer(ctx context.Context, e models.Engineer) (models.EngineerRoster, uint64, error) {
	e.ID = strings.TrimSpace(e.ID)
	e.Name = strings.TrimSpace(e.Name)
	if e.ID == "" {
		e.ID = ids.NewRecordID()
	}
	if e.Name == "" {
		return models.EngineerRoster{}, 0, fmt.Errorf("%w: engineer name", models.ErrMissingField)
	}
	return s.Engineers.Update(ctx, func(r models.EngineerRoster) (models.EngineerRoster, error) {
		if r.Has(e.ID) {
			return r.Rename(e.ID, e.Name)
		}
		return r.Add(e), nil
	})
}

// RemoveEngineer drops an engineer, promoting a new default if needed
func (s *Store) RemoveEngineer(ctx context.Context, id string) (models.EngineerRoster, uint64, error) {
	return s.Engineers.Update(ctx, func(r models.EngineerRoster) (models.EngineerRoster, error) {
		if !r.Has(id) {
			return r, fmt.Errorf("%w: %s", models.ErrEngineerNotFound, id)
		}
		return r.Remove(id), nil
	})
}

// SetDefaultEngineer points the roster default at id
func (s *Store) SetDefaultEngineer(ctx context.Context, id string) (models.EngineerRoster, uint64, error) {
	return s.Engineers.Update(ctx, func(r models.EngineerRoster) (models.EngineerRoster, error) {
		return r.SetDefault(id)
	})
}

// ReplaceContacts stores a new contact directory. Contacts without an ID
// get one.
func (s *Store) ReplaceContacts(ctx context.Context, contacts []models.Contact, expected *uint64) (uint64, error) {
	out := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.ID == "" {
			c.ID = ids.NewRecordID()
		}
		out = append(out, c)
	}
	return s.Contacts.Replace(ctx, out, expected)
}

// AppendContacts adds contacts to the end of the directory
func (s *Store) AppendContacts(ctx context.Context, added []models.Contact) ([]models.Contact, error) {
	all, _, err := s.Contacts.Update(ctx, func(contacts []models.Contact) ([]models.Contact, error) {
		return append(append([]models.Contact(nil), contacts...), added...), nil
	})
	return all, err
}
