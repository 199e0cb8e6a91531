// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/innitec-lgtm/SupportCenter-v1/models"
)

// Collection keys, also the local file names
const (
	KeyTickets   = "tickets"
	KeyEngineers = "engineers"
	KeyContacts  = "contacts"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type seedData struct {
	DefaultEngineer string `yaml:"default_engineer"`
	Engineers       []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"engineers"`
	Contacts []struct {
		ID         string `yaml:"id"`
		Name       string `yaml:"name"`
		Department string `yaml:"department"`
		Extension  string `yaml:"extension"`
	} `yaml:"contacts"`
}

// Store holds the three collections the helpdesk works with
type Store struct {
	Tickets   *Collection[[]models.Ticket]
	Engineers *Collection[models.EngineerRoster]
	Contacts  *Collection[[]models.Contact]

	backend *Backend
}

// New wires the collections to backend. pub may be nil.
func New(backend *Backend, pub Publisher) (*Store, error) {
	seed, err := parseSeed(defaultsYAML)
	if err != nil {
		return nil, err
	}

	return &Store{
		Tickets: NewCollection(KeyTickets, backend, func() []models.Ticket {
			return []models.Ticket{}
		}, pub),
		Engineers: NewCollection(KeyEngineers, backend, func() models.EngineerRoster {
			return seed.roster()
		}, pub),
		Contacts: NewCollection(KeyContacts, backend, func() []models.Contact {
			return seed.contacts()
		}, pub),
		backend: backend,
	}, nil
}

func (s *Store) RemoteEnabled() bool {
	return s.backend.RemoteEnabled()
}

func parseSeed(data []byte) (seedData, error) {
	var seed seedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return seedData{}, fmt.Errorf("failed to parse default data: %w", err)
	}
	if err := seed.roster().Validate(); err != nil {
		return seedData{}, fmt.Errorf("invalid default engineers: %w", err)
	}
	return seed, nil
}

func (s seedData) roster() models.EngineerRoster {
	r := models.EngineerRoster{Engineers: make([]models.Engineer, 0, len(s.Engineers))}
	for _, e := range s.Engineers {
		r.Engineers = append(r.Engineers, models.Engineer{ID: e.ID, Name: e.Name})
	}
	if s.DefaultEngineer != "" {
		id := s.DefaultEngineer
		r.DefaultEngineerID = &id
	}
	return r
}

func (s seedData) contacts() []models.Contact {
	out := make([]models.Contact, 0, len(s.Contacts))
	for _, c := range s.Contacts {
		out = append(out, models.Contact{
			ID:         c.ID,
			Name:       c.Name,
			Department: c.Department,
			Extension:  c.Extension,
		})
	}
	return out
}
