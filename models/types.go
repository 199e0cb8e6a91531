package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Urgency levels
type Urgency string

const (
	UrgencyHigh   Urgency = "HIGH"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyLow    Urgency = "LOW"
)

// Ticket status constants
type TicketStatus string

const (
	StatusPending    TicketStatus = "PENDING"
	StatusInProgress TicketStatus = "IN_PROGRESS"
	StatusCompleted  TicketStatus = "COMPLETED"
)

// Sync channel event names
const (
	EventTickets   = "tickets:updated"
	EventEngineers = "engineers:updated"
	EventContacts  = "contacts:updated"
	EventSync      = "sync"
)

var (
	ErrInvalidUrgency     = errors.New("invalid urgency")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrSignatureRequired  = errors.New("signature required to complete a ticket")
	ErrInvalidSignature   = errors.New("signature must be a data:image URL")
	ErrMissingField       = errors.New("missing required field")
	ErrEngineerNotFound   = errors.New("engineer not found")
	ErrDuplicateEngineer  = errors.New("duplicate engineer id")
	ErrImmutableRequested = errors.New("requestTime cannot be changed")
)

// Legacy labels written by the first version of the helpdesk UI.
var legacyUrgency = map[string]Urgency{
	"高": UrgencyHigh,
	"中": UrgencyMedium,
	"低": UrgencyLow,
}

var legacyStatus = map[string]TicketStatus{
	"等待處理": StatusPending,
	"處理中":  StatusInProgress,
	"已完修":  StatusCompleted,
}

// ParseUrgency accepts canonical names (any case) and legacy labels
func ParseUrgency(s string) (Urgency, error) {
	s = strings.TrimSpace(s)
	if u, ok := legacyUrgency[s]; ok {
		return u, nil
	}
	switch u := Urgency(strings.ToUpper(s)); u {
	case UrgencyHigh, UrgencyMedium, UrgencyLow:
		return u, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUrgency, s)
}

// Rank orders urgencies: HIGH > MEDIUM > LOW. Unknown values rank lowest.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 3
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 1
	}
	return 0
}

func (u Urgency) Valid() bool {
	return u.Rank() > 0
}

// UnmarshalJSON normalizes known names and legacy labels. Anything else,
// including "", is kept verbatim so one odd record cannot make a stored
// document unreadable; request paths check Valid.
func (u *Urgency) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if parsed, err := ParseUrgency(s); err == nil {
		*u = parsed
	} else {
		*u = Urgency(s)
	}
	return nil
}

// ParseStatus accepts canonical names (any case) and legacy labels
func ParseStatus(s string) (TicketStatus, error) {
	s = strings.TrimSpace(s)
	if st, ok := legacyStatus[s]; ok {
		return st, nil
	}
	switch st := TicketStatus(strings.ToUpper(s)); st {
	case StatusPending, StatusInProgress, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s TicketStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// UnmarshalJSON follows the same rules as Urgency
func (s *TicketStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if parsed, err := ParseStatus(raw); err == nil {
		*s = parsed
	} else {
		*s = TicketStatus(raw)
	}
	return nil
}

// Domain types

// Timestamps are milliseconds since the Unix epoch so that documents
// written by older clients round-trip unchanged.
type Ticket struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Department       string       `json:"department"`
	Phone            string       `json:"phone"`
	Requirement      string       `json:"requirement"`
	Urgency          Urgency      `json:"urgency"`
	RequestTime      int64        `json:"requestTime"`
	Status           TicketStatus `json:"status"`
	ProcessNote      string       `json:"processNote,omitempty"`
	CompletionTime   *int64       `json:"completionTime,omitempty"`
	AssignedEngineer string       `json:"assignedEngineer,omitempty"`
	Signature        string       `json:"signature,omitempty"` // data:image/png;base64,...
}

func (t Ticket) IsCompleted() bool {
	return t.Status == StatusCompleted
}

func (t Ticket) RequestedAt() time.Time {
	return time.UnixMilli(t.RequestTime)
}

// CompletedAt returns the completion time, if one was recorded
func (t Ticket) CompletedAt() (time.Time, bool) {
	if t.CompletionTime == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*t.CompletionTime), true
}

// Apply merges an update into the ticket. Entering COMPLETED stamps the
// completion time once; leaving it clears the stamp. Completing requires a
// signature, either already on the ticket or supplied with the update.
// fallbackEngineer is assigned when the ticket has no engineer yet.
func (t Ticket) Apply(req UpdateTicketRequest, fallbackEngineer string, now time.Time) (Ticket, error) {
	if req.RequestTime != nil && *req.RequestTime != t.RequestTime {
		return t, ErrImmutableRequested
	}
	if req.Name != nil {
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.Department != nil {
		t.Department = strings.TrimSpace(*req.Department)
	}
	if req.Phone != nil {
		t.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Requirement != nil {
		t.Requirement = strings.TrimSpace(*req.Requirement)
	}
	if req.Urgency != nil {
		if !req.Urgency.Valid() {
			return t, fmt.Errorf("%w: %q", ErrInvalidUrgency, *req.Urgency)
		}
		t.Urgency = *req.Urgency
	}
	if req.ProcessNote != nil {
		t.ProcessNote = *req.ProcessNote
	}
	if req.AssignedEngineer != nil {
		t.AssignedEngineer = strings.TrimSpace(*req.AssignedEngineer)
	}
	if t.AssignedEngineer == "" {
		t.AssignedEngineer = fallbackEngineer
	}
	if req.Signature != nil && *req.Signature != "" {
		if !strings.HasPrefix(*req.Signature, "data:image/") {
			return t, ErrInvalidSignature
		}
		t.Signature = *req.Signature
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return t, fmt.Errorf("%w: %q", ErrInvalidStatus, *req.Status)
		}
		t.Status = *req.Status
	}

	if t.Status == StatusCompleted {
		if t.Signature == "" {
			return t, ErrSignatureRequired
		}
		if t.CompletionTime == nil {
			ms := now.UnixMilli()
			t.CompletionTime = &ms
		}
	} else {
		t.CompletionTime = nil
	}

	if t.Name == "" || t.Department == "" || t.Requirement == "" {
		return t, ErrMissingField
	}
	return t, nil
}

type Engineer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EngineerRoster is the engineers collection. The default engineer is an
// explicit reference rather than a flag on each entry.
type EngineerRoster struct {
	Engineers         []Engineer `json:"engineers"`
	DefaultEngineerID *string    `json:"defaultEngineerId,omitempty"`
}

// legacyEngineer is the array element shape older files use
type legacyEngineer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// UnmarshalJSON accepts both the roster object and a legacy array of
// engineers with isDefault flags. The first flagged engineer wins.
func (r *EngineerRoster) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var legacy []legacyEngineer
		if err := json.Unmarshal(data, &legacy); err != nil {
			return err
		}
		roster := EngineerRoster{Engineers: make([]Engineer, 0, len(legacy))}
		for _, e := range legacy {
			roster.Engineers = append(roster.Engineers, Engineer{ID: e.ID, Name: e.Name})
			if e.IsDefault && roster.DefaultEngineerID == nil {
				id := e.ID
				roster.DefaultEngineerID = &id
			}
		}
		*r = roster
		return nil
	}

	type plain EngineerRoster
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = EngineerRoster(p)
	if r.Engineers == nil {
		r.Engineers = []Engineer{}
	}
	return nil
}

// Validate checks that IDs are unique and that the default, if set,
// refers to a listed engineer
func (r EngineerRoster) Validate() error {
	seen := make(map[string]bool, len(r.Engineers))
	for _, e := range r.Engineers {
		if e.ID == "" || strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("%w: engineer id and name", ErrMissingField)
		}
		if seen[e.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateEngineer, e.ID)
		}
		seen[e.ID] = true
	}
	if r.DefaultEngineerID != nil && !seen[*r.DefaultEngineerID] {
		return fmt.Errorf("%w: default %s", ErrEngineerNotFound, *r.DefaultEngineerID)
	}
	return nil
}

// Default returns the default engineer, if any
func (r EngineerRoster) Default() (Engineer, bool) {
	if r.DefaultEngineerID == nil {
		return Engineer{}, false
	}
	for _, e := range r.Engineers {
		if e.ID == *r.DefaultEngineerID {
			return e, true
		}
	}
	return Engineer{}, false
}

// DefaultName returns the default engineer's name or ""
func (r EngineerRoster) DefaultName() string {
	e, _ := r.Default()
	return e.Name
}

// Add appends an engineer. The first engineer of an empty roster becomes
// the default.
func (r EngineerRoster) Add(e Engineer) EngineerRoster {
	out := r.clone()
	out.Engineers = append(out.Engineers, e)
	if len(out.Engineers) == 1 {
		id := e.ID
		out.DefaultEngineerID = &id
	}
	return out
}

// Remove drops an engineer. Removing the default promotes the first
// remaining engineer.
func (r EngineerRoster) Remove(id string) EngineerRoster {
	out := EngineerRoster{Engineers: make([]Engineer, 0, len(r.Engineers))}
	for _, e := range r.Engineers {
		if e.ID != id {
			out.Engineers = append(out.Engineers, e)
		}
	}
	if r.DefaultEngineerID != nil {
		def := *r.DefaultEngineerID
		out.DefaultEngineerID = &def
	}
	return out.EnsureDefault()
}

// EnsureDefault repairs a default that no longer refers to a listed
// engineer by promoting the first one. An empty roster has no default.
func (r EngineerRoster) EnsureDefault() EngineerRoster {
	if r.DefaultEngineerID == nil {
		return r
	}
	if _, ok := r.Default(); ok {
		return r
	}
	out := r.clone()
	out.DefaultEngineerID = nil
	if len(out.Engineers) > 0 {
		first := out.Engineers[0].ID
		out.DefaultEngineerID = &first
	}
	return out
}

// Rename changes an engineer's display name
func (r EngineerRoster) Rename(id, name string) (EngineerRoster, error) {
	out := r.clone()
	for i, e := range out.Engineers {
		if e.ID == id {
			out.Engineers[i].Name = name
			return out, nil
		}
	}
	return r, fmt.Errorf("%w: %s", ErrEngineerNotFound, id)
}

// Has reports whether id is listed
func (r EngineerRoster) Has(id string) bool {
	for _, e := range r.Engineers {
		if e.ID == id {
			return true
		}
	}
	return false
}

// SetDefault points the default reference at id
func (r EngineerRoster) SetDefault(id string) (EngineerRoster, error) {
	for _, e := range r.Engineers {
		if e.ID == id {
			out := r.clone()
			out.DefaultEngineerID = &id
			return out, nil
		}
	}
	return r, fmt.Errorf("%w: %s", ErrEngineerNotFound, id)
}

func (r EngineerRoster) clone() EngineerRoster {
	out := EngineerRoster{Engineers: append([]Engineer(nil), r.Engineers...)}
	if r.DefaultEngineerID != nil {
		id := *r.DefaultEngineerID
		out.DefaultEngineerID = &id
	}
	return out
}

type Contact struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Extension  string `json:"extension"`
}

// FindByExtension returns the first contact whose extension equals ext
func FindByExtension(contacts []Contact, ext string) (Contact, bool) {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return Contact{}, false
	}
	for _, c := range contacts {
		if c.Extension == ext {
			return c, true
		}
	}
	return Contact{}, false
}

// Request types

type CreateTicketRequest struct {
	Name        string  `json:"name"`
	Department  string  `json:"department"`
	Phone       string  `json:"phone"`
	Requirement string  `json:"requirement"`
	Urgency     Urgency `json:"urgency"`
}

// UpdateTicketRequest carries only the fields being changed
type UpdateTicketRequest struct {
	Name             *string       `json:"name,omitempty"`
	Department       *string       `json:"department,omitempty"`
	Phone            *string       `json:"phone,omitempty"`
	Requirement      *string       `json:"requirement,omitempty"`
	Urgency          *Urgency      `json:"urgency,omitempty"`
	Status           *TicketStatus `json:"status,omitempty"`
	ProcessNote      *string       `json:"processNote,omitempty"`
	AssignedEngineer *string       `json:"assignedEngineer,omitempty"`
	Signature        *string       `json:"signature,omitempty"`
	RequestTime      *int64        `json:"requestTime,omitempty"`
}

type ImportContactsRequest struct {
	Text string `json:"text"`
}

// Response types

type ImportContactsResponse struct {
	Imported int       `json:"imported"`
	Skipped  int       `json:"skipped"`
	Contacts []Contact `json:"contacts"`
}

// TicketView is a ticket decorated for queue display
type TicketView struct {
	Ticket
	Elapsed string `json:"elapsed"`
}

type AppConfig struct {
	AppURL       string `json:"appUrl"`
	SharedAppURL string `json:"sharedAppUrl"`
	Version      string `json:"version"`
	KVEnabled    bool   `json:"kvEnabled"`
	Env          string `json:"env"`
	Timestamp    int64  `json:"timestamp"`
}

type StatusResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	KVEnabled bool      `json:"kvEnabled"`
	Clients   int       `json:"clients"`
	Time      time.Time `json:"time"`
}

// SyncMessage is one frame on the real-time channel
type SyncMessage struct {
	Event    string          `json:"event"`
	Data     json.RawMessage `json:"data,omitempty"`
	Revision uint64          `json:"revision,omitempty"`
}

// Report types

type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

type UrgencyCount struct {
	Urgency Urgency `json:"urgency"`
	Count   int     `json:"count"`
}

type DailyReport struct {
	Date      string   `json:"date"`
	Requested []Ticket `json:"requested"`
	Completed []Ticket `json:"completed"`
	Pending   []Ticket `json:"pending"`
}

type MonthlyReport struct {
	Month          string            `json:"month"` // YYYY-MM
	Total          int               `json:"total"`
	CompletedCount int               `json:"completedCount"`
	PendingCount   int               `json:"pendingCount"`
	Departments    []DepartmentCount `json:"departments"`
	DailyTrend     []DayCount        `json:"dailyTrend"`
	Tickets        []Ticket          `json:"tickets"`
}

type Summary struct {
	CompletedToday           int            `json:"completedToday"`
	TotalCompleted           int            `json:"totalCompleted"`
	PendingCount             int            `json:"pendingCount"`
	AverageResolutionMinutes int            `json:"averageResolutionMinutes"`
	Last7Days                []DayCount     `json:"last7Days"`
	Urgency                  []UrgencyCount `json:"urgency"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
