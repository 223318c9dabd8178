// internal/domain/models/ticket.go
package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// TicketStatus is the workflow state of a ticket.
type TicketStatus string

const (
	StatusPending  TicketStatus = "En_Attende"
	StatusAccepted TicketStatus = "Accepte"
	StatusRefused  TicketStatus = "Refuse"
)

// TicketStatuses lists every status in display order.
var TicketStatuses = []TicketStatus{StatusPending, StatusAccepted, StatusRefused}

// ParseTicketStatus validates a raw status string.
func ParseTicketStatus(s string) (TicketStatus, error) {
	for _, st := range TicketStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("models: unknown ticket status %q", s)
}

// DueDateLayout is the wire format of Ticket.Echeance.
const DueDateLayout = "2006-01-02"

// Ticket is a support work item.
type Ticket struct {
	ID            int64        `json:"id,omitempty"`
	NumTicket     int64        `json:"numTicket"`
	Designation   string       `json:"designation,omitempty"`
	Status        TicketStatus `json:"status"`
	Priorite      string       `json:"priorite"`
	Echeance      string       `json:"echeance"`
	DateCreation  Millis       `json:"dateCreation,omitempty"`
	CreationUser  string       `json:"creationUser,omitempty"`
	Collaborateur string       `json:"collaborateur,omitempty"`

	IdClient *Ref `json:"idClient"`
	IdEquip  *Ref `json:"idEquip"`
	IdModule *Ref `json:"idModule"`

	// Extra keeps undeclared backend fields such as dateEffectationEquip.
	Extra Extra `json:"-"`
}

var ticketKeys = jsonKeys(reflect.TypeOf(Ticket{}))

// UnmarshalJSON decodes the declared fields and keeps the rest in Extra.
func (t *Ticket) UnmarshalJSON(data []byte) error {
	type wire Ticket
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	extra, err := splitExtra(data, ticketKeys)
	if err != nil {
		return err
	}
	w.Extra = extra
	*t = Ticket(w)
	return nil
}

// MarshalJSON encodes the declared fields followed by Extra.
func (t Ticket) MarshalJSON() ([]byte, error) {
	type wire Ticket
	data, err := json.Marshal(wire(t))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, t.Extra)
}

// DueDate parses Echeance; a trailing time part is ignored.
// ok is false when it is empty or malformed.
func (t Ticket) DueDate() (time.Time, bool) {
	if t.Echeance == "" {
		return time.Time{}, false
	}
	s := t.Echeance
	if len(s) > len(DueDateLayout) {
		s = s[:len(DueDateLayout)]
	}
	d, err := time.Parse(DueDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// IsPending reports whether the ticket is still awaiting a decision.
func (t Ticket) IsPending() bool {
	return t.Status == StatusPending
}
