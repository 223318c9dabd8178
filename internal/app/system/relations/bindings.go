package relations

import (
	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/domain/models"
)

// Each binding reloads the parent collection, whose assigned lists the
// backend materializes, and the child collection, whose references the
// candidate lists are computed from.

func ticketID(t models.Ticket) int64 { return t.ID }
func userID(u models.User) int64     { return u.ID }

// TeamTickets links tickets to teams through ticket.idEquip. Only pending
// tickets are offered.
// Invalidates: teams, tickets.
func TeamTickets(c *apiclient.Client) *Editor[models.Ticket] {
	return &Editor[models.Ticket]{
		Name:           "team-tickets",
		ChildLabel:     "ticket",
		ParentLabel:    "team",
		ChildID:        ticketID,
		ParentRef:      func(t models.Ticket) *models.Ref { return t.IdEquip },
		SetParentRef:   func(t *models.Ticket, r *models.Ref) { t.IdEquip = r },
		Eligible:       models.Ticket.IsPending,
		Fetch:          c.GetTicket,
		Update:         c.UpdateTicket,
		Invalidates:    []string{directory.Teams, directory.Tickets},
		RequireConfirm: true,
	}
}

// TeamUsers links users to teams through user.idEquip.
// Invalidates: teams, users.
func TeamUsers(c *apiclient.Client) *Editor[models.User] {
	return &Editor[models.User]{
		Name:           "team-users",
		ChildLabel:     "user",
		ParentLabel:    "team",
		ChildID:        userID,
		ParentRef:      func(u models.User) *models.Ref { return u.IdEquip },
		SetParentRef:   func(u *models.User, r *models.Ref) { u.IdEquip = r },
		Fetch:          c.GetUser,
		Update:         c.UpdateUser,
		Invalidates:    []string{directory.Teams, directory.Users},
		RequireConfirm: true,
	}
}

// PosteUsers links users to postes through user.idPoste.
// Invalidates: postes, users.
func PosteUsers(c *apiclient.Client) *Editor[models.User] {
	return &Editor[models.User]{
		Name:           "poste-users",
		ChildLabel:     "user",
		ParentLabel:    "poste",
		ChildID:        userID,
		ParentRef:      func(u models.User) *models.Ref { return u.IdPoste },
		SetParentRef:   func(u *models.User, r *models.Ref) { u.IdPoste = r },
		Fetch:          c.GetUser,
		Update:         c.UpdateUser,
		Invalidates:    []string{directory.Postes, directory.Users},
		RequireConfirm: true,
	}
}

// ModuleTickets links tickets to modules through ticket.idModule. Only
// pending tickets are offered.
// Invalidates: modules, tickets.
func ModuleTickets(c *apiclient.Client) *Editor[models.Ticket] {
	return &Editor[models.Ticket]{
		Name:           "module-tickets",
		ChildLabel:     "ticket",
		ParentLabel:    "module",
		ChildID:        ticketID,
		ParentRef:      func(t models.Ticket) *models.Ref { return t.IdModule },
		SetParentRef:   func(t *models.Ticket, r *models.Ref) { t.IdModule = r },
		Eligible:       models.Ticket.IsPending,
		Fetch:          c.GetTicket,
		Update:         c.UpdateTicket,
		Invalidates:    []string{directory.Modules, directory.Tickets},
		RequireConfirm: true,
	}
}
