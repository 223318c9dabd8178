// internal/app/features/tickets/form.go
package tickets

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/projection"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// formCollections feed the selects of the ticket form.
var formCollections = []string{directory.Clients, directory.Teams, directory.Modules, directory.Users, directory.Tickets}

// defaultPriorities are always offered; values found on existing tickets
// are appended.
var defaultPriorities = []string{"Haute", "Moyenne", "Basse"}

type input struct {
	Num           string
	Designation   string
	Status        string
	Priorite      string
	Echeance      string
	Collaborateur string
	Client        int64
	Team          int64
	Module        int64
}

type formData struct {
	formutil.Base
	input

	ID     int64
	IsEdit bool

	Statuses      []string
	Priorities    []string
	Collaborators []string
	Clients       []formutil.Option
	Teams         []formutil.Option
	Modules       []formutil.Option
}

func readInput(r *http.Request) input {
	return input{
		Num:           strings.TrimSpace(r.FormValue("numTicket")),
		Designation:   formutil.Text(r, "designation"),
		Status:        strings.TrimSpace(r.FormValue("status")),
		Priorite:      formutil.Text(r, "priorite"),
		Echeance:      strings.TrimSpace(r.FormValue("echeance")),
		Collaborateur: formutil.Text(r, "collaborateur"),
		Client:        formutil.ID(r, "client"),
		Team:          formutil.ID(r, "team"),
		Module:        formutil.ID(r, "module"),
	}
}

func fromTicket(t models.Ticket) input {
	in := input{
		Designation:   t.Designation,
		Status:        string(t.Status),
		Priorite:      t.Priorite,
		Collaborateur: t.Collaborateur,
		Client:        models.RefID(t.IdClient),
		Team:          models.RefID(t.IdEquip),
		Module:        models.RefID(t.IdModule),
	}
	if t.NumTicket > 0 {
		in.Num = fmt.Sprint(t.NumTicket)
	}
	if d, ok := t.DueDate(); ok {
		in.Echeance = d.Format(models.DueDateLayout)
	}
	return in
}

func newForm(w http.ResponseWriter, r *http.Request, d *directory.Directory, title string, in input) formData {
	data := formData{input: in}
	formutil.SetBase(&data.Base, w, r, title, "/tickets")

	for _, s := range models.TicketStatuses {
		data.Statuses = append(data.Statuses, string(s))
	}
	data.Priorities = slices.Clone(defaultPriorities)
	for _, p := range projection.Options(directory.TicketsOf(d), projection.TicketPriority)[1:] {
		if !slices.Contains(data.Priorities, p) {
			data.Priorities = append(data.Priorities, p)
		}
	}
	for _, u := range directory.UsersOf(d) {
		if u.Actif {
			data.Collaborators = append(data.Collaborators, u.Login)
		}
	}
	data.Clients = formutil.Options(directory.ClientsOf(d),
		func(c models.Client) int64 { return c.ID }, models.Client.FullName, in.Client, false)
	data.Teams = formutil.Options(directory.TeamsOf(d),
		func(t models.Team) int64 { return t.ID }, func(t models.Team) string { return t.NomEquipe }, in.Team, true)
	data.Modules = formutil.Options(directory.ModulesOf(d),
		func(m models.Module) int64 { return m.ID }, func(m models.Module) string { return m.Designation }, in.Module, true)
	return data
}

// validate checks the input and returns the parsed ticket number and status.
func (in input) validate(data *formData) (int64, models.TicketStatus) {
	num := formutil.ParseID(in.Num)
	if in.Num == "" {
		data.FieldError("numTicket", "Ticket number is required.")
	} else if num == 0 {
		data.FieldError("numTicket", "Ticket number must be a positive whole number.")
	}
	data.MaxLen("designation", "Designation", in.Designation, 200)
	status, err := models.ParseTicketStatus(in.Status)
	if err != nil {
		data.FieldError("status", "Choose a status.")
	}
	data.Require("priorite", "Priority", in.Priorite)
	if in.Echeance != "" {
		if _, err := time.Parse(models.DueDateLayout, in.Echeance); err != nil {
			data.FieldError("echeance", "Due date must be YYYY-MM-DD.")
		}
	}
	if in.Client == 0 {
		data.FieldError("client", "Client is required.")
	}
	if data.HasErrors() && data.Error == "" {
		data.SetError("Please fix the highlighted fields.")
	}
	return num, status
}

// apply copies the input onto t. Team and module "None" send null.
func (in input) apply(t *models.Ticket, num int64, status models.TicketStatus) {
	t.NumTicket = num
	t.Designation = in.Designation
	t.Status = status
	t.Priorite = in.Priorite
	t.Echeance = in.Echeance
	t.Collaborateur = in.Collaborateur
	t.IdClient = formutil.Ref(in.Client)
	t.IdEquip = formutil.Ref(in.Team)
	t.IdModule = formutil.Ref(in.Module)
}

func renderForm(w http.ResponseWriter, r *http.Request, data formData) {
	page := "ticket_new"
	if data.IsEdit {
		page = "ticket_edit"
	}
	formutil.Render(w, r, page, "ticket_form", data)
}

func refused(w http.ResponseWriter, r *http.Request, err error, data formData) bool {
	if !apiclient.IsConflictOrNotFound(err) || apiclient.IsNotFound(err) {
		return false
	}
	data.SetError("The ticketing service rejected this ticket. The client, team or module may no longer exist.")
	renderForm(w, r, data)
	return true
}

func ticketID(r *http.Request) int64 {
	return formutil.ParseID(chi.URLParam(r, "id"))
}
