// internal/app/features/tickets/new.go
package tickets

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/authz"
	"github.com/dalemusser/deskhub/internal/app/system/flash"
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/navigation"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/domain/models"
)

// ServeNew renders the New Ticket form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "new ticket form")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, formCollections...)
	if err != nil {
		h.ErrLog.Upstream(w, r, "new ticket form", err, "/tickets")
		return
	}
	renderForm(w, r, newForm(w, r, scr.Dir, "New Ticket", input{Status: string(models.StatusPending)}))
}

// HandleCreate creates a ticket stamped with the operator and the time.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/tickets")
		return
	}
	in := readInput(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create ticket")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, formCollections...)
	if err != nil {
		h.ErrLog.Upstream(w, r, "create ticket", err, "/tickets")
		return
	}
	data := newForm(w, r, scr.Dir, "New Ticket", in)
	num, status := in.validate(&data)
	if data.HasErrors() {
		renderForm(w, r, data)
		return
	}

	_, me, _, _ := authz.UserCtx(r)
	t := models.Ticket{DateCreation: models.MillisOf(time.Now()), CreationUser: me}
	in.apply(&t, num, status)

	created, err := scr.Client.CreateTicket(ctx, t)
	if err != nil {
		if refused(w, r, err, data) {
			return
		}
		h.ErrLog.Upstream(w, r, "create ticket", err, "/tickets")
		return
	}

	label := fmt.Sprintf("#%d", created.NumTicket)
	h.AuditLog.EntityCreated(ctx, r, audit.EntityTicket, created.ID, label)
	flash.Add(w, r, flash.Success, "Ticket "+label+" created.")
	formutil.Done(w, r, navigation.SafeBackURL(r, navigation.TicketsBackURL))
}
