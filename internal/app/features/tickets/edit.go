// internal/app/features/tickets/edit.go
package tickets

import (
	"fmt"
	"net/http"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/flash"
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/navigation"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
)

// ServeEdit renders the Edit Ticket form.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id := ticketID(r)
	if id == 0 {
		uierrors.RenderBadRequest(w, r, "Invalid ticket ID.", "/tickets")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "edit ticket form")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, formCollections...)
	if err != nil {
		h.ErrLog.Upstream(w, r, "edit ticket form", err, "/tickets")
		return
	}
	t, err := scr.Client.GetTicket(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get ticket", err, "/tickets")
		return
	}

	data := newForm(w, r, scr.Dir, fmt.Sprintf("Edit Ticket #%d", t.NumTicket), fromTicket(t))
	data.ID, data.IsEdit = t.ID, true
	renderForm(w, r, data)
}

// HandleEdit replaces the editable fields of a ticket. The creation stamp
// is kept from the stored record.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := ticketID(r)
	if id == 0 {
		uierrors.RenderBadRequest(w, r, "Invalid ticket ID.", "/tickets")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/tickets")
		return
	}
	in := readInput(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update ticket")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, formCollections...)
	if err != nil {
		h.ErrLog.Upstream(w, r, "update ticket", err, "/tickets")
		return
	}
	data := newForm(w, r, scr.Dir, "Edit Ticket", in)
	data.ID, data.IsEdit = id, true
	num, status := in.validate(&data)
	if data.HasErrors() {
		renderForm(w, r, data)
		return
	}

	t, err := scr.Client.GetTicket(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get ticket", err, "/tickets")
		return
	}
	in.apply(&t, num, status)

	if _, err := scr.Client.UpdateTicket(ctx, id, t); err != nil {
		if refused(w, r, err, data) {
			return
		}
		h.ErrLog.Upstream(w, r, "update ticket", err, "/tickets")
		return
	}

	label := fmt.Sprintf("#%d", num)
	h.AuditLog.EntityUpdated(ctx, r, audit.EntityTicket, id, label)
	flash.Add(w, r, flash.Success, "Ticket "+label+" updated.")
	formutil.Done(w, r, navigation.SafeBackURL(r, navigation.TicketsBackURL))
}
