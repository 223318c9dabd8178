// internal/app/features/tickets/delete.go
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

// HandleDelete deletes a ticket.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := ticketID(r)
	if id == 0 {
		uierrors.HTMXBadRequest(w, r, "Invalid ticket ID.", "/tickets")
		return
	}
	back := navigation.SafeBackURL(r, navigation.TicketsBackURL)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete ticket")
	defer cancel()

	c := h.Screens.Client(r)
	t, err := c.GetTicket(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get ticket", err, back)
		return
	}
	if err := c.DeleteTicket(ctx, id); err != nil {
		h.ErrLog.Upstream(w, r, "delete ticket", err, back)
		return
	}

	label := fmt.Sprintf("#%d", t.NumTicket)
	h.AuditLog.EntityDeleted(ctx, r, audit.EntityTicket, id, label)
	flash.Add(w, r, flash.Success, "Ticket "+label+" deleted.")
	formutil.Done(w, r, back)
}
