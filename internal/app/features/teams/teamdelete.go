// internal/app/features/teams/teamdelete.go
package teams

import (
	"net/http"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/flash"
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/navigation"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
)

// HandleDelete deletes a team. The backend decides what happens to its
// tickets and users; a refusal is shown as a conflict.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := teamID(r)
	if id == 0 {
		uierrors.HTMXBadRequest(w, r, "Invalid team ID.", "/teams")
		return
	}
	back := navigation.SafeBackURL(r, navigation.TeamsBackURL)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete team")
	defer cancel()

	c := h.Screens.Client(r)
	t, err := c.GetTeam(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get team", err, back)
		return
	}
	if err := c.DeleteTeam(ctx, id); err != nil {
		h.ErrLog.Upstream(w, r, "delete team", err, back)
		return
	}

	h.AuditLog.EntityDeleted(ctx, r, audit.EntityTeam, id, t.NomEquipe)
	flash.Add(w, r, flash.Success, "Team "+t.NomEquipe+" deleted.")
	formutil.Done(w, r, back)
}
