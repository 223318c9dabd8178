// internal/app/features/postes/form.go
package postes

import (
	"net/http"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/flash"
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/navigation"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/domain/models"
)

func readForm(w http.ResponseWriter, r *http.Request, title string) formData {
	data := formData{
		Designation: formutil.Text(r, "designation"),
		Code:        formutil.Text(r, "code"),
	}
	formutil.SetBase(&data.Base, w, r, title, "/postes")
	data.Require("designation", "Designation", data.Designation)
	data.MaxLen("designation", "Designation", data.Designation, 100)
	data.Require("code", "Code", data.Code)
	data.MaxLen("code", "Code", data.Code, 20)
	return data
}

func renderForm(w http.ResponseWriter, r *http.Request, data formData) {
	page := "poste_new"
	if data.IsEdit {
		page = "poste_edit"
	}
	formutil.Render(w, r, page, "poste_form", data)
}

func refused(w http.ResponseWriter, r *http.Request, err error, data formData) bool {
	if !apiclient.IsConflictOrNotFound(err) || apiclient.IsNotFound(err) {
		return false
	}
	data.SetError("The ticketing service rejected this poste. The code may already be in use.")
	renderForm(w, r, data)
	return true
}

// ServeNew renders the New Poste form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	var data formData
	formutil.SetBase(&data.Base, w, r, "New Poste", "/postes")
	renderForm(w, r, data)
}

// HandleCreate processes the New Poste form.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/postes")
		return
	}
	data := readForm(w, r, "New Poste")
	if data.HasErrors() {
		renderForm(w, r, data)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create poste")
	defer cancel()

	p, err := h.Screens.Client(r).CreatePoste(ctx, models.Poste{Designation: data.Designation, Code: data.Code})
	if err != nil {
		if refused(w, r, err, data) {
			return
		}
		h.ErrLog.Upstream(w, r, "create poste", err, "/postes")
		return
	}

	h.AuditLog.EntityCreated(ctx, r, audit.EntityPoste, p.ID, p.Code)
	flash.Add(w, r, flash.Success, "Poste "+p.Designation+" created.")
	formutil.Done(w, r, navigation.SafeBackURL(r, navigation.PostesBackURL))
}

// ServeEdit renders the Edit Poste form.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id := posteID(r)
	if id == 0 {
		uierrors.RenderBadRequest(w, r, "Invalid poste ID.", "/postes")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "edit poste form")
	defer cancel()

	p, err := h.Screens.Client(r).GetPoste(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get poste", err, "/postes")
		return
	}

	data := formData{ID: p.ID, IsEdit: true, Designation: p.Designation, Code: p.Code}
	formutil.SetBase(&data.Base, w, r, "Edit Poste", "/postes")
	renderForm(w, r, data)
}

// HandleEdit updates designation and code.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := posteID(r)
	if id == 0 {
		uierrors.RenderBadRequest(w, r, "Invalid poste ID.", "/postes")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/postes")
		return
	}
	data := readForm(w, r, "Edit Poste")
	data.ID, data.IsEdit = id, true
	if data.HasErrors() {
		renderForm(w, r, data)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update poste")
	defer cancel()

	c := h.Screens.Client(r)
	p, err := c.GetPoste(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get poste", err, "/postes")
		return
	}
	p.Designation, p.Code = data.Designation, data.Code
	p.UtilisateurList = nil

	if _, err := c.UpdatePoste(ctx, id, p); err != nil {
		if refused(w, r, err, data) {
			return
		}
		h.ErrLog.Upstream(w, r, "update poste", err, "/postes")
		return
	}

	h.AuditLog.EntityUpdated(ctx, r, audit.EntityPoste, id, p.Code)
	flash.Add(w, r, flash.Success, "Poste "+p.Designation+" updated.")
	formutil.Done(w, r, navigation.SafeBackURL(r, navigation.PostesBackURL))
}

// HandleDelete deletes a poste.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := posteID(r)
	if id == 0 {
		uierrors.HTMXBadRequest(w, r, "Invalid poste ID.", "/postes")
		return
	}
	back := navigation.SafeBackURL(r, navigation.PostesBackURL)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete poste")
	defer cancel()

	c := h.Screens.Client(r)
	p, err := c.GetPoste(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get poste", err, back)
		return
	}
	if err := c.DeletePoste(ctx, id); err != nil {
		h.ErrLog.Upstream(w, r, "delete poste", err, back)
		return
	}

	h.AuditLog.EntityDeleted(ctx, r, audit.EntityPoste, id, p.Code)
	flash.Add(w, r, flash.Success, "Poste "+p.Designation+" deleted.")
	formutil.Done(w, r, back)
}
