// internal/app/features/modules/form.go
package modules

import (
	"net/http"
	"time"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/authz"
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
	formutil.SetBase(&data.Base, w, r, title, "/modules")
	data.Require("designation", "Designation", data.Designation)
	data.MaxLen("designation", "Designation", data.Designation, 100)
	data.Require("code", "Code", data.Code)
	data.MaxLen("code", "Code", data.Code, 20)
	return data
}

func renderForm(w http.ResponseWriter, r *http.Request, data formData) {
	page := "module_new"
	if data.IsEdit {
		page = "module_edit"
	}
	formutil.Render(w, r, page, "module_form", data)
}

func refused(w http.ResponseWriter, r *http.Request, err error, data formData) bool {
	if !apiclient.IsConflictOrNotFound(err) || apiclient.IsNotFound(err) {
		return false
	}
	data.SetError("The ticketing service rejected this module. The code may already be in use.")
	renderForm(w, r, data)
	return true
}

// ServeNew renders the New Module form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	var data formData
	formutil.SetBase(&data.Base, w, r, "New Module", "/modules")
	renderForm(w, r, data)
}

// HandleCreate stamps the module with the creation date and the operator.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/modules")
		return
	}
	data := readForm(w, r, "New Module")
	if data.HasErrors() {
		renderForm(w, r, data)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create module")
	defer cancel()

	_, me, _, _ := authz.UserCtx(r)
	m, err := h.Screens.Client(r).CreateModule(ctx, models.Module{
		Designation:  data.Designation,
		Code:         data.Code,
		CreationDate: models.MillisOf(time.Now()),
		CreationUser: me,
	})
	if err != nil {
		if refused(w, r, err, data) {
			return
		}
		h.ErrLog.Upstream(w, r, "create module", err, "/modules")
		return
	}

	h.AuditLog.EntityCreated(ctx, r, audit.EntityModule, m.ID, m.Code)
	flash.Add(w, r, flash.Success, "Module "+m.Designation+" created.")
	formutil.Done(w, r, navigation.SafeBackURL(r, navigation.ModulesBackURL))
}

// ServeEdit renders the Edit Module form.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id := moduleID(r)
	if id == 0 {
		uierrors.RenderBadRequest(w, r, "Invalid module ID.", "/modules")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "edit module form")
	defer cancel()

	m, err := h.Screens.Client(r).GetModule(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get module", err, "/modules")
		return
	}

	data := formData{ID: m.ID, IsEdit: true, Designation: m.Designation, Code: m.Code}
	formutil.SetBase(&data.Base, w, r, "Edit Module", "/modules")
	renderForm(w, r, data)
}

// HandleEdit updates designation and code; creation fields are kept.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := moduleID(r)
	if id == 0 {
		uierrors.RenderBadRequest(w, r, "Invalid module ID.", "/modules")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/modules")
		return
	}
	data := readForm(w, r, "Edit Module")
	data.ID, data.IsEdit = id, true
	if data.HasErrors() {
		renderForm(w, r, data)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update module")
	defer cancel()

	c := h.Screens.Client(r)
	m, err := c.GetModule(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get module", err, "/modules")
		return
	}
	m.Designation, m.Code = data.Designation, data.Code
	m.TicketList = nil

	if _, err := c.UpdateModule(ctx, id, m); err != nil {
		if refused(w, r, err, data) {
			return
		}
		h.ErrLog.Upstream(w, r, "update module", err, "/modules")
		return
	}

	h.AuditLog.EntityUpdated(ctx, r, audit.EntityModule, id, m.Code)
	flash.Add(w, r, flash.Success, "Module "+m.Designation+" updated.")
	formutil.Done(w, r, navigation.SafeBackURL(r, navigation.ModulesBackURL))
}

// HandleDelete deletes a module.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := moduleID(r)
	if id == 0 {
		uierrors.HTMXBadRequest(w, r, "Invalid module ID.", "/modules")
		return
	}
	back := navigation.SafeBackURL(r, navigation.ModulesBackURL)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete module")
	defer cancel()

	c := h.Screens.Client(r)
	m, err := c.GetModule(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get module", err, back)
		return
	}
	if err := c.DeleteModule(ctx, id); err != nil {
		h.ErrLog.Upstream(w, r, "delete module", err, back)
		return
	}

	h.AuditLog.EntityDeleted(ctx, r, audit.EntityModule, id, m.Code)
	flash.Add(w, r, flash.Success, "Module "+m.Designation+" deleted.")
	formutil.Done(w, r, back)
}
