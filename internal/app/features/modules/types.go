// internal/app/features/modules/types.go
package modules

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/go-chi/chi/v5"
)

type moduleRow struct {
	ID          int64
	Designation string
	Code        string
	CreatedOn   string
	CreatedBy   string
	Tickets     int
}

type listData struct {
	viewdata.BaseVM

	Q        string
	Assigned bool
	Total    int
	Shown    int
	Rows     []moduleRow
}

type formData struct {
	formutil.Base

	ID          int64
	IsEdit      bool
	Designation string
	Code        string
}

type ticketItem struct {
	ID          int64
	Num         int64
	Designation string
	Status      string
	Team        string
}

type ticketsData struct {
	viewdata.BaseVM

	ModuleID    int64
	Designation string
	Code        string
	Tickets     []ticketItem
	Available   []formutil.Option
}

func moduleID(r *http.Request) int64 {
	return formutil.ParseID(chi.URLParam(r, "id"))
}

func ticketsURL(id int64) string {
	return "/modules/" + strconv.FormatInt(id, 10) + "/tickets"
}
