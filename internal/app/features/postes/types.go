// internal/app/features/postes/types.go
package postes

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/go-chi/chi/v5"
)

type posteRow struct {
	ID          int64
	Designation string
	Code        string
	Users       int
}

type listData struct {
	viewdata.BaseVM

	Q        string
	Assigned bool
	Total    int
	Shown    int
	Rows     []posteRow
}

type formData struct {
	formutil.Base

	ID          int64
	IsEdit      bool
	Designation string
	Code        string
}

type userItem struct {
	ID    int64
	Login string
	Actif bool
}

// usersData is the view model for the poste's users page and its fragment.
type usersData struct {
	viewdata.BaseVM

	PosteID     int64
	Designation string
	Code        string
	Users       []userItem
	Available   []formutil.Option
}

func posteID(r *http.Request) int64 {
	return formutil.ParseID(chi.URLParam(r, "id"))
}

func usersURL(id int64) string {
	return "/postes/" + strconv.FormatInt(id, 10) + "/users"
}
