// internal/app/features/teams/types.go
package teams

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/go-chi/chi/v5"
)

// teamRow is a single row in the teams list.
type teamRow struct {
	ID        int64
	Name      string
	CreatedOn string
	CreatedBy string
	Tickets   int
	Users     int
}

// listData is the view model for the teams list page.
type listData struct {
	viewdata.BaseVM

	Q        string
	Assigned bool
	Total    int
	Shown    int
	Rows     []teamRow
}

// formData is the view model for the new and edit forms.
type formData struct {
	formutil.Base

	ID        int64
	IsEdit    bool
	NomEquipe string
}

// ticketItem is a ticket linked to the team.
type ticketItem struct {
	ID          int64
	Num         int64
	Designation string
	Status      string
	Priorite    string
	Echeance    string
}

// userItem is a user linked to the team.
type userItem struct {
	ID    int64
	Login string
}

// manageData holds the view model for the Manage Team page and its
// assignments fragment.
type manageData struct {
	viewdata.BaseVM

	TeamID    int64
	TeamName  string
	CreatedOn string
	CreatedBy string

	Tickets []ticketItem
	Users   []userItem

	AvailableTickets []formutil.Option
	AvailableUsers   []formutil.Option
}

func teamID(r *http.Request) int64 {
	return formutil.ParseID(chi.URLParam(r, "id"))
}

func manageURL(id int64) string {
	return "/teams/" + strconv.FormatInt(id, 10) + "/manage"
}
