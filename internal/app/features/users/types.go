// internal/app/features/users/types.go
package users

import (
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/projection"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/dalemusser/deskhub/internal/domain/models"
)

// userRow is a single row in the users list.
type userRow struct {
	ID        int64
	Login     string
	Role      string
	Actif     bool
	Team      string
	Poste     string
	CreatedOn string
	IsSelf    bool
}

// listData is the view model for the users list page.
type listData struct {
	viewdata.BaseVM

	Q        string
	Assigned bool

	Stats projection.UserStats // over all users, not just the shown rows
	Shown int
	Rows  []userRow
}

// formData is the view model for the new and edit forms.
type formData struct {
	formutil.Base

	ID     int64
	IsEdit bool
	IsSelf bool

	Login string
	Role  string
	Actif bool

	// ChangePassword gates the password field on edit.
	ChangePassword bool

	Roles  []string
	Teams  []formutil.Option
	Postes []formutil.Option
}

var roleChoices = []string{string(models.RoleUser), string(models.RoleAdmin)}
