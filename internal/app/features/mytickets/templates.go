// internal/app/features/mytickets/templates.go
package mytickets

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "mytickets",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
