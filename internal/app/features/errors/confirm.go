// internal/app/features/errors/confirm.go
package errors

import (
	"net/http"
	"sort"

	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// csrfFieldName is the form field gorilla/csrf reads; the templates add it.
const csrfFieldName = "gorilla.csrf.Token"

type hiddenField struct {
	Name  string
	Value string
}

type confirmData struct {
	viewdata.BaseVM
	Prompt string
	Action string
	Fields []hiddenField
}

// RenderConfirm asks the operator to confirm a destructive post. The prompt
// re-posts the same form to the same path with confirm=1 added. HTMX
// requests get the prompt in the flash slot, others get a full page.
func RenderConfirm(w http.ResponseWriter, r *http.Request, prompt, backURL string) {
	data := confirmData{
		BaseVM: viewdata.NewBaseVM(w, r, "Confirm", backURL),
		Prompt: prompt,
		Action: r.URL.Path,
		Fields: confirmFields(r),
	}
	if backURL != "" {
		data.BackURL = backURL
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if isHTMX(r) {
		w.Header().Set("HX-Retarget", "#flash")
		w.Header().Set("HX-Reswap", "innerHTML")
		w.WriteHeader(http.StatusOK)
		templates.RenderSnippet(w, "confirm_box", data)
		return
	}
	w.WriteHeader(http.StatusOK)
	templates.Render(w, r, "confirm_page", data)
}

// confirmFields carries the posted form over, minus the token and the flag.
func confirmFields(r *http.Request) []hiddenField {
	_ = r.ParseForm()
	names := make([]string, 0, len(r.PostForm))
	for k := range r.PostForm {
		if k == csrfFieldName || k == "confirm" {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)
	var out []hiddenField
	for _, k := range names {
		for _, v := range r.PostForm[k] {
			out = append(out, hiddenField{Name: k, Value: v})
		}
	}
	return out
}
