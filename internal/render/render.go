package render

import (
	"embed"
	"html/template"
	"io"
	"io/fs"

	"sky24/web/internal/forms"
	"sky24/web/internal/view"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

var panelNames = map[string]view.Panel{
	"home":    view.PanelHome,
	"details": view.PanelDetails,
	"broker":  view.PanelBrokerProfile,
	"admin":   view.PanelAdmin,
}

var funcs = template.FuncMap{
	"price":         FormatPrice,
	"propertyTypes": func() []string { return PropertyTypes },
	"visible": func(v view.View, name string) bool {
		p, ok := panelNames[name]
		return ok && v.Visible(p)
	},
	"modal": func(v view.View, name string) bool {
		return v.Modal != view.ModalNone && v.Modal.String() == name
	},
	"label": func(action string) string {
		return forms.Label(forms.Action(action), forms.PhaseIdle)
	},
	"busy": func(action string) string {
		return forms.Label(forms.Action(action), forms.PhaseSubmitting)
	},
}

// Templates parses the embedded page templates. The entry point is "page".
func Templates() (*template.Template, error) {
	return template.New("sky24").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
}

// Assets is the static stylesheet and script tree served under /assets.
func Assets() fs.FS {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

func Execute(w io.Writer, tmpl *template.Template, page Page) error {
	return tmpl.ExecuteTemplate(w, "page", page)
}
