package web

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/vytor/betterank/internal/models"
	"github.com/vytor/betterank/internal/review"
)

//go:embed templates
var templatesFS embed.FS

func LoadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		// clock formats whole seconds as mm:ss.
		"clock": func(seconds int) string {
			return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
		},
		"speedColor": func(s review.Speed) string { return s.Color() },
		// tickColor colors a running timer by the speed it would get if
		// revealed now.
		"tickColor": func(seconds int) string { return review.ClassifySpeed(seconds).Color() },
		"feedbacks": func() []models.Feedback { return models.Feedbacks },
	}

	return template.New("base").Funcs(funcs).ParseFS(templatesFS,
		"templates/partials/*.html",
		"templates/pages/*.html",
	)
}
