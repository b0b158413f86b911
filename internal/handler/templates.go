package handler

import (
	"html/template"
	"time"
)

var saoPaulo = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}()

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"year": func() int {
			return time.Now().Year()
		},
		// formatDate renders a timestamp the way Brazilian users read it.
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(saoPaulo).Format("02/01/2006 15:04")
		},
		// formatCEP renders 01310100 as 01310-100.
		"formatCEP": func(cep string) string {
			if len(cep) != 8 {
				return cep
			}
			return cep[:5] + "-" + cep[5:]
		},
		"millis": func(d time.Duration) int64 {
			return d.Milliseconds()
		},
	}
}
