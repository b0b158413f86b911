package cadastro

import (
	"net/http"

	"github.com/dukerupert/cadastro/internal/middleware"
	"github.com/dukerupert/cadastro/internal/registration"
)

// BaseTemplateData returns common data for all templates
func BaseTemplateData(r *http.Request) map[string]interface{} {
	return map[string]interface{}{
		"CSRFToken": middleware.GetCSRFToken(r.Context()),
	}
}

// FormSource finds the registration form a request belongs to.
type FormSource func(r *http.Request) (*registration.Form, bool)

// SessionForm returns the form of the session attached by middleware.Session.
func SessionForm(r *http.Request) (*registration.Form, bool) {
	entry := middleware.GetSession(r.Context())
	if entry == nil || entry.Form == nil {
		return nil, false
	}
	return entry.Form, true
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect navigates the whole page, through HX-Redirect for htmx requests.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func confirmed(r *http.Request) bool {
	return r.PostFormValue("confirmar") == "sim"
}

// postedValues collects the editable fields present in the request body.
func postedValues(r *http.Request) map[registration.Field]string {
	values := make(map[registration.Field]string, len(registration.EditableFields))
	for _, f := range registration.EditableFields {
		if v, ok := r.PostForm[string(f)]; ok && len(v) > 0 {
			values[f] = v[0]
		}
	}
	return values
}
