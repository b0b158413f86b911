package cadastro

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/dukerupert/cadastro/internal/cookie"
	"github.com/dukerupert/cadastro/internal/domain"
	"github.com/dukerupert/cadastro/internal/handler"
	"github.com/dukerupert/cadastro/internal/middleware"
	"github.com/dukerupert/cadastro/internal/registration"
	"github.com/dukerupert/cadastro/internal/telemetry"
)

const (
	questionClear   = "Deseja limpar todos os campos?"
	questionSignOut = "Deseja sair?"
)

// FormHandler handles the registration form routes
type FormHandler struct {
	forms    FormSource
	renderer *handler.Renderer
	metrics  *telemetry.BusinessMetrics
	cookies  *cookie.Config
}

// NewFormHandler creates a new registration form handler
func NewFormHandler(forms FormSource, renderer *handler.Renderer, metrics *telemetry.BusinessMetrics, cookies *cookie.Config) *FormHandler {
	if forms == nil {
		forms = SessionForm
	}
	return &FormHandler{
		forms:    forms,
		renderer: renderer,
		metrics:  metrics,
		cookies:  cookies,
	}
}

// Root handles GET / and sends the browser to the form
func (h *FormHandler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/cadastro", http.StatusSeeOther)
}

// Page handles GET /cadastro
func (h *FormHandler) Page(w http.ResponseWriter, r *http.Request) {
	form, ok := h.form(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, form.Snapshot())
}

// UpdateField handles POST /cadastro/campo/{field}
// It validates a single field as the user types and answers with the
// field's error text plus the banner and, for the CEP, the search button.
func (h *FormHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	field, ok := registration.ParseField(r.PathValue("field"))
	if !ok || !field.Editable() {
		handler.NotFoundResponse(w, r)
		return
	}

	form, ok := h.form(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cadastro.update_field", "Invalid form data"))
		return
	}

	if err := form.UpdateField(field, r.PostFormValue(string(field))); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	state := form.Snapshot()
	view := newFormView(state)
	view.OOB = true

	data := fieldUpdateView{
		Field:  newFieldView(state, field),
		Form:   view,
		Search: field == registration.FieldPostalCode,
	}
	h.renderer.RenderBlock(w, "cadastro", "field_update", data)
}

// SearchAddress handles POST /cadastro/cep
func (h *FormHandler) SearchAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)

	form, ok := h.form(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cadastro.search_address", "Invalid form data"))
		return
	}
	form.UpdateFields(postedValues(r))

	start := time.Now()
	res := form.SearchAddress(ctx)
	h.metrics.RecordLookup(res.Status.String(), time.Since(start))

	telemetry.AddBreadcrumb("cep", "lookup "+res.Status.String(), nil)
	if res.Status == registration.StatusFailed {
		logger.Warn("CEP lookup failed", "status", res.Status.String(), "error", res.Err)
		if domain.IsCode(res.Err, domain.EINTERNAL) {
			telemetry.CaptureErrorFromContext(ctx, res.Err, map[string]interface{}{"op": "cadastro.search_address"})
		}
	}

	h.renderForm(w, r, form.Snapshot())
}

// Submit handles POST /cadastro
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)

	form, ok := h.form(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cadastro.submit", "Invalid form data"))
		return
	}
	form.UpdateFields(postedValues(r))

	start := time.Now()
	res := form.Submit(ctx)
	wrote := res.Status == registration.StatusSucceeded ||
		res.Status == registration.StatusFailed ||
		res.Status == registration.StatusStale
	h.metrics.RecordRegistration(res.Status.String(), time.Since(start), wrote)

	state := form.Snapshot()

	switch res.Status {
	case registration.StatusRejected:
		h.metrics.RecordValidationFailures(errorFields(state))
	case registration.StatusFailed:
		logger.Error("failed to register user", "error", res.Err)
		if domain.IsCode(res.Err, domain.EINTERNAL) {
			telemetry.CaptureErrorFromContext(ctx, res.Err, map[string]interface{}{"op": "cadastro.submit"})
		}
	case registration.StatusSucceeded:
		logger.Info("user registered", "user_id", res.ID)
		h.renderConfirmation(w, r, state.Success, res.After)
		return
	}

	h.renderForm(w, r, state)
}

// Clear handles POST /cadastro/limpar
// Without confirmar=sim it answers with a confirmation prompt.
func (h *FormHandler) Clear(w http.ResponseWriter, r *http.Request) {
	form, ok := h.form(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cadastro.clear", "Invalid form data"))
		return
	}

	if !form.Clear(confirmed(r)) {
		h.renderPrompt(w, r, promptView{
			Question:     questionClear,
			Action:       "/cadastro/limpar",
			ConfirmLabel: "Limpar",
		})
		return
	}

	h.metrics.FormsCleared.Inc()
	h.renderForm(w, r, form.Snapshot())
}

// SignOut handles POST /sair
func (h *FormHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form, ok := h.form(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cadastro.sign_out", "Invalid form data"))
		return
	}

	if !confirmed(r) {
		h.renderPrompt(w, r, promptView{
			Question:     questionSignOut,
			Action:       "/sair",
			ConfirmLabel: "Sair",
		})
		return
	}

	res := form.SignOut(ctx)
	h.metrics.SignOuts.WithLabelValues(res.Status.String()).Inc()

	if res.Status != registration.StatusSucceeded {
		middleware.GetLogger(ctx).Warn("sign out failed", "error", res.Err)
		h.renderForm(w, r, form.Snapshot())
		return
	}

	if h.cookies != nil {
		h.cookies.Clear(w, cookie.SessionCookieName)
	}
	redirect(w, r, "/login")
}

func (h *FormHandler) form(w http.ResponseWriter, r *http.Request) (*registration.Form, bool) {
	form, ok := h.forms(r)
	if !ok {
		handler.ErrorResponse(w, r, domain.Internal(nil, "cadastro.form", "request has no registration session"))
		return nil, false
	}
	return form, true
}

func (h *FormHandler) renderForm(w http.ResponseWriter, r *http.Request, state registration.State) {
	data := BaseTemplateData(r)
	data["Form"] = newFormView(state)

	if isHTMX(r) {
		h.renderer.RenderBlock(w, "cadastro", "form", data)
		return
	}
	h.renderer.RenderHTTP(w, "cadastro", data)
}

// renderConfirmation shows the success message and moves on to the users
// list once the delay has passed.
func (h *FormHandler) renderConfirmation(w http.ResponseWriter, r *http.Request, message string, after time.Duration) {
	data := confirmationView{
		Success:   message,
		After:     after,
		CSRFToken: middleware.GetCSRFToken(r.Context()),
	}

	if isHTMX(r) {
		h.renderer.RenderBlock(w, "confirmacao", "confirmation", data)
		return
	}

	seconds := int(after.Round(time.Second) / time.Second)
	w.Header().Set("Refresh", fmt.Sprintf("%d; url=/usuarios", seconds))
	h.renderer.RenderHTTP(w, "confirmacao", data)
}

func (h *FormHandler) renderPrompt(w http.ResponseWriter, r *http.Request, view promptView) {
	view.CSRFToken = middleware.GetCSRFToken(r.Context())
	if isHTMX(r) {
		h.renderer.RenderBlock(w, "confirmar", "prompt", view)
		return
	}
	h.renderer.RenderHTTP(w, "confirmar", view)
}

func errorFields(s registration.State) []string {
	fields := make([]string, 0, len(s.Errors))
	for f := range s.Errors {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	return fields
}
