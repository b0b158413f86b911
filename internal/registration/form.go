// Package registration implements the user registration form: field values,
// per-field validation, the CEP address lookup and the final write.
//
// A Form is safe for concurrent use. The lookup and the write run without
// holding the form lock, so other fields stay editable while either is
// pending. Every reset bumps the form generation, and a completion that
// belongs to an older generation is discarded instead of applied.
package registration

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/cadastro/internal/address"
	"github.com/dukerupert/cadastro/internal/domain"
)

// AddressLookup resolves an 8-digit CEP.
type AddressLookup interface {
	Search(ctx context.Context, postalCode string) (*address.Address, error)
}

// UserStore persists a validated registration and returns the generated id.
type UserStore interface {
	Create(ctx context.Context, user domain.User) (string, error)
}

// Session is the capability to end the current user session.
type Session interface {
	SignOut(ctx context.Context) error
}

// Screen names a navigation target.
type Screen string

const (
	ScreenNone      Screen = ""
	ScreenUsersList Screen = "UsersList"
	ScreenLogin     Screen = "Login"
)

// Status describes what an action did.
type Status int

const (
	StatusIgnored   Status = iota // action not started (request already in flight)
	StatusRejected                // blocked by validation before any network call
	StatusSucceeded               // completed and applied
	StatusFailed                  // network call failed, message applied to the form
	StatusStale                   // completed after a reset, result discarded
)

func (s Status) String() string {
	switch s {
	case StatusIgnored:
		return "ignored"
	case StatusRejected:
		return "rejected"
	case StatusSucceeded:
		return "success"
	case StatusFailed:
		return "failure"
	case StatusStale:
		return "stale"
	}
	return "unknown"
}

// Result is returned by the actions that may call out to a collaborator.
// Err holds the underlying failure for logging; the form state already
// carries the user-facing message.
type Result struct {
	Status   Status
	ID       string
	Navigate Screen
	After    time.Duration
	Err      error
}

// Option configures a Form.
type Option func(*Form)

// WithClock overrides the clock used for the record timestamp.
func WithClock(now func() time.Time) Option {
	return func(f *Form) { f.now = now }
}

// WithConfirmationDelay sets how long the success confirmation is shown
// before navigating to the users list.
func WithConfirmationDelay(d time.Duration) Option {
	return func(f *Form) { f.confirmationDelay = d }
}

// DefaultConfirmationDelay matches the pause the mobile screen showed.
const DefaultConfirmationDelay = time.Second

// Form is one registration form instance.
type Form struct {
	lookup  AddressLookup
	store   UserStore
	session Session

	now               func() time.Time
	confirmationDelay time.Duration

	mu    sync.Mutex
	state State
}

// New creates an empty form bound to its collaborators.
func New(lookup AddressLookup, store UserStore, session Session, opts ...Option) *Form {
	f := &Form{
		lookup:            lookup,
		store:             store,
		session:           session,
		now:               time.Now,
		confirmationDelay: DefaultConfirmationDelay,
		state:             newState(0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Snapshot returns a copy of the current state for rendering.
func (f *Form) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone()
}

// UpdateField sets a raw field value, recomputes that field's error and
// clears the banner.
func (f *Form) UpdateField(field Field, value string) error {
	if !field.Editable() {
		return domain.Invalid("registration.update_field", fmt.Sprintf("field %q is not editable", field))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLocked(field, value)
	return nil
}

// UpdateFields applies several editable fields at once, as posted by a full
// form submission. Non-editable and unknown keys are ignored.
func (f *Form) UpdateFields(values map[Field]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, field := range EditableFields {
		if v, ok := values[field]; ok && v != f.state.Values[field] {
			f.setLocked(field, v)
		}
	}
}

func (f *Form) setLocked(field Field, value string) {
	f.state.Values[field] = value
	f.state.setError(field, ValidateField(field, value))
	f.state.Banner = ""
	f.state.Success = ""
}

// ValidateForm validates every editable field, records all field errors and
// reports whether the form passes.
func (f *Form) ValidateForm() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked()
}

func (f *Form) validateLocked() bool {
	ok := true
	for _, field := range EditableFields {
		msg := ValidateField(field, f.state.Values[field])
		f.state.setError(field, msg)
		if msg != "" {
			ok = false
		}
	}
	return ok
}

// SearchAddress looks up the current CEP and fills street and neighborhood.
// An invalid CEP is rejected without calling the lookup.
func (f *Form) SearchAddress(ctx context.Context) Result {
	f.mu.Lock()
	if f.state.PostalCodeLookupLoading {
		f.mu.Unlock()
		return Result{Status: StatusIgnored}
	}
	cep := f.state.Values[FieldPostalCode]
	if msg := ValidateField(FieldPostalCode, cep); msg != "" {
		f.state.setError(FieldPostalCode, msg)
		f.state.Banner = msg
		f.mu.Unlock()
		return Result{Status: StatusRejected}
	}
	f.state.PostalCodeLookupLoading = true
	gen := f.state.Generation
	f.mu.Unlock()

	addr, err := f.lookup.Search(ctx, cep)
	if err == nil && !addr.Resolved() {
		err = address.ErrNotFound
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.PostalCodeLookupLoading = false

	if gen != f.state.Generation || f.state.Values[FieldPostalCode] != cep {
		return Result{Status: StatusStale, Err: err}
	}

	if err != nil {
		switch domain.ErrorCode(err) {
		case domain.ENOTFOUND, domain.EINVALID:
			f.state.setError(FieldPostalCode, MsgCEPNotFound)
			f.state.Banner = MsgCEPLookupFailed
		default:
			f.state.setError(FieldPostalCode, MsgCEPLookupFieldError)
			f.state.Banner = MsgCEPUnavailable
		}
		return Result{Status: StatusFailed, Err: err}
	}

	f.state.Values[FieldStreet] = addr.Street
	f.state.Values[FieldNeighborhood] = addr.Neighborhood
	f.state.City = addr.City
	f.state.UF = addr.State
	f.state.resolvedFor = cep
	f.state.setError(FieldPostalCode, "")
	f.state.Banner = ""
	return Result{Status: StatusSucceeded}
}

// Submit validates the form and writes the record. At most one write is in
// flight per form; a Submit while one is pending is ignored.
func (f *Form) Submit(ctx context.Context) Result {
	f.mu.Lock()
	if f.state.Loading {
		f.mu.Unlock()
		return Result{Status: StatusIgnored}
	}
	f.state.Submitted = true
	f.state.Success = ""

	if !f.validateLocked() {
		f.state.Banner = MsgFixErrors
		f.mu.Unlock()
		return Result{Status: StatusRejected}
	}
	if !f.state.AddressResolved() {
		f.state.Banner = MsgResolveAddress
		f.mu.Unlock()
		return Result{Status: StatusRejected}
	}

	f.state.Loading = true
	gen := f.state.Generation
	user := f.buildUserLocked()
	f.mu.Unlock()

	id, err := f.store.Create(ctx, user)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Loading = false

	if gen != f.state.Generation {
		return Result{Status: StatusStale, ID: id, Err: err}
	}

	if err != nil {
		f.state.Banner = WriteErrorMessage(err)
		return Result{Status: StatusFailed, Err: err}
	}

	f.resetLocked()
	f.state.Success = MsgCreated
	return Result{
		Status:   StatusSucceeded,
		ID:       id,
		Navigate: ScreenUsersList,
		After:    f.confirmationDelay,
	}
}

// Clear resets every field, error and flag once the user has confirmed.
// Requests already in flight keep their loading flag until they complete,
// and their results are discarded.
func (f *Form) Clear(confirmed bool) bool {
	if !confirmed {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
	return true
}

// SignOut ends the session and resets the form. Failures surface as a banner
// and leave the form as it was.
func (f *Form) SignOut(ctx context.Context) Result {
	err := f.session.SignOut(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state.Banner = MsgSignOutFailed
		return Result{Status: StatusFailed, Err: err}
	}
	f.resetLocked()
	return Result{Status: StatusSucceeded, Navigate: ScreenLogin}
}

func (f *Form) resetLocked() {
	loading, lookupLoading := f.state.Loading, f.state.PostalCodeLookupLoading
	f.state = newState(f.state.Generation + 1)
	f.state.Loading = loading
	f.state.PostalCodeLookupLoading = lookupLoading
}

func (f *Form) buildUserLocked() domain.User {
	v := f.state.Values
	// Validated above, so the conversion cannot fail.
	age, _ := strconv.Atoi(v[FieldAge])
	return domain.User{
		Name:         cleanText(v[FieldName]),
		Age:          age,
		Role:         cleanText(v[FieldRole]),
		PostalCode:   v[FieldPostalCode],
		Street:       strings.TrimSpace(v[FieldStreet]),
		Neighborhood: strings.TrimSpace(v[FieldNeighborhood]),
		CreatedAt:    f.now().UTC(),
	}
}
