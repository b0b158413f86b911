package registration

import "maps"

// State is the form's full state: raw values, per-field errors, the banner
// and the request flags.
type State struct {
	Values map[Field]string
	Errors map[Field]string

	// Banner is the form-level error shown above all fields.
	Banner string
	// Success is the transient confirmation shown after a write.
	Success string

	// City and UF come with a resolved address and are display-only.
	City string
	UF   string

	Loading                 bool
	PostalCodeLookupLoading bool
	Submitted               bool

	// Generation increases on every reset.
	Generation uint64

	// resolvedFor is the CEP the current street and neighborhood belong to.
	resolvedFor string
}

func newState(generation uint64) State {
	values := make(map[Field]string, len(AllFields))
	for _, f := range AllFields {
		values[f] = ""
	}
	return State{
		Values:     values,
		Errors:     make(map[Field]string),
		Generation: generation,
	}
}

func (s State) clone() State {
	c := s
	c.Values = maps.Clone(s.Values)
	c.Errors = maps.Clone(s.Errors)
	return c
}

func (s *State) setError(f Field, msg string) {
	if msg == "" {
		delete(s.Errors, f)
		return
	}
	s.Errors[f] = msg
}

// Value returns the raw value of a field.
func (s State) Value(f Field) string {
	return s.Values[f]
}

// Error returns the field's error message or "".
func (s State) Error(f Field) string {
	return s.Errors[f]
}

// AddressResolved reports whether street and neighborhood are filled and
// belong to the CEP currently in the form.
func (s State) AddressResolved() bool {
	return s.Values[FieldStreet] != "" &&
		s.Values[FieldNeighborhood] != "" &&
		s.resolvedFor != "" &&
		s.resolvedFor == s.Values[FieldPostalCode]
}

// CanSearch reports whether the CEP lookup button should be enabled.
func (s State) CanSearch() bool {
	return !s.PostalCodeLookupLoading && ValidateField(FieldPostalCode, s.Values[FieldPostalCode]) == ""
}

// CanSubmit reports whether the submit button should be enabled.
func (s State) CanSubmit() bool {
	return !s.Loading
}

// Ready reports whether a submit would pass validation right now.
func (s State) Ready() bool {
	return len(ValidateAll(s.Values)) == 0 && s.AddressResolved()
}

// Empty reports whether the form holds no user input at all.
func (s State) Empty() bool {
	for _, v := range s.Values {
		if v != "" {
			return false
		}
	}
	return len(s.Errors) == 0 && s.Banner == "" && !s.Submitted
}
