package registration

// Field identifies a registration form field. Values double as HTML form
// input names.
type Field string

const (
	FieldName         Field = "nome"
	FieldAge          Field = "idade"
	FieldRole         Field = "cargo"
	FieldPostalCode   Field = "cep"
	FieldStreet       Field = "logradouro"
	FieldNeighborhood Field = "bairro"
)

// EditableFields are the fields a user types into, in display order.
// Street and neighborhood are only ever filled by an address lookup.
var EditableFields = []Field{FieldName, FieldAge, FieldRole, FieldPostalCode}

// AllFields lists every field in display order.
var AllFields = []Field{FieldName, FieldAge, FieldRole, FieldPostalCode, FieldStreet, FieldNeighborhood}

// Editable reports whether the user may set this field directly.
func (f Field) Editable() bool {
	switch f {
	case FieldName, FieldAge, FieldRole, FieldPostalCode:
		return true
	}
	return false
}

// ParseField maps a form input name to a Field.
func ParseField(s string) (Field, bool) {
	for _, f := range AllFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

func (f Field) String() string {
	return string(f)
}
