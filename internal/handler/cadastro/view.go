package cadastro

import (
	"time"

	"github.com/dukerupert/cadastro/internal/registration"
)

type fieldView struct {
	Name        string
	Label       string
	Value       string
	Error       string
	Placeholder string
	Numeric     bool
	MaxLength   int
	ReadOnly    bool
	OOB         bool
}

type formView struct {
	Fields  []fieldView
	Banner  string
	Success string
	City    string
	UF      string

	CanSearch     bool
	CanSubmit     bool
	Loading       bool
	LookupLoading bool

	OOB bool
}

var fieldLayout = map[registration.Field]fieldView{
	registration.FieldName:         {Label: "Nome", Placeholder: "Nome completo"},
	registration.FieldAge:          {Label: "Idade", Placeholder: "18", Numeric: true, MaxLength: 3},
	registration.FieldRole:         {Label: "Cargo", Placeholder: "Ex.: Analista"},
	registration.FieldPostalCode:   {Label: "CEP", Placeholder: "00000000", Numeric: true, MaxLength: 8},
	registration.FieldStreet:       {Label: "Logradouro", ReadOnly: true},
	registration.FieldNeighborhood: {Label: "Bairro", ReadOnly: true},
}

func newFieldView(s registration.State, f registration.Field) fieldView {
	v := fieldLayout[f]
	v.Name = string(f)
	v.Value = s.Value(f)
	v.Error = s.Error(f)
	return v
}

func newFormView(s registration.State) formView {
	fields := make([]fieldView, 0, len(registration.AllFields))
	for _, f := range registration.AllFields {
		fields = append(fields, newFieldView(s, f))
	}
	return formView{
		Fields:        fields,
		Banner:        s.Banner,
		Success:       s.Success,
		City:          s.City,
		UF:            s.UF,
		CanSearch:     s.CanSearch(),
		CanSubmit:     s.CanSubmit(),
		Loading:       s.Loading,
		LookupLoading: s.PostalCodeLookupLoading,
	}
}

type promptView struct {
	Question     string
	Action       string
	ConfirmLabel string
	CSRFToken    string
}

type confirmationView struct {
	Success   string
	After     time.Duration
	CSRFToken string
}

type fieldUpdateView struct {
	Field  fieldView
	Form   formView
	Search bool
}
