package deposit

import (
	"github.com/openaccess/exchange/models"
	"strings"
)

// Form is the metadata form of a protocol, either fresh (with
// Initial data only) or bound to what the user submitted. Rendering
// and validation happen elsewhere.
type Form struct {
	PaperId  int
	Fields   []string
	Licenses []models.License
	Initial  FormData
	Data     FormData
}

// GetForm returns an unbound form prefilled from p.FormInitialData.
func GetForm(p Protocol) *Form {
	form := newForm(p)
	form.Initial = p.FormInitialData()
	return form
}

// GetBoundForm returns a form bound to data.
func GetBoundForm(p Protocol, data FormData) *Form {
	form := newForm(p)
	form.Data = data
	if form.Data == nil {
		form.Data = FormData{}
	}
	return form
}

func newForm(p Protocol) *Form {
	form := &Form{
		Fields:   p.FormFields(),
		Licenses: make([]models.License, 0),
		Initial:  FormData{},
	}
	if p.Paper() != nil {
		form.PaperId = p.Paper().Id
	}
	if p.Repository() != nil {
		form.Licenses = p.Repository().Licenses
	}
	return form
}

func (form *Form) IsBound() bool {
	return form.Data != nil
}

// CleanedData returns the bound values of the form's fields,
// trimmed of surrounding whitespace. Values for fields the form
// doesn't have are dropped.
func (form *Form) CleanedData() FormData {
	cleaned := FormData{}
	for _, field := range form.Fields {
		if value, ok := form.Data[field]; ok {
			cleaned[field] = strings.TrimSpace(value)
		}
	}
	return cleaned
}
