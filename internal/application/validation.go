package application

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/ericfisherdev/itempanel/internal/domain/model"
)

// ValidationError reports field rule violations for an item. The form stays
// open and the messages are shown next to the offending fields.
type ValidationError struct {
	errs validation.Errors
}

func (e *ValidationError) Error() string {
	return e.errs.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.errs
}

// Fields returns the violation message per field name ("code", "desc").
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.errs))
	for name, err := range e.errs {
		if err != nil {
			out[name] = err.Error()
		}
	}
	return out
}

// FieldNames returns the violated field names in sorted order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.errs))
	for name := range e.errs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type newItemInput struct {
	Code        string `json:"code"`
	Description string `json:"desc"`
}

func (in newItemInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Code,
			validation.Required,
			validation.RuneLength(model.MinFieldLength, model.CodeMaxLength),
		),
		validation.Field(&in.Description,
			validation.Required,
			validation.RuneLength(model.MinFieldLength, model.DescriptionMaxLength),
		),
	)
}

type editItemInput struct {
	Description string `json:"desc"`
}

func (in editItemInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Description,
			validation.RuneLength(0, model.DescriptionMaxLength),
		),
	)
}

// asValidationError converts ozzo field errors into a *ValidationError and
// passes any other error through unchanged.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		return &ValidationError{errs: errs}
	}
	return err
}
