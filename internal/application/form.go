package application

import "errors"

// ErrFormNotFound is returned by CreateForm when the model has no form builder.
var ErrFormNotFound = errors.New("form object not found")

// FormField describes one bound input.
type FormField struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Value    any      `json:"value"`
	Choices  []string `json:"choices,omitempty"`
}

// Form binds an entity to the inputs used to edit it.
type Form struct {
	Name   string      `json:"name"`
	Action string      `json:"action"`
	Method string      `json:"method"`
	Fields []FormField `json:"fields"`
}

// FormOptions are free-form builder options.
type FormOptions map[string]any

// FormBuilder builds the edit form for one entity family.
type FormBuilder[T any] interface {
	Build(e T, action string, opts FormOptions) (*Form, error)
}
