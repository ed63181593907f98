package execution

import (
	"strings"

	"github.com/kbukum/flowview/graph"
)

// FormData holds the values entered in an open task form.
type FormData map[string]string

// Field is one input of a task form.
type Field struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Value  string `json:"value"`
	Custom bool   `json:"custom"`
}

// Form is the rendered state of the open task form.
type Form struct {
	NodeID     string  `json:"nodeId"`
	Title      string  `json:"title"`
	Fields     []Field `json:"fields"`
	Submitting bool    `json:"submitting"`
	LastError  string  `json:"lastError,omitempty"`
}

// FieldLabel turns a field name into its input label by replacing the
// first underscore with a space.
func FieldLabel(name string) string {
	return strings.Replace(name, "_", " ", 1)
}

type formState struct {
	node       graph.Node
	data       FormData
	submitting bool
	lastError  string
}

// newForm seeds the form with the node's custom field defaults.
func newForm(node graph.Node) *formState {
	data := make(FormData, len(node.Data.CustomFields))
	for _, f := range node.Data.CustomFields {
		data[f.Name] = f.Default
	}
	return &formState{node: node, data: data}
}

// has reports whether name is an input of the form.
func (f *formState) has(name string) bool {
	for _, s := range f.node.Data.SelectedFields {
		if s == name {
			return true
		}
	}
	_, ok := f.node.Data.CustomFields.Default(name)
	return ok
}

// fields lists selected fields first, then custom fields. An empty custom
// field shows its default.
func (f *formState) fields() []Field {
	sel := f.node.Data.SelectedFields
	custom := f.node.Data.CustomFields
	out := make([]Field, 0, len(sel)+len(custom))
	for _, name := range sel {
		out = append(out, Field{Name: name, Label: FieldLabel(name), Value: f.data[name]})
	}
	for _, cf := range custom {
		v := f.data[cf.Name]
		if v == "" {
			v = cf.Default
		}
		out = append(out, Field{Name: cf.Name, Label: cf.Name, Value: v, Custom: true})
	}
	return out
}

// payload is the body posted on submit: every entered value as typed,
// cleared ones included, plus every custom field with empty values
// falling back to the default.
func (f *formState) payload() FormData {
	out := make(FormData, len(f.data))
	for k, v := range f.data {
		out[k] = v
	}
	for _, cf := range f.node.Data.CustomFields {
		if out[cf.Name] == "" {
			out[cf.Name] = cf.Default
		}
	}
	return out
}

func (f *formState) view() *Form {
	return &Form{
		NodeID:     f.node.ID,
		Title:      f.node.Data.Label,
		Fields:     f.fields(),
		Submitting: f.submitting,
		LastError:  f.lastError,
	}
}
