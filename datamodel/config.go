package datamodel

// SchemaConfig selects the classes that take part in the schema and tunes
// what is generated for each of them. A nil list means "not set"; an empty
// list is set and matches nothing.
type SchemaConfig struct {
	EnabledForClasses  *[]string     `json:"enabledForClasses,omitempty" yaml:"enabledForClasses,omitempty"`
	DisabledForClasses *[]string     `json:"disabledForClasses,omitempty" yaml:"disabledForClasses,omitempty"`
	ClassConfigs       []ClassConfig `json:"classConfigs,omitempty" yaml:"classConfigs,omitempty"`
}

// ClassConfig overrides generation for one class.
type ClassConfig struct {
	ClassName string          `json:"className" yaml:"className"`
	Type      *TypeConfig     `json:"type,omitempty" yaml:"type,omitempty"`
	Query     *QueryConfig    `json:"query,omitempty" yaml:"query,omitempty"`
	Mutation  *MutationConfig `json:"mutation,omitempty" yaml:"mutation,omitempty"`
}

// TypeConfig restricts the fields exposed on generated types. Nil lists
// expose every field.
type TypeConfig struct {
	InputFields  *InputFieldsConfig `json:"inputFields,omitempty" yaml:"inputFields,omitempty"`
	OutputFields []string           `json:"outputFields,omitempty" yaml:"outputFields,omitempty"`
}

type InputFieldsConfig struct {
	Create []string `json:"create,omitempty" yaml:"create,omitempty"`
	Update []string `json:"update,omitempty" yaml:"update,omitempty"`
}

type QueryConfig struct {
	Get  *bool `json:"get,omitempty" yaml:"get,omitempty"`
	Find *bool `json:"find,omitempty" yaml:"find,omitempty"`
}

type MutationConfig struct {
	Create  *bool `json:"create,omitempty" yaml:"create,omitempty"`
	Update  *bool `json:"update,omitempty" yaml:"update,omitempty"`
	Destroy *bool `json:"destroy,omitempty" yaml:"destroy,omitempty"`
}

// Strings returns a pointer to names, for the optional class lists.
func Strings(names ...string) *[]string {
	if names == nil {
		names = []string{}
	}
	return &names
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

func enabled(b *bool) bool {
	return b == nil || *b
}

// GetEnabled reports whether the get query is generated.
func (c *ClassConfig) GetEnabled() bool {
	return c == nil || c.Query == nil || enabled(c.Query.Get)
}

// FindEnabled reports whether the find query is generated.
func (c *ClassConfig) FindEnabled() bool {
	return c == nil || c.Query == nil || enabled(c.Query.Find)
}

// CreateEnabled reports whether the create mutation is generated.
func (c *ClassConfig) CreateEnabled() bool {
	return c == nil || c.Mutation == nil || enabled(c.Mutation.Create)
}

// UpdateEnabled reports whether the update mutation is generated.
func (c *ClassConfig) UpdateEnabled() bool {
	return c == nil || c.Mutation == nil || enabled(c.Mutation.Update)
}

// DestroyEnabled reports whether the delete mutation is generated.
func (c *ClassConfig) DestroyEnabled() bool {
	return c == nil || c.Mutation == nil || enabled(c.Mutation.Destroy)
}

// OutputFields returns the allowed output fields, or nil for all.
func (c *ClassConfig) OutputFields() []string {
	if c == nil || c.Type == nil {
		return nil
	}
	return c.Type.OutputFields
}

// CreateFields returns the allowed create input fields, or nil for all.
func (c *ClassConfig) CreateFields() []string {
	if c == nil || c.Type == nil || c.Type.InputFields == nil {
		return nil
	}
	return c.Type.InputFields.Create
}

// UpdateFields returns the allowed update input fields, or nil for all.
func (c *ClassConfig) UpdateFields() []string {
	if c == nil || c.Type == nil || c.Type.InputFields == nil {
		return nil
	}
	return c.Type.InputFields.Update
}
