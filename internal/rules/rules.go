package rules

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/richcast/internal/conversion"
	"github.com/dshills/richcast/internal/schema"
)

// ErrInvalidRule is wrapped by validation failures in a rule file.
var ErrInvalidRule = errors.New("rules: invalid rule")

// File is a parsed rule file.
type File struct {
	// Schema declares the model items and their allowed contexts.
	Schema SchemaSection `toml:"schema"`

	// Elements map view element names to model element names.
	Elements []ElementRule `toml:"element"`

	// AttributeElements map view elements to model text attributes,
	// e.g. strong to bold=true.
	AttributeElements []AttributeElementRule `toml:"attribute_element"`

	// Attributes copy view attributes or classes to model attributes on
	// elements mapped by an element rule.
	Attributes []AttributeRule `toml:"attribute"`

	// Highlights wrap marker ranges in view elements.
	Highlights []HighlightRule `toml:"highlight"`
}

// SchemaSection is the schema declaration of a rule file.
type SchemaSection struct {
	Items []SchemaItem `toml:"item"`
}

// SchemaItem declares one model item and where it is allowed.
type SchemaItem struct {
	Name    string   `toml:"name"`
	AllowIn []string `toml:"allow_in"`
}

// ElementRule declares a view-element to model-element mapping.
type ElementRule struct {
	View     string `toml:"view"`
	Model    string `toml:"model"`
	Priority string `toml:"priority"`
}

// AttributeElementRule declares a view-element to text-attribute
// mapping. A nil Value defaults to true.
type AttributeElementRule struct {
	View  string `toml:"view"`
	Key   string `toml:"key"`
	Value any    `toml:"value"`
	// Element is the view element the downcast side wraps the text in;
	// defaults to View.
	Element string `toml:"element"`
}

// AttributeRule copies a view attribute or class onto the model element
// produced for the view element.
type AttributeRule struct {
	View          string `toml:"view"`
	Model         string `toml:"model"`
	ViewAttribute string `toml:"view_attribute"`
	ViewClass     string `toml:"view_class"`
	Key           string `toml:"key"`
}

// HighlightRule wraps a marker range in a view element.
type HighlightRule struct {
	Marker     string            `toml:"marker"`
	Element    string            `toml:"element"`
	Classes    []string          `toml:"classes"`
	Attributes map[string]string `toml:"attributes"`
}

// Load reads and validates a rule file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates rule file content.
func Parse(data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("rules: parse: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the structural constraints of the rule declarations.
// Load and Parse run it automatically; files assembled in code (e.g.
// by the scripting layer) call it themselves.
func (f *File) Validate() error {
	for _, it := range f.Schema.Items {
		if it.Name == "" {
			return fmt.Errorf("%w: schema item without name", ErrInvalidRule)
		}
	}
	for _, r := range f.Elements {
		if r.View == "" || r.Model == "" {
			return fmt.Errorf("%w: element rule needs view and model names", ErrInvalidRule)
		}
		if r.Priority != "" {
			if _, err := conversion.ParsePriority(r.Priority); err != nil {
				return fmt.Errorf("%w: element %s: %v", ErrInvalidRule, r.View, err)
			}
		}
	}
	for _, r := range f.AttributeElements {
		if r.View == "" || r.Key == "" {
			return fmt.Errorf("%w: attribute_element rule needs view and key", ErrInvalidRule)
		}
	}
	for _, r := range f.Attributes {
		if r.Key == "" {
			return fmt.Errorf("%w: attribute rule needs key", ErrInvalidRule)
		}
		if (r.ViewAttribute == "") == (r.ViewClass == "") {
			return fmt.Errorf("%w: attribute rule %q needs exactly one of view_attribute and view_class", ErrInvalidRule, r.Key)
		}
	}
	for _, r := range f.Highlights {
		if r.Marker == "" {
			return fmt.Errorf("%w: highlight rule without marker", ErrInvalidRule)
		}
	}
	return nil
}

// RuleSet builds the schema checker declared by the file.
func (f *File) RuleSet() *schema.RuleSet {
	rs := schema.NewRuleSet()
	for _, it := range f.Schema.Items {
		rs.Register(it.Name, it.AllowIn...)
	}
	return rs
}

// Dispatchers is the registration surface Apply needs. Both the data
// controller's dispatchers and bare dispatcher pairs satisfy it.
type Dispatchers interface {
	Upcast() *conversion.UpcastDispatcher
	Downcast() *conversion.DowncastDispatcher
}

// Applied tracks the registration names a file contributed, so a
// reload can revoke them before applying the replacement file.
type Applied struct {
	upcast   []string
	downcast []string
}

// Apply registers the file's converters on both dispatchers and
// returns the revocation handle.
func (f *File) Apply(d Dispatchers) (*Applied, error) {
	a := &Applied{}
	for _, r := range f.Elements {
		prio := conversion.PriorityNormal
		if r.Priority != "" {
			p, err := conversion.ParsePriority(r.Priority)
			if err != nil {
				return nil, err
			}
			prio = p
		}
		up := conversion.UpcastElementToElement(r.View, r.Model)
		up.Priority = prio
		down := conversion.DowncastElementToElement(r.Model, r.View)
		down.Priority = prio
		a.addUpcast(d, up)
		a.addDowncast(d, down)
	}
	for _, r := range f.AttributeElements {
		value := r.Value
		if value == nil {
			value = true
		}
		element := r.Element
		if element == "" {
			element = r.View
		}
		a.addUpcast(d, conversion.UpcastElementToAttribute(r.View, r.Key, value))
		a.addDowncast(d, conversion.DowncastAttributeToElement(r.Key, element))
	}
	for _, r := range f.Attributes {
		a.addUpcast(d, conversion.UpcastAttributeToAttribute(conversion.UpcastAttributeConfig{
			ViewName:      r.View,
			ViewAttribute: r.ViewAttribute,
			ViewClass:     r.ViewClass,
			ModelKey:      r.Key,
		}))
		if r.Model != "" && r.ViewAttribute != "" {
			a.addDowncast(d, conversion.DowncastAttributeToAttribute(r.Model, r.Key, r.ViewAttribute))
		}
	}
	for _, r := range f.Highlights {
		desc := conversion.HighlightDescriptor{
			Name:       r.Element,
			Classes:    r.Classes,
			Attributes: r.Attributes,
		}
		for _, reg := range conversion.MarkerToHighlight(r.Marker, desc) {
			a.addDowncast(d, reg)
		}
	}
	return a, nil
}

// Revoke removes every registration the file contributed.
func (a *Applied) Revoke(d Dispatchers) {
	for _, name := range a.upcast {
		d.Upcast().Remove(name)
	}
	for _, name := range a.downcast {
		d.Downcast().Remove(name)
	}
	a.upcast = nil
	a.downcast = nil
}

func (a *Applied) addUpcast(d Dispatchers, reg conversion.UpcastRegistration) {
	d.Upcast().Add(reg)
	a.upcast = append(a.upcast, reg.Name)
}

func (a *Applied) addDowncast(d Dispatchers, reg conversion.DowncastRegistration) {
	d.Downcast().Add(reg)
	a.downcast = append(a.downcast, reg.Name)
}
