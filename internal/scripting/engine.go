package scripting

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/richcast/internal/rules"
)

// ErrBadScript is wrapped by failures to evaluate a rule script or to
// interpret its result.
var ErrBadScript = errors.New("scripting: bad rule script")

// LoadFile evaluates the Lua script at path and returns the rule set it
// produces.
func LoadFile(path string) (*rules.File, error) {
	L := lua.NewState()
	defer L.Close()
	if err := L.DoFile(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadScript, err)
	}
	return fromState(L)
}

// LoadString evaluates Lua source and returns the rule set it produces.
func LoadString(src string) (*rules.File, error) {
	L := lua.NewState()
	defer L.Close()
	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadScript, err)
	}
	return fromState(L)
}

// fromState reads the script's return value off the stack and decodes
// it.
func fromState(L *lua.LState) (*rules.File, error) {
	ret := L.Get(-1)
	table, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: script must return a table, got %s", ErrBadScript, ret.Type())
	}
	f, err := decodeFile(table)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func decodeFile(t *lua.LTable) (*rules.File, error) {
	f := &rules.File{}

	if st, err := tableField(t, "schema"); err != nil {
		return nil, err
	} else if st != nil {
		items, err := tableField(st, "item")
		if err != nil {
			return nil, err
		}
		if err := eachTable(items, "schema.item", func(it *lua.LTable) error {
			f.Schema.Items = append(f.Schema.Items, rules.SchemaItem{
				Name:    stringField(it, "name"),
				AllowIn: stringSlice(it.RawGetString("allow_in")),
			})
			return nil
		}); err != nil {
			return nil, err
		}
	}

	elements, err := tableField(t, "element")
	if err != nil {
		return nil, err
	}
	if err := eachTable(elements, "element", func(it *lua.LTable) error {
		f.Elements = append(f.Elements, rules.ElementRule{
			View:     stringField(it, "view"),
			Model:    stringField(it, "model"),
			Priority: stringField(it, "priority"),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	attrElements, err := tableField(t, "attribute_element")
	if err != nil {
		return nil, err
	}
	if err := eachTable(attrElements, "attribute_element", func(it *lua.LTable) error {
		f.AttributeElements = append(f.AttributeElements, rules.AttributeElementRule{
			View:    stringField(it, "view"),
			Key:     stringField(it, "key"),
			Value:   goValue(it.RawGetString("value")),
			Element: stringField(it, "element"),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	attrs, err := tableField(t, "attribute")
	if err != nil {
		return nil, err
	}
	if err := eachTable(attrs, "attribute", func(it *lua.LTable) error {
		f.Attributes = append(f.Attributes, rules.AttributeRule{
			View:          stringField(it, "view"),
			Model:         stringField(it, "model"),
			ViewAttribute: stringField(it, "view_attribute"),
			ViewClass:     stringField(it, "view_class"),
			Key:           stringField(it, "key"),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	highlights, err := tableField(t, "highlight")
	if err != nil {
		return nil, err
	}
	if err := eachTable(highlights, "highlight", func(it *lua.LTable) error {
		f.Highlights = append(f.Highlights, rules.HighlightRule{
			Marker:     stringField(it, "marker"),
			Element:    stringField(it, "element"),
			Classes:    stringSlice(it.RawGetString("classes")),
			Attributes: stringMap(it.RawGetString("attributes")),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	return f, nil
}

// tableField returns the named field as a table, nil when absent.
func tableField(t *lua.LTable, name string) (*lua.LTable, error) {
	v := t.RawGetString(name)
	if v == lua.LNil {
		return nil, nil
	}
	inner, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a table, got %s", ErrBadScript, name, v.Type())
	}
	return inner, nil
}

// eachTable iterates the array part of a table of tables.
func eachTable(t *lua.LTable, name string, fn func(*lua.LTable) error) error {
	if t == nil {
		return nil
	}
	n := t.Len()
	for i := 1; i <= n; i++ {
		it, ok := t.RawGetInt(i).(*lua.LTable)
		if !ok {
			return fmt.Errorf("%w: %s[%d] must be a table", ErrBadScript, name, i)
		}
		if err := fn(it); err != nil {
			return err
		}
	}
	return nil
}

func stringField(t *lua.LTable, name string) string {
	if s, ok := t.RawGetString(name).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func stringSlice(v lua.LValue) []string {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}
	var out []string
	n := t.Len()
	for i := 1; i <= n; i++ {
		if s, ok := t.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

func stringMap(v lua.LValue) map[string]string {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}
	out := make(map[string]string)
	t.ForEach(func(k, val lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		vs, ok := val.(lua.LString)
		if !ok {
			return
		}
		out[string(ks)] = string(vs)
	})
	return out
}

// goValue converts a scalar Lua value to its Go equivalent.
func goValue(v lua.LValue) any {
	switch t := v.(type) {
	case lua.LBool:
		return bool(t)
	case lua.LNumber:
		f := float64(t)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(t)
	default:
		return nil
	}
}
