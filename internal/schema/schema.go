package schema

import "sort"

// TextName is the pseudo item name used for model text runs in schema
// checks.
const TextName = "$text"

// RootName is the context name of a document root.
const RootName = "$root"

// RuleSet is a registry of allowed parent-child pairs. The zero value
// allows nothing; register items with Register or Allow.
type RuleSet struct {
	items map[string]*item
}

type item struct {
	allowIn map[string]struct{}
}

// NewRuleSet creates an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{items: make(map[string]*item)}
}

// Register declares an item and the contexts that accept it. Repeated
// calls for the same name merge the context lists.
func (r *RuleSet) Register(name string, allowIn ...string) {
	it := r.items[name]
	if it == nil {
		it = &item{allowIn: make(map[string]struct{})}
		r.items[name] = it
	}
	for _, p := range allowIn {
		it.allowIn[p] = struct{}{}
	}
}

// Allow is Register with the arguments flipped: it reads as "parent
// allows these children".
func (r *RuleSet) Allow(parent string, children ...string) {
	for _, c := range children {
		r.Register(c, parent)
	}
}

// IsRegistered reports whether the item name is known at all.
func (r *RuleSet) IsRegistered(name string) bool {
	_, ok := r.items[name]
	return ok
}

// ItemNames returns the registered item names in sorted order.
func (r *RuleSet) ItemNames() []string {
	out := make([]string, 0, len(r.items))
	for n := range r.items {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// CheckChild reports whether an item may be inserted at the end of the
// context. The context is an ordered ancestor name list, outermost
// first; an empty context stands for a detached fragment and accepts
// any registered item.
func (r *RuleSet) CheckChild(context []string, name string) bool {
	it, ok := r.items[name]
	if !ok {
		return false
	}
	if len(context) == 0 {
		return true
	}
	parent := context[len(context)-1]
	_, allowed := it.allowIn[parent]
	return allowed
}

// AllowAll accepts every child in every context. Useful for tests and
// for pipelines that validate elsewhere.
type AllowAll struct{}

// CheckChild always returns true.
func (AllowAll) CheckChild(context []string, name string) bool { return true }

// Default returns the rule set for a generic rich-text document:
// paragraphs and headings under the root, text inside them, and
// block quotes that nest paragraphs.
func Default() *RuleSet {
	r := NewRuleSet()
	r.Allow(RootName, "paragraph", "heading", "blockQuote")
	r.Allow("blockQuote", "paragraph")
	r.Register(TextName, "paragraph", "heading")
	return r
}
