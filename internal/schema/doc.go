// Package schema defines which model structures are valid. A rule set
// maps element names to the parent contexts that accept them; the
// conversion pipeline consults it before producing model content, so
// invalid view input degrades to dropped items instead of an invalid
// tree.
package schema
