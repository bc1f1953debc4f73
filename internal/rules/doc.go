// Package rules loads declarative conversion rules from TOML files and
// applies them to a data controller. A rule file declares the schema
// items plus the element, attribute and marker-highlight mappings; the
// package turns each declaration into the matching pair of upcast and
// downcast converter registrations.
//
// Rule files can be watched for changes, so converter sets reload
// without restarting the embedding application.
package rules
