// Package factory provides a small generic registry used to build pluggable
// modules, such as metrics sinks, from configuration.
//
// Implementations register a constructor under a type name at init time; the
// configuration lists modules as {type, conf} pairs and Registry.Create turns
// each entry into a live instance. Decode maps the free-form conf section onto
// a typed struct using its json tags.
package factory
