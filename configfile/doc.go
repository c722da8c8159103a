// Package configfile loads storage and engine configuration from TOML, for
// deployments that prefer a config file over constructing Go structs
// directly. It's optional sugar: everything it builds can equally be
// constructed by hand against storage.Config and engine.Runtime.
//
// Only leaf comparisons are representable as a loop rule's condition from a
// file — build a compound engine.BoolExpr in code and assign it to
// Runtime.Rules after Load if a rule needs And/Or/Not.
package configfile
