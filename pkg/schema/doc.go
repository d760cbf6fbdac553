// Package schema validates user-entered form values before they reach a project or
// the field configuration.
//
// It defines a small set of field types (required text, enum-style names, hex
// colours) and a Schema that maps field names to those types:
//
//	s := schema.Schema{
//	    "type":     schema.Required(),
//	    "revision": schema.Required(),
//	}
//
//	if err := schema.Validate(s, map[string]any{"type": "TypeA"}); err != nil {
//	    // err is an *AggregateError listing every failing field
//	}
//
// The naming convention for vocabulary entries is exposed directly:
//
//	if err := schema.ValidateEnumName("Not Valid"); err != nil {
//	    fmt.Println(err) // Invalid name: must follow Java enum convention (...)
//	}
//
// This package has zero dependencies beyond the Go standard library.
package schema
