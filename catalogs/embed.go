// Package catalogs embeds the default metafeature catalog.
package catalogs

import _ "embed"

// DefaultName is the file name the default catalog is parsed under.
const DefaultName = "metafeatures.hcl"

// Default is the HCL source of the default catalog.
//
//go:embed metafeatures.hcl
var Default []byte
