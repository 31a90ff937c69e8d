package catalog

import (
	"sort"
	"strings"
)

// SchemaError reports every structural problem found in a catalog, such as a
// parameter that names an undeclared node.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	problems := append([]string(nil), e.Problems...)
	sort.Strings(problems)
	return "catalog schema is invalid:\n- " + strings.Join(problems, "\n- ")
}
