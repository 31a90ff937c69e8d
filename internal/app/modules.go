package app

import (
	"github.com/specialistvlad/metagrid/internal/primitives"
	"github.com/specialistvlad/metagrid/internal/registry"
)

// coreModules is the definitive list of handler modules compiled into the
// metagrid binary.
var coreModules = []registry.Module{
	primitives.Module{},
}
