package app

import (
	"github.com/specialistvlad/suitegrid/internal/handlers"
	"github.com/specialistvlad/suitegrid/modules/analysis"
	"github.com/specialistvlad/suitegrid/modules/mesh"
	modelstep "github.com/specialistvlad/suitegrid/modules/model"
)

// coreModules is the definitive list of all step kinds that are compiled
// into the suitegrid binary.
var coreModules = []handlers.Module{
	&modelstep.Module{},
	&analysis.Module{},
	&mesh.Module{},
}
