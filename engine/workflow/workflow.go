package workflow

import (
	"github.com/preseedhq/preseed/engine/dialog"
)

// Config is the ordered workflow model the answer store consumes: phases in
// execution order, each holding its stages in order, each stage holding its
// actors. It is a structural contract only; executing workflows is the
// orchestration engine's job.
type Config struct {
	ID     string  `json:"id"     yaml:"id"`
	Phases []Phase `json:"phases" yaml:"phases"`
}

type Phase struct {
	Name   string  `json:"name"   yaml:"name"`
	Stages []Stage `json:"stages" yaml:"stages"`
}

type Stage struct {
	Name   string  `json:"name"   yaml:"name"`
	Actors []Actor `json:"actors" yaml:"actors"`
}

// Actor is a workflow participant that may pose dialogs.
type Actor struct {
	ID      string           `json:"id"      yaml:"id"`
	Dialogs []*dialog.Dialog `json:"dialogs" yaml:"dialogs"`
}

// Dialogs collects every dialog reachable through the workflow in traversal
// order: phases in order, stages in order, actors in order. The first stage
// of every phase is excluded. That stage hosts framework plumbing actors
// whose dialogs are not operator-facing, so they never appear in generated
// answer files and are never translated.
func (w *Config) Dialogs() []*dialog.Dialog {
	var dialogs []*dialog.Dialog
	for p := range w.Phases {
		stages := w.Phases[p].Stages
		if len(stages) < 2 {
			continue
		}
		for s := 1; s < len(stages); s++ {
			for a := range stages[s].Actors {
				dialogs = append(dialogs, stages[s].Actors[a].Dialogs...)
			}
		}
	}
	return dialogs
}
