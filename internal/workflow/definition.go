package workflow

import (
	"github.com/campuscore/approval-service/internal/errs"
	"github.com/campuscore/approval-service/internal/model"
)

// Definition binds the generic step machine to one request kind: the
// ordered roles that must approve, the terminal label the kind resolves
// to, and whether submission holds capacity on the ledger.
type Definition struct {
	Kind           model.Kind
	Steps          []model.Role
	Terminal       model.Status
	ResourceBacked bool
}

var definitions = map[model.Kind]Definition{
	model.KindBook: {
		Kind:           model.KindBook,
		Steps:          []model.Role{model.RoleLibrarian},
		Terminal:       model.StatusIssued,
		ResourceBacked: true,
	},
	model.KindItem: {
		Kind:           model.KindItem,
		Steps:          []model.Role{model.RoleStoreManager},
		Terminal:       model.StatusFulfilled,
		ResourceBacked: true,
	},
	model.KindLeave: {
		Kind:     model.KindLeave,
		Steps:    []model.Role{model.RoleTeacher, model.RoleTrainingOfficer},
		Terminal: model.StatusFinalized,
	},
}

func Lookup(kind model.Kind) (Definition, error) {
	def, ok := definitions[kind]
	if !ok {
		return Definition{}, errs.ErrUnknownKind
	}
	return def, nil
}

// Replay recomputes status and step index from the append-only history.
// The stored status is a cache of this derivation; the two never drift.
// A withdrawal leaves no history entry, so it is not replayed here.
func (d Definition) Replay(steps []model.Step) (model.Status, int) {
	idx := 0
	for _, s := range steps {
		if s.Decision == model.DecisionReject {
			return model.StatusRejected, idx
		}
		idx++
	}
	if idx >= len(d.Steps) {
		return d.Terminal, idx
	}
	return model.StatusPending, idx
}
