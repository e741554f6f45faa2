package operator

import (
	"context"
	"fmt"

	"github.com/clinicdesk/clinicdesk/internal/platform/state"
)

// StateRepo keeps operator accounts in the embedded state store, one JSON
// record per account under the operator key prefix.
type StateRepo struct {
	store *state.Store
}

func NewStateRepo(store *state.Store) *StateRepo {
	return &StateRepo{store: store}
}

func accountKey(username string) string {
	return state.OperatorPrefix + username
}

func (r *StateRepo) Put(_ context.Context, op *Operator) error {
	return r.store.PutJSON(accountKey(op.Username), op)
}

func (r *StateRepo) Get(_ context.Context, username string) (*Operator, error) {
	var op Operator
	ok, err := r.store.GetJSON(accountKey(username), &op)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("operator %s: %w", username, ErrNotFound)
	}
	return &op, nil
}

func (r *StateRepo) List(_ context.Context) ([]Operator, error) {
	keys, err := r.store.Keys(state.OperatorPrefix)
	if err != nil {
		return nil, err
	}

	ops := make([]Operator, 0, len(keys))
	for _, k := range keys {
		var op Operator
		ok, err := r.store.GetJSON(k, &op)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		ops = append(ops, op)
	}
	return ops, nil
}
