package visit

import (
	"context"

	"github.com/clinicdesk/clinicdesk/internal/platform/bridge"
)

// BridgeRepo stores visits through the scripting endpoint.
type BridgeRepo struct {
	client *bridge.Client
}

func NewBridgeRepo(client *bridge.Client) *BridgeRepo {
	return &BridgeRepo{client: client}
}

// Save posts the visit as a saveVisit action. The endpoint's response body is
// not interpreted; any accepted write counts as stored.
func (r *BridgeRepo) Save(ctx context.Context, v *Visit) error {
	return r.client.Post(ctx, bridge.ActionSaveVisit, v)
}
