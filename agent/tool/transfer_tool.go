package tool

import (
	"context"

	contractx "github.com/tanpawarit/buildershub-receptionist/agent/contract"
	"github.com/tanpawarit/buildershub-receptionist/agent/transfer"
)

func (h Handlers) transferToHuman(ctx context.Context, reason string) (any, error) {
	sess, ok := contractx.SessionFrom(ctx)
	if !ok {
		return nil, contractx.NewToolError(transfer.UnavailableMessage, contractx.ErrNoSession)
	}
	if h.Transfer == nil {
		return nil, contractx.NewToolError(transfer.UnavailableMessage, transfer.ErrNotConfigured)
	}

	result, err := h.Transfer.Transfer(ctx, sess, reason)
	if err != nil {
		return nil, err
	}
	return contractx.TransferResult{Success: true, SupervisorIdentity: result.SupervisorIdentity}, nil
}
