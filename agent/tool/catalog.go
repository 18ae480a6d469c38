package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/buildershub-receptionist/agent/contract"
	"github.com/tanpawarit/buildershub-receptionist/agent/inventory"
	storex "github.com/tanpawarit/buildershub-receptionist/agent/store"
	"github.com/tanpawarit/buildershub-receptionist/agent/transfer"
)

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

// Transferer hands a live call over to a human.
type Transferer interface {
	Transfer(ctx context.Context, sess contractx.Session, reason string) (transfer.HandoffResult, error)
}

// Handlers holds the collaborators the receptionist tools act on.
type Handlers struct {
	Directory *storex.Directory
	Inventory inventory.Source
	Transfer  Transferer
}

func Build(h Handlers) ([]*schema.ToolInfo, Executor) {
	return Infos(), NewExecutor(h)
}

// NewExecutor dispatches a model tool call to its handler. Recoverable data
// problems come back as a Failure result; a non-nil error is always a
// *contract.ToolError meant for the caller.
func NewExecutor(h Handlers) Executor {
	if h.Directory == nil {
		h.Directory = storex.Default()
	}
	if h.Inventory == nil {
		h.Inventory = inventory.MockSource{}
	}
	fallback := DefaultExecutor()

	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		if _, known := argSchemas[tool]; !known {
			return fallback(ctx, tool, args)
		}
		if err := validateArgs(tool, args); err != nil {
			observe(tool, outcomeRejected)
			return contractx.ToolResult{Tool: tool, Error: err.Error()}, nil
		}

		done := timer(tool)
		defer done()

		var (
			result any
			err    error
		)
		switch tool {
		case contractx.ToolInventoryCheck:
			result = h.inventoryCheck(ctx, stringArg(args, "item_name"), stringArg(args, "store_location"))
		case contractx.ToolGetStoreHours:
			result = h.storeHours(ctx, stringArg(args, "store_location"))
		case contractx.ToolGetStoreDepartments:
			result = h.storeDepartments(ctx, stringArg(args, "store_location"))
		case contractx.ToolTransferToHuman:
			result, err = h.transferToHuman(ctx, stringArg(args, "reason"))
		default:
			return fallback(ctx, tool, args)
		}

		if err != nil {
			observe(tool, outcomeError)
			return contractx.ToolResult{Tool: tool}, err
		}
		if _, failed := result.(contractx.Failure); failed {
			observe(tool, outcomeFailure)
		} else {
			observe(tool, outcomeSuccess)
		}
		return contractx.ToolResult{Tool: tool, Result: result}, nil
	}
}

// DefaultExecutor rejects every call. Names come from model output or the URL,
// so they are logged but counted under a single label.
func DefaultExecutor() Executor {
	return func(ctx context.Context, tool string, _ map[string]any) (contractx.ToolResult, error) {
		zerolog.Ctx(ctx).Warn().Str("tool", tool).Msg("unknown tool requested")
		observe(unknownToolLabel, outcomeRejected)
		return contractx.ToolResult{
			Tool:  tool,
			Error: fmt.Sprintf("%s: %s", contractx.ErrUnknownTool, tool),
		}, nil
	}
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: contractx.ToolInventoryCheck,
			Desc: "Check if an item is in stock at a specific store location. Ask the customer which location they mean before calling.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"item_name":      {Type: schema.String, Desc: "The name of the item to check", Required: true},
				"store_location": {Type: schema.String, Desc: "The store location (Oakville, Burnaby, or Halifax)", Required: true},
			}),
		},
		{
			Name: contractx.ToolGetStoreHours,
			Desc: "Get the operating hours for a specific store location.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"store_location": {Type: schema.String, Desc: "The store location (Oakville, Burnaby, or Halifax)", Required: true},
			}),
		},
		{
			Name: contractx.ToolGetStoreDepartments,
			Desc: "Get the list of departments available at a specific store location.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"store_location": {Type: schema.String, Desc: "The store location (Oakville, Burnaby, or Halifax)", Required: true},
			}),
		},
		{
			Name: contractx.ToolTransferToHuman,
			Desc: "Transfer the caller to a human agent. Use this when the customer explicitly requests to speak with a human, or when you are unable to resolve their issue.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"reason": {Type: schema.String, Desc: "Brief explanation of why the transfer is needed"},
			}),
		},
	}
}
