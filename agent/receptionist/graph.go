package receptionist

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// compileTurnGraph builds system prompt + conversation -> model reply.
func compileTurnGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	system *schema.Message,
) (compose.Runnable[[]*schema.Message, *schema.Message], error) {
	graph := compose.NewGraph[[]*schema.Message, *schema.Message]()

	if err := graph.AddLambdaNode("with_system",
		compose.InvokableLambda(func(ctx context.Context, history []*schema.Message) ([]*schema.Message, error) {
			msgs := make([]*schema.Message, 0, len(history)+1)
			msgs = append(msgs, system)
			return append(msgs, history...), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add system prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add model node: %w", err)
	}

	if err := graph.AddEdge(compose.START, "with_system"); err != nil {
		return nil, fmt.Errorf("add edge start->with_system: %w", err)
	}
	if err := graph.AddEdge("with_system", "model"); err != nil {
		return nil, fmt.Errorf("add edge with_system->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("receptionist.turn_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile receptionist turn graph: %w", err)
	}
	return runner, nil
}
