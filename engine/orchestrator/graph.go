package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	turnnode "github.com/thanakit-dev/leadpilot/engine/nodes"
)

func (o *Orchestrator) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[turnnode.TurnRequest, *contractx.AIResponse], error) {
	graph := compose.NewGraph[turnnode.TurnRequest, *contractx.AIResponse]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in turnnode.TurnRequest) (*turnnode.TurnState, error) {
			return turnnode.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_context",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.TurnState) (*turnnode.TurnState, error) {
			return turnnode.LoadContext(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_context: %w", err)
	}

	if err := graph.AddLambdaNode("analyze",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.TurnState) (*turnnode.TurnState, error) {
			return turnnode.Analyze(ctx, in, o.gateway)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node analyze: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_business_logic",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.TurnState) (*turnnode.TurnState, error) {
			return turnnode.DispatchBusinessLogic(ctx, in, o.registry)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_business_logic: %w", err)
	}

	if err := graph.AddLambdaNode("retrieve_knowledge",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.TurnState) (*turnnode.TurnState, error) {
			return turnnode.RetrieveKnowledge(ctx, in, o.retriever)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node retrieve_knowledge: %w", err)
	}

	if err := graph.AddLambdaNode("generate_reply",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.TurnState) (*turnnode.TurnState, error) {
			return turnnode.GenerateReply(ctx, in, o.gateway)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node generate_reply: %w", err)
	}

	if err := graph.AddLambdaNode("advance_stage",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.TurnState) (*turnnode.TurnState, error) {
			return turnnode.AdvanceStage(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node advance_stage: %w", err)
	}

	if err := graph.AddLambdaNode("score_lead",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.TurnState) (*turnnode.TurnState, error) {
			return turnnode.ScoreLead(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node score_lead: %w", err)
	}

	if err := graph.AddLambdaNode("persist_context",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.TurnState) (*turnnode.TurnState, error) {
			return turnnode.PersistContext(ctx, in, o.store, o.sink)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node persist_context: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_response",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.TurnState) (*contractx.AIResponse, error) {
			return turnnode.FinalizeResponse(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_response: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_context"},
		{"load_context", "analyze"},
		{"analyze", "dispatch_business_logic"},
		{"dispatch_business_logic", "retrieve_knowledge"},
		{"retrieve_knowledge", "generate_reply"},
		{"generate_reply", "advance_stage"},
		{"advance_stage", "score_lead"},
		{"score_lead", "persist_context"},
		{"persist_context", "finalize_response"},
		{"finalize_response", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.process_message"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
