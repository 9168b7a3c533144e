package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

// GraphConfig holds all configuration needed to build the turn graph.
type GraphConfig struct {
	Stages *stages
}

// GraphBuilder handles the construction of the turn graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[*model.Turn, *model.TurnResult]
}

// BuildGraph constructs and returns the compiled turn graph:
// gate -> proposal -> strategic -> completion -> finalize, where every stage
// before completion may short-circuit to finalize.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[*model.Turn, *model.TurnResult], error) {
	if config == nil || config.Stages == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	s := config.Stages
	if s.matcher == nil || s.composer == nil || s.machine == nil || s.history == nil {
		return nil, fmt.Errorf("turn stages are not properly initialized")
	}
	if s.chat == nil || s.chat.Model == nil || s.retrier == nil {
		return nil, fmt.Errorf("chat model is not properly initialized")
	}

	builder := &GraphBuilder{
		config: config,
		graph:  compose.NewGraph[*model.Turn, *model.TurnResult](),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	s := b.config.Stages
	nodes := []struct {
		key    string
		lambda *compose.Lambda
	}{
		{NodeGate, s.NewGateNode()},
		{NodeProposal, s.NewProposalNode()},
		{NodeStrategic, s.NewStrategicNode()},
		{NodeCompletion, s.NewCompletionNode()},
		{NodeFinalize, s.NewFinalizeNode()},
	}
	for _, n := range nodes {
		if err := b.graph.AddLambdaNode(n.key, n.lambda, compose.WithNodeName(n.key)); err != nil {
			logx.Error().Err(err).Str("node", n.key).Msg("Error adding node")
			return fmt.Errorf("error adding node %s: %w", n.key, err)
		}
	}
	return nil
}

// addEdges creates the unconditional connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, NodeGate},
		{NodeCompletion, NodeFinalize},
		{NodeFinalize, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			logx.Error().Err(err).Str("from", edge[0]).Str("to", edge[1]).Msg("Error adding edge")
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches lets each stage either answer the turn or pass it on
func (b *GraphBuilder) addBranches() error {
	branches := [][2]string{
		{NodeGate, NodeProposal},
		{NodeProposal, NodeStrategic},
		{NodeStrategic, NodeCompletion},
	}

	for _, br := range branches {
		from, next := br[0], br[1]
		branch := compose.NewGraphBranch(
			newDoneCondition(next),
			map[string]bool{
				next:         true,
				NodeFinalize: true,
			},
		)
		if err := b.graph.AddBranch(from, branch); err != nil {
			logx.Error().Err(err).Str("node", from).Msg("Error adding branch")
			return fmt.Errorf("error adding branch after %s: %w", from, err)
		}
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[*model.Turn, *model.TurnResult], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(20), compose.WithGraphName("turn"))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Turn graph compiled successfully")
	return runnable, nil
}
