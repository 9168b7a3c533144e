package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGraph_RejectsIncompleteConfig(t *testing.T) {
	_, err := BuildGraph(context.Background(), nil)
	require.Error(t, err)

	_, err = BuildGraph(context.Background(), &GraphConfig{Stages: &stages{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not properly initialized")
}
