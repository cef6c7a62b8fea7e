package progrock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ripple/internal/adapters/telemetry/progrock"
)

func TestNew(t *testing.T) {
	recorder := progrock.New()
	assert.NotNil(t, recorder)
}

func TestRecorder_SpanLifecycle(t *testing.T) {
	recorder := progrock.New()

	_, span := recorder.Start(context.Background(), "compile widget")
	require.NotNil(t, span)

	n, err := span.Write([]byte("cc -c widget.c\n"))
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	span.SetAttribute("report", "build/widget.deps.yaml")
	span.RecordError(errors.New("exit status 1"))
	span.End()

	recorder.EmitPlan(context.Background(), []string{"widget", "app"})
	require.NoError(t, recorder.Close())
}
