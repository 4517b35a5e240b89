package mocks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/careplan-api/internal/generation"
	"github.com/phrazzld/careplan-api/internal/mocks"
	"github.com/phrazzld/careplan-api/internal/service/auth"
	"github.com/phrazzld/careplan-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ generation.Generator = (*mocks.MockGenerator)(nil)
	_ store.CarePlanStore  = (*mocks.TestifyMockCarePlanStore)(nil)
	_ auth.JWTService      = (*mocks.MockJWTService)(nil)
)

func TestMockGenerator(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{Content: "plan"}
	out, err := gen.Generate(context.Background(), generation.Input{PatientName: "Alice Johnson"})
	require.NoError(t, err)
	assert.Equal(t, "plan", out)

	gen.Err = errors.New("quota exceeded")
	_, err = gen.Generate(context.Background(), generation.Input{PatientName: "Bob Smith"})
	var pe *generation.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "mock", pe.Provider)

	assert.Equal(t, 2, gen.Calls())
	inputs := gen.Inputs()
	require.Len(t, inputs, 2)
	assert.Equal(t, "Bob Smith", inputs[1].PatientName)
}
