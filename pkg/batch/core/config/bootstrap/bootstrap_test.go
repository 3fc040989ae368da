package bootstrap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	bootstrap "github.com/tigerroll/surfin-record/pkg/batch/core/config/bootstrap"
	jsl "github.com/tigerroll/surfin-record/pkg/batch/core/config/jsl"
)

const mainJSL = `
id: a
reader:
  ref: valuesReader
---
id: b
reader:
  ref: valuesReader
`

const extraJSL = `
id: c
reader:
  ref: valuesReader
`

func TestModule_MergesMainAndGroupDocuments(t *testing.T) {
	var defs *jsl.Definitions
	app := fxtest.New(t,
		fx.NopLogger,
		fx.Supply(jsl.JSLDefinitionBytes(mainJSL)),
		fx.Provide(fx.Annotate(
			func() jsl.JSLDefinitionBytes { return jsl.JSLDefinitionBytes(extraJSL) },
			fx.ResultTags(bootstrap.JSLDefinitionsGroup),
		)),
		bootstrap.Module,
		fx.Populate(&defs),
	)
	app.RequireStart().RequireStop()

	assert.Equal(t, []string{"a", "b", "c"}, defs.IDs())
}

func TestNewDefinitions_DuplicateAcrossFiles(t *testing.T) {
	_, err := bootstrap.NewDefinitions(bootstrap.DefinitionsParams{
		Main:      jsl.JSLDefinitionBytes(extraJSL),
		Documents: []jsl.JSLDefinitionBytes{jsl.JSLDefinitionBytes(extraJSL)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicated")
}
