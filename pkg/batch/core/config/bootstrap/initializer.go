// Package bootstrap loads the application's JSL definitions when the Fx graph is built.
package bootstrap

import (
	"context"
	"strings"

	"go.uber.org/fx"

	jsl "github.com/tigerroll/surfin-record/pkg/batch/core/config/jsl"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// DefinitionsParams defines the dependencies of NewDefinitions.
type DefinitionsParams struct {
	fx.In
	// Documents holds the JSL files. Each may contain several YAML documents.
	Documents []jsl.JSLDefinitionBytes `group:"jsl_definitions"`
	Main      jsl.JSLDefinitionBytes   `optional:"true"`
}

// JSLDefinitionsGroup is the Fx value group applications contribute additional JSL files to.
const JSLDefinitionsGroup = `group:"jsl_definitions"`

// NewDefinitions parses the supplied JSL files into one set of definitions.
// Duplicate job IDs across files are an error.
func NewDefinitions(p DefinitionsParams) (*jsl.Definitions, error) {
	defs := jsl.NewDefinitions()
	documents := p.Documents
	if len(p.Main) > 0 {
		documents = append([]jsl.JSLDefinitionBytes{p.Main}, documents...)
	}
	for _, doc := range documents {
		if err := defs.Load(doc); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// LogDefinitionsHook logs the available job definitions once the application starts.
func LogDefinitionsHook(lc fx.Lifecycle, defs *jsl.Definitions) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if defs.Len() == 0 {
				logger.Warnf("No JSL job definitions were loaded.")
				return nil
			}
			logger.Infof("Available jobs: %s", strings.Join(defs.IDs(), ", "))
			return nil
		},
	})
}
