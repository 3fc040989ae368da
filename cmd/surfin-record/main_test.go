package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	jsl "github.com/tigerroll/surfin-record/pkg/batch/core/config/jsl"
)

func TestApplicationGraphIsComplete(t *testing.T) {
	options := GetApplicationOptions(context.Background(), "", embeddedConfig, embeddedJSL)
	require.NoError(t, fx.ValidateApp(options...))
}

func TestEmbeddedJobsParse(t *testing.T) {
	defs, err := jsl.LoadDefinitions(embeddedJSL)
	require.NoError(t, err)
	require.Equal(t, []string{"greetings", "report-audit"}, defs.IDs())
}
