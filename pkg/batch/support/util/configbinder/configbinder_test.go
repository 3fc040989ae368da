package configbinder_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/surfin-record/pkg/batch/support/util/configbinder"
)

type listenerProperties struct {
	Prefix   string        `yaml:"prefix"`
	Every    int           `yaml:"every"`
	Verbose  bool          `yaml:"verbose"`
	Interval time.Duration `yaml:"interval"`
	Tags     []string      `yaml:"tags"`
}

func TestBindStringProperties_WeaklyTyped(t *testing.T) {
	var props listenerProperties
	err := configbinder.BindStringProperties(map[string]string{
		"prefix":   "job-a",
		"every":    "25",
		"verbose":  "true",
		"interval": "1500ms",
		"tags":     "a,b",
	}, &props)

	require.NoError(t, err)
	assert.Equal(t, "job-a", props.Prefix)
	assert.Equal(t, 25, props.Every)
	assert.True(t, props.Verbose)
	assert.Equal(t, 1500*time.Millisecond, props.Interval)
	assert.Equal(t, []string{"a", "b"}, props.Tags)
}

func TestBindProperties_EmptyIsNoop(t *testing.T) {
	props := listenerProperties{Prefix: "kept"}
	require.NoError(t, configbinder.BindProperties(nil, &props))
	assert.Equal(t, "kept", props.Prefix)
}

func TestBindProperties_InvalidValue(t *testing.T) {
	var props listenerProperties
	err := configbinder.BindProperties(map[string]interface{}{"every": "many"}, &props)
	assert.ErrorContains(t, err, "listenerProperties")
}
