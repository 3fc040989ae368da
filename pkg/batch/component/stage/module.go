package stage

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/fx"

	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	jsl "github.com/tigerroll/surfin-record/pkg/batch/core/config/jsl"
	support "github.com/tigerroll/surfin-record/pkg/batch/core/config/support"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

type recordNumberProperties struct {
	Lower   int64   `yaml:"lower"`
	Upper   int64   `yaml:"upper"`
	Numbers []int64 `yaml:"numbers"`
}

// NewRecordNumberFilterBuilder creates a builder for header-number filters. With
// "numbers" set it drops exactly those records, otherwise those in [lower, upper].
func NewRecordNumberFilterBuilder() jsl.ComponentBuilder {
	return func(_ *config.Config, properties map[string]string) (interface{}, error) {
		var props recordNumberProperties
		if err := configbinder.BindStringProperties(properties, &props); err != nil {
			return nil, err
		}
		if len(props.Numbers) > 0 {
			return RecordNumberEqualToFilter(props.Numbers...), nil
		}
		if props.Upper < props.Lower {
			return nil, fmt.Errorf("upper (%d) is lower than lower (%d)", props.Upper, props.Lower)
		}
		return RecordNumberBetweenFilter(props.Lower, props.Upper), nil
	}
}

// NewEmptyRecordFilterBuilder creates a builder for EmptyRecordFilter.
func NewEmptyRecordFilterBuilder() jsl.ComponentBuilder {
	return func(_ *config.Config, _ map[string]string) (interface{}, error) {
		return EmptyRecordFilter(), nil
	}
}

type textMapperProperties struct {
	// Case is "upper", "lower" or empty.
	Case string `yaml:"case"`
	Trim bool   `yaml:"trim"`
}

// NewTextMapperBuilder creates a builder for a mapper over string payloads that trims
// spaces and changes case.
func NewTextMapperBuilder() jsl.ComponentBuilder {
	return func(_ *config.Config, properties map[string]string) (interface{}, error) {
		var props textMapperProperties
		if err := configbinder.BindStringProperties(properties, &props); err != nil {
			return nil, err
		}
		var convert func(string) string
		switch props.Case {
		case "upper":
			convert = strings.ToUpper
		case "lower":
			convert = strings.ToLower
		case "":
			convert = func(s string) string { return s }
		default:
			return nil, fmt.Errorf("unknown case '%s'", props.Case)
		}
		return NewTypedMapper(func(_ context.Context, s string) (string, error) {
			if props.Trim {
				s = strings.TrimSpace(s)
			}
			return convert(s), nil
		}), nil
	}
}

type textValidatorProperties struct {
	NotBlank  bool `yaml:"not_blank"`
	MaxLength int  `yaml:"max_length"`
}

// NewTextValidatorBuilder creates a builder for a validator over string payloads.
func NewTextValidatorBuilder() jsl.ComponentBuilder {
	return func(_ *config.Config, properties map[string]string) (interface{}, error) {
		var props textValidatorProperties
		if err := configbinder.BindStringProperties(properties, &props); err != nil {
			return nil, err
		}
		return NewTypedValidator(func(s string) error {
			if props.NotBlank && strings.TrimSpace(s) == "" {
				return fmt.Errorf("value is blank")
			}
			if props.MaxLength > 0 && utf8.RuneCountInString(s) > props.MaxLength {
				return fmt.Errorf("value '%s' is longer than %d characters", s, props.MaxLength)
			}
			return nil
		}), nil
	}
}

// stageBuilders receives the stage component builders from Fx.
type stageBuilders struct {
	fx.In
	RecordNumberFilter jsl.ComponentBuilder `name:"recordNumberFilter"`
	EmptyRecordFilter  jsl.ComponentBuilder `name:"emptyRecordFilter"`
	TextMapper         jsl.ComponentBuilder `name:"textMapper"`
	TextValidator      jsl.ComponentBuilder `name:"textValidator"`
}

// RegisterStageBuilders registers the stage component builders with the JobFactory.
func RegisterStageBuilders(jf *support.JobFactory, builders stageBuilders) {
	jf.RegisterComponentBuilder("recordNumberFilter", builders.RecordNumberFilter)
	jf.RegisterComponentBuilder("emptyRecordFilter", builders.EmptyRecordFilter)
	jf.RegisterComponentBuilder("textMapper", builders.TextMapper)
	jf.RegisterComponentBuilder("textValidator", builders.TextValidator)
	logger.Debugf("Stage components registered with JobFactory.")
}

// Module provides the stage component builders.
var Module = fx.Options(
	fx.Provide(fx.Annotate(NewRecordNumberFilterBuilder, fx.ResultTags(`name:"recordNumberFilter"`))),
	fx.Provide(fx.Annotate(NewEmptyRecordFilterBuilder, fx.ResultTags(`name:"emptyRecordFilter"`))),
	fx.Provide(fx.Annotate(NewTextMapperBuilder, fx.ResultTags(`name:"textMapper"`))),
	fx.Provide(fx.Annotate(NewTextValidatorBuilder, fx.ResultTags(`name:"textValidator"`))),
	fx.Invoke(RegisterStageBuilders),
)
