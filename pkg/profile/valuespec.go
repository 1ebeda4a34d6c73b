// SPDX-License-Identifier: GPL-3.0-or-later

package profile

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	GeneratorPID         = "pid"
	GeneratorTID         = "tid"
	GeneratorMetricGroup = "metric_group"
)

// ValueSpec is the value given to an option when it is probed: either a
// literal or a generator evaluated at probe time.
//
// In YAML a scalar is a literal:
//
//	"-e": cycles
//	"-M": {generator: metric_group, query: [perf, list, metricgroup]}
type ValueSpec struct {
	Value     string   `yaml:"value"`
	Generator string   `yaml:"generator"`
	Query     []string `yaml:"query"`
	Match     string   `yaml:"match"`
}

func (v *ValueSpec) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		*v = ValueSpec{Value: s}
		return nil
	}

	type plain ValueSpec
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*v = ValueSpec(p)
	return nil
}

// IsLiteral reports whether the spec carries a fixed value.
func (v ValueSpec) IsLiteral() bool {
	return v.Generator == ""
}

func (v ValueSpec) validate() error {
	if v.Generator == "" {
		if len(v.Query) > 0 || v.Match != "" {
			return errors.New("'query' and 'match' require a generator")
		}
		return nil
	}
	if v.Value != "" {
		return errors.New("'value' and 'generator' are mutually exclusive")
	}

	switch v.Generator {
	case GeneratorPID, GeneratorTID:
	case GeneratorMetricGroup:
		if len(v.Query) == 0 {
			return errors.New("metric_group generator requires a query command")
		}
	default:
		return fmt.Errorf("unknown generator '%s'", v.Generator)
	}

	if v.Match != "" {
		if _, err := regexp.Compile(v.Match); err != nil {
			return fmt.Errorf("invalid match '%s': %v", v.Match, err)
		}
	}
	return nil
}
