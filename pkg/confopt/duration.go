// SPDX-License-Identifier: GPL-3.0-or-later

// Package confopt holds value types for YAML profile fields.
package confopt

import (
	"fmt"
	"strconv"
	"time"
)

// Duration accepts Go duration strings ("1m30s") as well as plain numbers of
// seconds ("5", "0.5").
type Duration time.Duration

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return d.Duration().String() }

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	if v, err := time.ParseDuration(s); err == nil {
		*d = Duration(v)
		return nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("unparsable duration '%s'", s)
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}
