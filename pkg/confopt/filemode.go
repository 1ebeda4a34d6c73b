// SPDX-License-Identifier: GPL-3.0-or-later

package confopt

import (
	"fmt"
	"os"
	"strconv"
)

// FileMode is a permission set written in octal, e.g. 0755 or "0644".
type FileMode os.FileMode

func (m FileMode) FileMode() os.FileMode {
	return os.FileMode(m)
}

func (m FileMode) String() string {
	return fmt.Sprintf("%#o", uint32(m))
}

func (m *FileMode) UnmarshalYAML(unmarshal func(any) error) error {
	var s string

	if err := unmarshal(&s); err != nil {
		return err
	}

	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return fmt.Errorf("unparsable file mode '%s'", s)
	}
	if v > 0o7777 {
		return fmt.Errorf("file mode '%s' out of range", s)
	}

	*m = FileMode(v)
	return nil
}

func (m FileMode) MarshalYAML() (any, error) {
	return m.String(), nil
}
