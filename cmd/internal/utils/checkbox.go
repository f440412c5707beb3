package utils

import (
	"fmt"
	"strings"
)

// Checkbox is a form boolean. Browsers send "on" for a ticked box and
// nothing at all for an unticked one, so an absent field binds as false.
type Checkbox bool

// UnmarshalParam implements echo.BindUnmarshaler.
func (c *Checkbox) UnmarshalParam(param string) error {
	switch strings.ToLower(strings.TrimSpace(param)) {
	case "on", "true", "1", "yes":
		*c = true
	case "", "off", "false", "0", "no":
		*c = false
	default:
		return fmt.Errorf("invalid checkbox value %q", param)
	}
	return nil
}

func (c Checkbox) Bool() bool {
	return bool(c)
}
