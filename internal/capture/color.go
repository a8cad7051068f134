package capture

import (
	"image/color"
	"strconv"
	"strings"
)

// ParseHexColor parses #rgb, #rrggbb, or #rrggbbaa into an NRGBA color.
// The leading # (or a 0x prefix) is optional. Alpha defaults to 255 when
// the string does not carry one.
func ParseHexColor(s string) (color.NRGBA, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimPrefix(t, "#")
	if strings.HasPrefix(strings.ToLower(t), "0x") {
		t = t[2:]
	}

	hexByte := func(hi, lo byte) (uint8, bool) {
		v, err := strconv.ParseUint(string([]byte{hi, lo}), 16, 8)
		if err != nil {
			return 0, false
		}
		return uint8(v), true
	}

	var c color.NRGBA
	var ok [4]bool
	switch len(t) {
	case 3:
		c.R, ok[0] = hexByte(t[0], t[0])
		c.G, ok[1] = hexByte(t[1], t[1])
		c.B, ok[2] = hexByte(t[2], t[2])
		c.A, ok[3] = 255, true
	case 6:
		c.R, ok[0] = hexByte(t[0], t[1])
		c.G, ok[1] = hexByte(t[2], t[3])
		c.B, ok[2] = hexByte(t[4], t[5])
		c.A, ok[3] = 255, true
	case 8:
		c.R, ok[0] = hexByte(t[0], t[1])
		c.G, ok[1] = hexByte(t[2], t[3])
		c.B, ok[2] = hexByte(t[4], t[5])
		c.A, ok[3] = hexByte(t[6], t[7])
	default:
		return color.NRGBA{}, &InvalidColorError{Input: s}
	}

	for _, good := range ok {
		if !good {
			return color.NRGBA{}, &InvalidColorError{Input: s}
		}
	}
	return c, nil
}
