package capture

import "fmt"

// InvalidURLError reports a share URL that does not carry usable
// coordinates. It is fatal: nothing is downloaded after it.
type InvalidURLError struct {
	URL    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid share URL %q: %s", e.URL, e.Reason)
}

// InvalidColorError reports an unparseable hex color string. Fatal, same
// as InvalidURLError.
type InvalidColorError struct {
	Input string
}

func (e *InvalidColorError) Error() string {
	return fmt.Sprintf("invalid hex color %q: use #rgb, #rrggbb, or #rrggbbaa", e.Input)
}
