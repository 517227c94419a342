package display

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"

	"github.com/clickmapper/clickmapper/pkg/integrations/x11"
	"github.com/clickmapper/clickmapper/pkg/window"
)

// ErrNoDisplay is returned when no X server can be addressed
var ErrNoDisplay = errors.New("no X11 display available (is DISPLAY set?)")

// NewDialer returns a dialer for the display server of this session.
// The overlay needs X11; on Wayland it goes through XWayland via $DISPLAY.
func NewDialer(logger *slog.Logger) (window.Dialer, error) {
	switch DetectDisplayServer() {
	case "x11":
		return x11.Dialer{Logger: logger}, nil
	case "wayland":
		if os.Getenv("DISPLAY") != "" {
			return x11.Dialer{Logger: logger}, nil
		}
		return nil, errors.Wrap(ErrNoDisplay, "wayland session without XWayland")
	default:
		return nil, ErrNoDisplay
	}
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
