package window

import "github.com/pkg/errors"

// ErrConnectionClosed is returned by Display.NextEvent once the connection
// to the display server is gone.
var ErrConnectionClosed = errors.New("display connection closed")

// ID identifies a window on its display connection
type ID uint32

// Geometry is a window's position and size in pixels
type Geometry struct {
	X      int16
	Y      int16
	Width  uint16
	Height uint16
}

// EventMask selects the event categories a window receives
type EventMask uint32

// Event mask bits. Values match the X11 core protocol.
const (
	EventMaskKeyPress      EventMask = 1 << 0
	EventMaskButtonPress   EventMask = 1 << 2
	EventMaskPointerMotion EventMask = 1 << 6
	EventMaskButtonMotion  EventMask = 1 << 13
	EventMaskExposure      EventMask = 1 << 15
)

// OverlayEventMask is the subscription every overlay window is created with.
const OverlayEventMask = EventMaskExposure | EventMaskKeyPress |
	EventMaskPointerMotion | EventMaskButtonMotion | EventMaskButtonPress

// Has reports whether all bits of other are set in m
func (m EventMask) Has(other EventMask) bool {
	return m&other == other
}

// Attributes are the behavioral flags applied at window creation
type Attributes struct {
	OverrideRedirect bool      // window manager must not manage or decorate
	DoNotPropagate   EventMask // events that must not reach parent windows
	EventMask        EventMask // events delivered to the window
}

// OverlayAttributes returns the attributes of a click-surface overlay.
func OverlayAttributes() Attributes {
	return Attributes{
		OverrideRedirect: true,
		DoNotPropagate:   EventMaskKeyPress,
		EventMask:        OverlayEventMask,
	}
}

// Window is a created surface on a display
type Window struct {
	ID         ID
	Geometry   Geometry
	Attributes Attributes
}

// EventKind is the category of an input event
type EventKind int

const (
	EventOther EventKind = iota
	EventButtonPress
	EventMotion
	EventKeyPress
	EventExpose
)

func (k EventKind) String() string {
	switch k {
	case EventButtonPress:
		return "button-press"
	case EventMotion:
		return "motion"
	case EventKeyPress:
		return "key-press"
	case EventExpose:
		return "expose"
	default:
		return "other"
	}
}

// Event is a single input event delivered to a window
type Event struct {
	Kind   EventKind
	Window ID
	X      int16
	Y      int16
	Detail uint8 // button or keycode
}

// Display is one connection to a display server
type Display interface {
	// ScreenSize returns the default screen's size in pixels
	ScreenSize() (width, height uint16)

	// CreateWindow creates a top-level window on the default screen
	CreateWindow(geom Geometry, attrs Attributes) (ID, error)

	// MapWindow makes the window visible
	MapWindow(id ID) error

	// Flush forces all pending requests out to the server
	Flush() error

	// NextEvent blocks until the next event arrives. It returns
	// ErrConnectionClosed when the connection is gone.
	NextEvent() (Event, error)

	// Close tears down the connection
	Close() error
}

// Dialer opens a Display
type Dialer interface {
	Dial() (Display, error)
}

// DialerFunc adapts a function to the Dialer interface
type DialerFunc func() (Display, error)

func (f DialerFunc) Dial() (Display, error) {
	return f()
}
