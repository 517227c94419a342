package x11

import (
	"log/slog"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/clickmapper/clickmapper/pkg/window"
)

// Display implements window.Display on a raw X11 connection
type Display struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	logger *slog.Logger
}

// Dialer connects to an X server. An empty Name uses $DISPLAY.
type Dialer struct {
	Name   string
	Logger *slog.Logger
}

// Dial opens the connection
func (d Dialer) Dial() (window.Display, error) {
	return Open(d.Name, d.Logger)
}

// Open connects to the named display, or $DISPLAY when name is empty
func Open(name string, logger *slog.Logger) (*Display, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		conn *xgb.Conn
		err  error
	)
	if name == "" {
		conn, err = xgb.NewConn()
	} else {
		conn, err = xgb.NewConnDisplay(name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X server")
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		conn.Close()
		return nil, errors.New("X server reported no default screen")
	}

	return &Display{
		conn:   conn,
		screen: screen,
		logger: logger,
	}, nil
}

// ScreenSize returns the default screen size in pixels
func (d *Display) ScreenSize() (uint16, uint16) {
	return d.screen.WidthInPixels, d.screen.HeightInPixels
}

// CreateWindow creates a child of the root window. Depth, class and visual
// are copied from the parent.
func (d *Display) CreateWindow(geom window.Geometry, attrs window.Attributes) (window.ID, error) {
	wid, err := xproto.NewWindowId(d.conn)
	if err != nil {
		return 0, errors.Wrap(err, "failed to allocate window id")
	}

	mask, values := windowValues(attrs)
	err = xproto.CreateWindowChecked(d.conn,
		xproto.WindowClassCopyFromParent,
		wid, d.screen.Root,
		geom.X, geom.Y, geom.Width, geom.Height,
		0,
		xproto.WindowClassCopyFromParent,
		xproto.Visualid(xproto.WindowClassCopyFromParent),
		mask, values,
	).Check()
	if err != nil {
		return 0, errors.Wrap(err, "failed to create window")
	}

	return window.ID(wid), nil
}

// windowValues builds the CreateWindow value mask and list. The list must be
// ordered by ascending mask bit.
func windowValues(attrs window.Attributes) (uint32, []uint32) {
	var mask uint32
	var values []uint32

	if attrs.OverrideRedirect {
		mask |= xproto.CwOverrideRedirect
		values = append(values, 1)
	}
	if attrs.EventMask != 0 {
		mask |= xproto.CwEventMask
		values = append(values, uint32(attrs.EventMask))
	}
	if attrs.DoNotPropagate != 0 {
		mask |= xproto.CwDontPropagate
		values = append(values, uint32(attrs.DoNotPropagate))
	}

	return mask, values
}

// MapWindow maps the window
func (d *Display) MapWindow(id window.ID) error {
	if err := xproto.MapWindowChecked(d.conn, xproto.Window(id)).Check(); err != nil {
		return errors.Wrap(err, "failed to map window")
	}
	return nil
}

// Flush does a round trip so every earlier request has reached the server
func (d *Display) Flush() error {
	if _, err := xproto.GetInputFocus(d.conn).Reply(); err != nil {
		return errors.Wrap(err, "failed to flush X requests")
	}
	return nil
}

// NextEvent blocks for the next event. Protocol errors are logged and
// skipped; only a closed connection ends the stream.
func (d *Display) NextEvent() (window.Event, error) {
	for {
		ev, xerr := d.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return window.Event{}, window.ErrConnectionClosed
		}
		if xerr != nil {
			d.logger.Warn("X protocol error", "error", xerr.Error())
			continue
		}
		return translateEvent(ev), nil
	}
}

func translateEvent(ev xgb.Event) window.Event {
	switch e := ev.(type) {
	case xproto.ButtonPressEvent:
		return window.Event{
			Kind:   window.EventButtonPress,
			Window: window.ID(e.Event),
			X:      e.EventX,
			Y:      e.EventY,
			Detail: uint8(e.Detail),
		}
	case xproto.MotionNotifyEvent:
		return window.Event{
			Kind:   window.EventMotion,
			Window: window.ID(e.Event),
			X:      e.EventX,
			Y:      e.EventY,
			Detail: e.Detail,
		}
	case xproto.KeyPressEvent:
		return window.Event{
			Kind:   window.EventKeyPress,
			Window: window.ID(e.Event),
			X:      e.EventX,
			Y:      e.EventY,
			Detail: uint8(e.Detail),
		}
	case xproto.ExposeEvent:
		return window.Event{
			Kind:   window.EventExpose,
			Window: window.ID(e.Window),
			X:      int16(e.X),
			Y:      int16(e.Y),
		}
	default:
		return window.Event{Kind: window.EventOther}
	}
}

// Close closes the connection. A blocked NextEvent returns
// window.ErrConnectionClosed afterwards.
func (d *Display) Close() error {
	d.conn.Close()
	return nil
}
