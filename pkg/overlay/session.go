package overlay

import (
	"log/slog"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/clickmapper/clickmapper/pkg/launcher"
	"github.com/clickmapper/clickmapper/pkg/window"
)

// ErrInvalidState is returned when an operation is called out of order
var ErrInvalidState = errors.New("operation not allowed in current session state")

// ErrSessionClosed is returned by Open once Close has been called
var ErrSessionClosed = errors.New("session closed")

// LaunchKind tells which trigger started an external process
type LaunchKind string

const (
	LaunchRender LaunchKind = "render"
	LaunchSound  LaunchKind = "sound"
)

// Observer is told about every launch attempt. Implementations must not
// block; they are called from the event loop.
type Observer interface {
	Launched(kind LaunchKind, name string, args []string, err error)
}

// Session owns one display connection and the overlay window on it.
type Session struct {
	dialer    window.Dialer
	launcher  launcher.Launcher
	render    Command
	sound     Command
	observers []Observer
	logger    *slog.Logger

	mu      sync.Mutex // guards display and closed for Close from another goroutine
	display window.Display
	closed  bool

	window   window.Window
	state    State
	rendered bool
	clicks   int
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithObserver registers a launch observer. Observers are called in the
// order they were registered.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observers = append(s.observers, o) }
}

// WithRenderCommand overrides DefaultRenderCommand
func WithRenderCommand(c Command) Option {
	return func(s *Session) { s.render = c }
}

// WithSoundCommand overrides DefaultSoundCommand
func WithSoundCommand(c Command) Option {
	return func(s *Session) { s.sound = c }
}

// NewSession creates an unopened session. A nil launcher means
// launcher.Default.
func NewSession(dialer window.Dialer, l launcher.Launcher, opts ...Option) *Session {
	if l == nil {
		l = launcher.Default
	}
	s := &Session{
		dialer:   dialer,
		launcher: l,
		render:   DefaultRenderCommand,
		sound:    DefaultSoundCommand,
		logger:   slog.Default(),
		state:    StateUnopened,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state
func (s *Session) State() State {
	return s.state
}

// Window returns the overlay window. It is zero before CreateOverlayWindow.
func (s *Session) Window() window.Window {
	return s.window
}

// Clicks returns the number of button presses handled so far
func (s *Session) Clicks() int {
	return s.clicks
}

// Open connects to the display server.
func (s *Session) Open() error {
	if s.state != StateUnopened {
		return errors.Wrapf(ErrInvalidState, "open in state %s", s.state)
	}

	if s.isClosed() {
		return errors.Wrap(ErrSessionClosed, "failed to open display")
	}

	d, err := s.dialer.Dial()
	if err != nil {
		return errors.Wrap(err, "failed to open display")
	}

	// Close may have run while dialing; nothing else would tear d down.
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = d.Close()
		return errors.Wrap(ErrSessionClosed, "failed to open display")
	}
	s.display = d
	s.mu.Unlock()

	s.state = StateConnected
	s.logger.Debug("Display connection opened")
	return nil
}

// CreateOverlayWindow creates a window at the origin covering the whole
// default screen, with override-redirect set and key presses kept from
// propagating.
func (s *Session) CreateOverlayWindow() (window.Window, error) {
	if s.state != StateConnected {
		return window.Window{}, errors.Wrapf(ErrInvalidState, "create window in state %s", s.state)
	}

	width, height := s.display.ScreenSize()
	if width == 0 || height == 0 {
		return window.Window{}, errors.Errorf("default screen has no area (%dx%d)", width, height)
	}
	geom := window.Geometry{X: 0, Y: 0, Width: width, Height: height}
	attrs := window.OverlayAttributes()

	id, err := s.display.CreateWindow(geom, attrs)
	if err != nil {
		return window.Window{}, errors.Wrap(err, "failed to create overlay window")
	}

	s.window = window.Window{ID: id, Geometry: geom, Attributes: attrs}
	s.state = StateWindowCreated
	s.logger.Info("Overlay window created", "window", id, "width", width, "height", height)
	return s.window, nil
}

// Show maps the window and flushes the connection so the map request is not
// left sitting in a buffer.
func (s *Session) Show() error {
	if s.state != StateWindowCreated {
		return errors.Wrapf(ErrInvalidState, "show in state %s", s.state)
	}

	if err := s.display.MapWindow(s.window.ID); err != nil {
		return errors.Wrap(err, "failed to show overlay window")
	}
	if err := s.display.Flush(); err != nil {
		return errors.Wrap(err, "failed to show overlay window")
	}

	s.state = StateVisible
	return nil
}

// Render starts the render process targeting the overlay window. It may be
// called once, after Show and before RunEventLoop. A failed launch is logged
// and reported to the observers, not returned.
func (s *Session) Render(image string) error {
	if s.rendered {
		return errors.Wrap(ErrInvalidState, "render already issued")
	}
	if s.state != StateVisible {
		return errors.Wrapf(ErrInvalidState, "render in state %s", s.state)
	}
	s.rendered = true

	args := s.render.Expand(map[string]string{
		PlaceholderImage:  image,
		PlaceholderWindow: strconv.FormatUint(uint64(s.window.ID), 10),
	})
	s.launch(LaunchRender, s.render.Name, args)
	return nil
}

// RunEventLoop handles events in delivery order until the display
// connection is lost. Each button press starts the sound process; every
// other event is ignored. In normal operation it never returns.
func (s *Session) RunEventLoop(sound string) error {
	if s.state != StateVisible {
		return errors.Wrapf(ErrInvalidState, "event loop in state %s", s.state)
	}
	s.state = StateEventLoopRunning

	d := s.display
	for {
		ev, err := d.NextEvent()
		if err != nil {
			return errors.Wrap(err, "event loop stopped")
		}
		s.handleEvent(ev, sound)
	}
}

func (s *Session) handleEvent(ev window.Event, sound string) {
	if ev.Kind != window.EventButtonPress {
		return
	}
	s.clicks++
	args := s.sound.Expand(map[string]string{PlaceholderSound: sound})
	s.launch(LaunchSound, s.sound.Name, args)
}

func (s *Session) launch(kind LaunchKind, name string, args []string) {
	err := s.launcher.Launch(name, args...)
	if err != nil {
		s.logger.Warn("External process failed to start",
			"kind", kind, "command", name, "error", err)
	} else {
		s.logger.Debug("External process started", "kind", kind, "command", name)
	}
	for _, o := range s.observers {
		o.Launched(kind, name, args, err)
	}
}

// Run drives the full lifecycle: open, create, show, render, then the event
// loop. It returns only on failure.
func (s *Session) Run(image, sound string) error {
	if err := s.Open(); err != nil {
		return err
	}
	if _, err := s.CreateOverlayWindow(); err != nil {
		return err
	}
	if err := s.Show(); err != nil {
		return err
	}
	if err := s.Render(image); err != nil {
		return err
	}
	return s.RunEventLoop(sound)
}

// Close tears down the display connection. It is safe to call from another
// goroutine at any point: a blocked RunEventLoop returns, and a session
// closed before or during Open never reaches the event loop.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.display == nil {
		return nil
	}
	return s.display.Close()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
