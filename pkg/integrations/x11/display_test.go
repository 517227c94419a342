package x11

import (
	"os"
	"testing"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/clickmapper/clickmapper/pkg/window"
)

func TestDisplayInterface(t *testing.T) {
	var _ window.Display = (*Display)(nil)
	var _ window.Dialer = Dialer{}
}

func TestWindowValues(t *testing.T) {
	tests := []struct {
		name       string
		attrs      window.Attributes
		wantMask   uint32
		wantValues []uint32
	}{
		{
			name:       "Overlay attributes",
			attrs:      window.OverlayAttributes(),
			wantMask:   xproto.CwOverrideRedirect | xproto.CwEventMask | xproto.CwDontPropagate,
			wantValues: []uint32{1, uint32(window.OverlayEventMask), uint32(window.EventMaskKeyPress)},
		},
		{
			name:       "Override redirect only",
			attrs:      window.Attributes{OverrideRedirect: true},
			wantMask:   xproto.CwOverrideRedirect,
			wantValues: []uint32{1},
		},
		{
			name:       "Event mask and propagation",
			attrs:      window.Attributes{EventMask: window.EventMaskButtonPress, DoNotPropagate: window.EventMaskKeyPress},
			wantMask:   xproto.CwEventMask | xproto.CwDontPropagate,
			wantValues: []uint32{uint32(window.EventMaskButtonPress), uint32(window.EventMaskKeyPress)},
		},
		{
			name:     "Empty",
			attrs:    window.Attributes{},
			wantMask: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask, values := windowValues(tt.attrs)
			if mask != tt.wantMask {
				t.Errorf("mask = %#x, want %#x", mask, tt.wantMask)
			}
			if len(values) != len(tt.wantValues) {
				t.Fatalf("values = %v, want %v", values, tt.wantValues)
			}
			for i := range values {
				if values[i] != tt.wantValues[i] {
					t.Errorf("values[%d] = %#x, want %#x", i, values[i], tt.wantValues[i])
				}
			}
		})
	}
}

func TestEventMaskMatchesXProto(t *testing.T) {
	pairs := []struct {
		ours window.EventMask
		x    uint32
	}{
		{window.EventMaskKeyPress, xproto.EventMaskKeyPress},
		{window.EventMaskButtonPress, xproto.EventMaskButtonPress},
		{window.EventMaskPointerMotion, xproto.EventMaskPointerMotion},
		{window.EventMaskButtonMotion, xproto.EventMaskButtonMotion},
		{window.EventMaskExposure, xproto.EventMaskExposure},
	}

	for _, p := range pairs {
		if uint32(p.ours) != p.x {
			t.Errorf("mask %#x does not match xproto %#x", p.ours, p.x)
		}
	}
}

func TestTranslateEvent(t *testing.T) {
	tests := []struct {
		name string
		in   xgb.Event
		want window.Event
	}{
		{
			name: "Button press",
			in:   xproto.ButtonPressEvent{Detail: 1, Event: 42, EventX: 10, EventY: 20},
			want: window.Event{Kind: window.EventButtonPress, Window: 42, X: 10, Y: 20, Detail: 1},
		},
		{
			name: "Motion",
			in:   xproto.MotionNotifyEvent{Event: 42, EventX: 5, EventY: 6},
			want: window.Event{Kind: window.EventMotion, Window: 42, X: 5, Y: 6},
		},
		{
			name: "Key press",
			in:   xproto.KeyPressEvent{Detail: 38, Event: 42},
			want: window.Event{Kind: window.EventKeyPress, Window: 42, Detail: 38},
		},
		{
			name: "Expose",
			in:   xproto.ExposeEvent{Window: 42, X: 3, Y: 4},
			want: window.Event{Kind: window.EventExpose, Window: 42, X: 3, Y: 4},
		},
		{
			name: "Unsubscribed event",
			in:   xproto.ButtonReleaseEvent{Event: 42},
			want: window.Event{Kind: window.EventOther},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateEvent(tt.in)
			if got != tt.want {
				t.Errorf("translateEvent() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOpenAndCreateWindow(t *testing.T) {
	if os.Getenv("DISPLAY") == "" {
		t.Skip("X11 display not available on this system")
	}

	d, err := Open("", nil)
	if err != nil {
		t.Skipf("Open() error (may be expected): %v", err)
	}
	defer d.Close()

	w, h := d.ScreenSize()
	if w == 0 || h == 0 {
		t.Fatalf("ScreenSize() = %dx%d", w, h)
	}
	t.Logf("Screen size: %dx%d", w, h)

	id, err := d.CreateWindow(window.Geometry{Width: 1, Height: 1}, window.OverlayAttributes())
	if err != nil {
		t.Fatalf("CreateWindow() error: %v", err)
	}
	if id == 0 {
		t.Error("CreateWindow() returned window id 0")
	}

	if err := d.Flush(); err != nil {
		t.Errorf("Flush() error: %v", err)
	}
}

func TestNextEventAfterClose(t *testing.T) {
	if os.Getenv("DISPLAY") == "" {
		t.Skip("X11 display not available on this system")
	}

	d, err := Open("", nil)
	if err != nil {
		t.Skipf("Open() error (may be expected): %v", err)
	}
	d.Close()

	if _, err := d.NextEvent(); err != window.ErrConnectionClosed {
		t.Errorf("NextEvent() after Close = %v, want ErrConnectionClosed", err)
	}
}
