package viewer

import (
	"image"

	"github.com/go-gl/mathgl/mgl64"
)

type EventKind int

const (
	Quit EventKind = iota
	// Drag moves the pointer by Delta pixels.
	Drag
	// Scroll turns the wheel by Ticks; positive widens the view.
	Scroll
	// Press and Release bracket a pan: drags only pan while pressed.
	Press
	Release
	// Select replaces the view by the pixel rectangle Rect.
	Select
)

var kindNames = [...]string{
	Quit:    "quit",
	Drag:    "drag",
	Scroll:  "scroll",
	Press:   "press",
	Release: "release",
	Select:  "select",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseEventKind is the inverse of EventKind.String.
func ParseEventKind(s string) (EventKind, bool) {
	for k, name := range kindNames {
		if name == s {
			return EventKind(k), true
		}
	}
	return 0, false
}

// Event is one discrete user input.
type Event struct {
	Kind  EventKind
	Delta mgl64.Vec2
	Ticks int
	Rect  image.Rectangle
}

// EventSource hands out the events that arrived since the last call.
// PollEvents must not block.
type EventSource interface {
	PollEvents() []Event
}

// Surface displays finished frames. A Present error stops the driver.
type Surface interface {
	Present(img *image.RGBA) error
}

// ChanSource is an EventSource fed through a channel. Closing the channel
// quits.
type ChanSource chan Event

func (c ChanSource) PollEvents() []Event {
	var events []Event
	for {
		select {
		case ev, ok := <-c:
			if !ok {
				return append(events, Event{Kind: Quit})
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}
