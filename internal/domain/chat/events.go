package chat

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

// EventKind tags a stream event
type EventKind int

const (
	KindContent EventKind = iota
	KindPlaces
	KindError
	KindEnd
)

func (k EventKind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindPlaces:
		return "places"
	case KindError:
		return "error"
	case KindEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Event is one unit of the multiplexed turn stream
type Event struct {
	Kind    EventKind
	Content string
	Places  []types.PlaceRecord
	Error   string
}

// Content is a prose delta to append
func Content(delta string) Event { return Event{Kind: KindContent, Content: delta} }

// Places carries the search results of the turn
func Places(places []types.PlaceRecord) Event { return Event{Kind: KindPlaces, Places: places} }

// ErrorNotice reports a failure the user should see
func ErrorNotice(msg string) Event { return Event{Kind: KindError, Error: msg} }

// End marks the end of the turn
func End() Event { return Event{Kind: KindEnd} }

type contentWire struct {
	Content string `json:"content"`
}

type placesWire struct {
	Type string              `json:"type"`
	Data []types.PlaceRecord `json:"data"`
}

type errorWire struct {
	Error string `json:"error"`
}

// MarshalJSON renders the wire form:
//
//	{"content":"..."}  {"type":"places","data":[...]}  {"error":"..."}  {"content":""}
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindContent:
		return sonic.Marshal(contentWire{Content: e.Content})
	case KindPlaces:
		data := e.Places
		if data == nil {
			data = []types.PlaceRecord{}
		}
		return sonic.Marshal(placesWire{Type: "places", Data: data})
	case KindError:
		return sonic.Marshal(errorWire{Error: e.Error})
	case KindEnd:
		return sonic.Marshal(contentWire{})
	default:
		return nil, fmt.Errorf("unknown event kind %d", e.Kind)
	}
}

// ErrUnknownEvent is returned by DecodeEvent for frames of no known form
var ErrUnknownEvent = errors.New("unknown stream event")

// DecodeEvent parses a wire frame back into an Event
func DecodeEvent(data []byte) (Event, error) {
	var frame struct {
		Type    string              `json:"type"`
		Data    []types.PlaceRecord `json:"data"`
		Content *string             `json:"content"`
		Error   *string             `json:"error"`
	}
	if err := sonic.Unmarshal(data, &frame); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}

	switch {
	case frame.Type == "places":
		return Places(frame.Data), nil
	case frame.Error != nil:
		return ErrorNotice(*frame.Error), nil
	case frame.Content != nil && *frame.Content == "":
		return End(), nil
	case frame.Content != nil:
		return Content(*frame.Content), nil
	}
	return Event{}, ErrUnknownEvent
}

// Emitter writes events to the client in order
type Emitter interface {
	Emit(Event) error
}

// EmitterFunc adapts a function to Emitter
type EmitterFunc func(Event) error

func (f EmitterFunc) Emit(e Event) error { return f(e) }
