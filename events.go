package backburner

import "reflect"

// EventCallback is the signature for "begin"/"end" subscribers: it receives
// the instance the event concerns and the one it is transitioning from (for
// "begin") or to (for "end"). Either may be nil at the edges of the
// instance stack.
type EventCallback func(current, previous *DeferredActionQueues)

// eventTable holds the ordered subscriber lists for the two event names
// [Backburner.On] and [Backburner.Off] support.
type eventTable struct {
	begin []EventCallback
	end   []EventCallback
}

func (e *eventTable) list(name string) (*[]EventCallback, error) {
	switch name {
	case "begin":
		return &e.begin, nil
	case "end":
		return &e.end, nil
	default:
		return nil, ErrUnknownEvent
	}
}

// on subscribes fn to name ("begin" or "end"), firing in insertion order
// alongside any existing subscribers. Duplicates are permitted.
func (e *eventTable) on(name string, fn EventCallback) error {
	if fn == nil {
		return ErrMissingCallback
	}
	list, err := e.list(name)
	if err != nil {
		return err
	}
	*list = append(*list, fn)
	return nil
}

// off removes the first subscriber of name matching fn's identity.
func (e *eventTable) off(name string, fn EventCallback) error {
	if fn == nil {
		return ErrMissingCallback
	}
	list, err := e.list(name)
	if err != nil {
		return err
	}
	target := reflect.ValueOf(fn).Pointer()
	for i, f := range *list {
		if reflect.ValueOf(f).Pointer() != target {
			continue
		}
		*list = append((*list)[:i], (*list)[i+1:]...)
		return nil
	}
	return ErrCallbackNotRegistered
}

func (e *eventTable) fire(name string, current, previous *DeferredActionQueues) {
	var list []EventCallback
	switch name {
	case "begin":
		list = e.begin
	case "end":
		list = e.end
	}
	for _, fn := range list {
		fn(current, previous)
	}
}
