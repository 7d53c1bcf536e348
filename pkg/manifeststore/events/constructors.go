package events

import "time"

func newEvent(eventType EventType, manifestID, operation, message string) Event {
	return Event{
		Type:       eventType,
		ManifestID: manifestID,
		Operation:  operation,
		Message:    message,
		Timestamp:  time.Now(),
	}
}

func Success(manifestID, operation, message string) Event {
	return newEvent(EventTypeSuccess, manifestID, operation, message)
}

func Error(manifestID, operation, message string, err error) Event {
	event := newEvent(EventTypeError, manifestID, operation, message)
	if err != nil {
		event.Error = err.Error()
	}
	return event
}

func Info(manifestID, operation, message string) Event {
	return newEvent(EventTypeInfo, manifestID, operation, message)
}

func Warning(manifestID, operation, message string) Event {
	return newEvent(EventTypeWarning, manifestID, operation, message)
}
