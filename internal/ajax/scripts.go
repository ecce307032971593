package ajax

import (
	"context"
	"encoding/json"
	"log/slog"
)

const (
	// DefaultGreeting is the greeting the page posts to /ajaxapi.
	DefaultGreeting = "Hello from the browser!"
	// DefaultClientMessage is the message the page posts to /ajaxapi2.
	DefaultClientMessage = "didyoureceive?"
	// DefaultDisplayID is the element that echoes the /ajaxapi2 reply.
	DefaultDisplayID = "UID_afficheTest"
)

// Display is the part of the page the /ajaxapi2 reply is written into.
type Display interface {
	SetDisplay(id, text string) bool
}

// Scripts are the page's request handlers. Each runs in the background,
// reports its result to the console logger, and never surfaces a failure
// beyond a console entry.
type Scripts struct {
	Client    *Client
	Console   *slog.Logger
	DisplayID string
}

func (s *Scripts) console() *slog.Logger {
	if s.Console != nil {
		return s.Console
	}
	return slog.Default()
}

func (s *Scripts) displayID() string {
	if s.DisplayID != "" {
		return s.DisplayID
	}
	return DefaultDisplayID
}

func (s *Scripts) logFailure(f *Failure) {
	s.console().Error("request failed",
		"kind", string(f.Kind),
		"method", f.Method,
		"url", f.URL,
		"status", f.StatusCode,
		"error", f.Err)
}

// GetDataFromServer fetches /ajaxapi as text and logs it.
func (s *Scripts) GetDataFromServer(ctx context.Context) *Call[string] {
	return Go(ctx, s.Client.Tracker(), s.Client.GetText).Then(func(r Result[string]) {
		if !r.OK() {
			s.logFailure(r.Fail)
			return
		}
		s.console().Info("GET response text:", "text", r.Value)
	})
}

// GetDataFromServerJSON fetches /ajaxapi as JSON and logs it.
func (s *Scripts) GetDataFromServerJSON(ctx context.Context) *Call[interface{}] {
	return Go(ctx, s.Client.Tracker(), s.Client.GetJSON).Then(func(r Result[interface{}]) {
		if !r.OK() {
			s.logFailure(r.Fail)
			return
		}
		s.console().Info("GET response as JSON:", "json", r.Value)
	})
}

// PostDataToServer posts the greeting to /ajaxapi and logs the reply,
// which is "OK" when the server accepted it.
func (s *Scripts) PostDataToServer(ctx context.Context, greeting string) *Call[string] {
	if greeting == "" {
		greeting = DefaultGreeting
	}
	fn := func(ctx context.Context) Result[string] {
		return s.Client.PostGreeting(ctx, greeting)
	}
	return Go(ctx, s.Client.Tracker(), fn).Then(func(r Result[string]) {
		if !r.OK() {
			s.logFailure(r.Fail)
			return
		}
		s.console().Info("POST response: ", "text", r.Value)
	})
}

// PostAndGetData posts a client message to /ajaxapi2 and writes a non-null
// reply into the display element of d. On failure d is left untouched.
func (s *Scripts) PostAndGetData(ctx context.Context, message string, d Display) *Call[interface{}] {
	if message == "" {
		message = DefaultClientMessage
	}
	fn := func(ctx context.Context) Result[interface{}] {
		return s.Client.PostMessage(ctx, message)
	}
	return Go(ctx, s.Client.Tracker(), fn).Then(func(r Result[interface{}]) {
		if !r.OK() {
			s.logFailure(r.Fail)
			return
		}
		s.console().Info("messageServer", "data", r.Value)
		if r.Value == nil || d == nil {
			return
		}
		d.SetDisplay(s.displayID(), DisplayText(r.Value))
	})
}

// DisplayText renders a JSON value the way it is echoed into the page:
// strings as-is, anything else as compact JSON.
func DisplayText(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
