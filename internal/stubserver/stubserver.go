// Package stubserver runs a scripted fake RTSPtoWeb / RTSPtoWebRTC server on
// a loopback listener for tests. Responses are scripted per request path and
// popped in arrival order; every request's path and body are recorded so
// tests can assert on the exact wire traffic.
package stubserver

import (
	"encoding/json"
	"net"
	"net/url"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
)

// Response is one scripted reply. JSON takes precedence over Body when both
// are set. A zero Status means 200.
type Response struct {
	Status int
	JSON   interface{}
	Body   []byte
}

// Server serves both server flavors' route tables at once; what a test
// scripts decides which flavor it impersonates. Requests to a path with no
// scripted response get a plain 404, which is how an absent backend looks to
// a heartbeat probe. Responses are keyed by path rather than held in one
// global queue so concurrently issued probes stay deterministic.
type Server struct {
	app *fiber.App
	ln  net.Listener

	mu        sync.Mutex
	responses map[string][]Response
	paths     []string
	jsonReqs  []map[string]interface{}
	formReqs  []map[string]string
}

// Start launches the stub on an ephemeral loopback port.
func Start() (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	s := &Server{
		app:       fiber.New(fiber.Config{DisableStartupMessage: true}),
		ln:        ln,
		responses: make(map[string][]Response),
	}

	// RTSPtoWebRTC flavor.
	s.app.Get("/static", s.handle)
	s.app.Post("/stream", s.handle)

	// RTSPtoWeb flavor.
	s.app.Get("/streams", s.handle)
	s.app.Post("/stream/:stream_id/add", s.handle)
	s.app.Post("/stream/:stream_id/edit", s.handle)
	s.app.Get("/stream/:stream_id/reload", s.handle)
	s.app.Get("/stream/:stream_id/info", s.handle)
	s.app.Get("/stream/:stream_id/delete", s.handle)
	s.app.Post("/stream/:stream_id/channel/:channel_id/add", s.handle)
	s.app.Post("/stream/:stream_id/channel/:channel_id/edit", s.handle)
	s.app.Get("/stream/:stream_id/channel/:channel_id/reload", s.handle)
	s.app.Get("/stream/:stream_id/channel/:channel_id/info", s.handle)
	s.app.Get("/stream/:stream_id/channel/:channel_id/codec", s.handle)
	s.app.Get("/stream/:stream_id/channel/:channel_id/delete", s.handle)
	s.app.Post("/stream/:stream_id/channel/:channel_id/webrtc", s.handle)

	go s.app.Listener(ln) //nolint:errcheck // listener errors surface as request failures

	return s, nil
}

// URL returns the stub's base URL, e.g. "http://127.0.0.1:49152".
func (s *Server) URL() string {
	return "http://" + s.ln.Addr().String()
}

func (s *Server) Close() {
	_ = s.app.Shutdown()
}

// Script appends one scripted response to the path's reply queue.
func (s *Server) Script(path string, r Response) {
	s.mu.Lock()
	s.responses[path] = append(s.responses[path], r)
	s.mu.Unlock()
}

// ScriptJSON appends a scripted JSON response with the specified status.
func (s *Server) ScriptJSON(path string, status int, v interface{}) {
	s.Script(path, Response{Status: status, JSON: v})
}

// Paths returns the request paths observed so far, in arrival order.
func (s *Server) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.paths...)
}

// JSONBodies returns the decoded bodies of JSON POST requests, in order.
func (s *Server) JSONBodies() []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]interface{}{}, s.jsonReqs...)
}

// Forms returns the decoded bodies of form POST requests, in order. Repeated
// form keys keep only their first value.
func (s *Server) Forms() []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]string{}, s.formReqs...)
}

func (s *Server) handle(c *fiber.Ctx) error {
	s.mu.Lock()
	path := c.Path()
	println("DEBUG handle: path=" + path + " queue=" + func() string {
		if len(s.responses[path]) == 0 {
			return "EMPTY"
		}
		return "ok"
	}() + " keys:")
	for k := range s.responses {
		println("  key=" + k)
	}
	s.paths = append(s.paths, path)
	s.recordBody(c)

	queue := s.responses[path]
	if len(queue) == 0 {
		s.mu.Unlock()
		return c.SendStatus(fiber.StatusNotFound)
	}
	next := queue[0]
	s.responses[path] = queue[1:]
	s.mu.Unlock()

	status := next.Status
	if status == 0 {
		status = fiber.StatusOK
	}
	if next.JSON != nil {
		return c.Status(status).JSON(next.JSON)
	}
	return c.Status(status).Send(next.Body)
}

func (s *Server) recordBody(c *fiber.Ctx) {
	if c.Method() != fiber.MethodPost {
		return
	}
	contentType := string(c.Request().Header.ContentType())
	switch {
	case strings.HasPrefix(contentType, fiber.MIMEApplicationJSON):
		var decoded map[string]interface{}
		if err := json.Unmarshal(c.Body(), &decoded); err == nil {
			s.jsonReqs = append(s.jsonReqs, decoded)
		}
	case strings.HasPrefix(contentType, fiber.MIMEApplicationForm):
		values, err := url.ParseQuery(string(c.Body()))
		if err != nil {
			return
		}
		form := make(map[string]string, len(values))
		for key := range values {
			form[key] = values.Get(key)
		}
		s.formReqs = append(s.formReqs, form)
	}
}
