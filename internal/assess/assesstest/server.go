// Package assesstest provides a scripted fake of the assessment service for
// tests.
package assesstest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/mux"
)

// Paths served by the fake.
const (
	PathQuestion = "/api/pregunta"
	PathVerify   = "/api/verificar"
	PathReset    = "/api/reiniciar"
)

// Reply is one scripted response.
type Reply struct {
	Status int
	Body   string
}

// Request is one request received by the fake.
type Request struct {
	Method string
	Path   string
	Body   string
}

// Server is an httptest server answering the three assessment routes from
// per-path reply queues. When a queue is empty the route answers 500.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	replies  map[string][]Reply
	requests []Request
}

// NewServer starts a fake server. Callers must Close it.
func NewServer() *Server {
	s := &Server{replies: make(map[string][]Reply)}

	r := mux.NewRouter()
	r.HandleFunc(PathQuestion, s.handle).Methods(http.MethodGet)
	r.HandleFunc(PathVerify, s.handle).Methods(http.MethodPost)
	r.HandleFunc(PathReset, s.handle).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	return s
}

// Queue appends a raw reply for path.
func (s *Server) Queue(path string, status int, body string) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[path] = append(s.replies[path], Reply{Status: status, Body: body})
	return s
}

// QueueJSON appends a 200 reply whose body is v encoded as JSON.
func (s *Server) QueueJSON(path string, v any) *Server {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return s.Queue(path, http.StatusOK, string(b))
}

// Requests returns the requests received so far, in order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Paths returns the paths of the requests received so far, in order.
func (s *Server) Paths() []string {
	reqs := s.Requests()
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Path
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	reply := Reply{Status: http.StatusInternalServerError, Body: `{"error":"no scripted reply"}`}
	if queue := s.replies[r.URL.Path]; len(queue) > 0 {
		reply = queue[0]
		s.replies[r.URL.Path] = queue[1:]
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	w.Write([]byte(reply.Body))
}
