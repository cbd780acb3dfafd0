// Package web provides the HTTP status page of the shiftio daemon and the
// endpoint for output commands.
package web

import (
	"context"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"

	"github.com/sweeney/shiftio/internal/logic"
	"github.com/sweeney/shiftio/internal/status"
)

// ErrBusy may be returned by a SubmitFunc when it cannot take more commands.
var ErrBusy = errors.New("command queue full")

// SubmitFunc hands an output command to the daemon. The command is applied
// on the next chain update.
type SubmitFunc func(logic.Command) error

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	outputs    logic.Names
	submit     SubmitFunc
}

// New creates a Server that reads state from the given tracker. Output
// commands are resolved against outputs and passed to submit; with a nil
// submit the server is read-only.
func New(addr string, tracker *status.Tracker, outputs logic.Names, submit SubmitFunc) *Server {
	s := &Server{tracker: tracker, outputs: outputs, submit: submit}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/outputs", s.handleOutputs)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap, s.submit != nil)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// handleOutputs accepts a command as a form (pin, state), as JSON
// {"pin": ..., "state": ...} or as the text pin=state.
func (s *Server) handleOutputs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.submit == nil {
		http.Error(w, "chain has no outputs", http.StatusConflict)
		return
	}

	form := isForm(r)
	cmd, err := s.decode(r, form)
	switch {
	case errors.Is(err, logic.ErrUnknownPin):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.submit(cmd); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	if form {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) decode(r *http.Request, form bool) (logic.Command, error) {
	if form {
		if err := r.ParseForm(); err != nil {
			return logic.Command{}, err
		}
		return logic.NewCommand(r.PostForm.Get("pin"), r.PostForm.Get("state"), s.outputs)
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 4096))
	if err != nil {
		return logic.Command{}, err
	}
	return logic.DecodeCommand(body, s.outputs)
}

func isForm(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/x-www-form-urlencoded"
}
