// Package handlers is the HTTP surface for Slack's callbacks: slash
// commands and interactive messages arrive on the same endpoint and are
// told apart by the presence of a "payload" form field.
package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/nlopes/slack"
	"go.uber.org/zap"

	"github.com/gobridge/goalkeeper/keeper"
	"github.com/gobridge/goalkeeper/store"
)

// Server handles the inbound HTTP traffic.
type Server struct {
	keeper *keeper.Keeper
	wb     store.Workbook
	token  string
	log    *zap.SugaredLogger
}

// New builds a Server. token is the shared secret every callback must carry.
func New(k *keeper.Keeper, wb store.Workbook, token string, log *zap.SugaredLogger) *Server {
	return &Server{keeper: k, wb: wb, token: token, log: log}
}

// Router returns the mux with all routes registered.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/slack", s.slack).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	return r
}

func (s *Server) slack(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respond(w, keeper.Error("Bad request."))
		return
	}
	if payload := r.PostFormValue("payload"); payload != "" {
		s.interactive(w, r, payload)
		return
	}
	s.slash(w, r)
}

// slash handles a slash command. The token is checked before anything
// touches the store.
func (s *Server) slash(w http.ResponseWriter, r *http.Request) {
	if !s.verify(r.PostFormValue("token")) {
		s.respond(w, keeper.Error("Verification failed."))
		return
	}

	var (
		cmd   = r.PostFormValue("command")
		text  = r.PostFormValue("text")
		uid   = r.PostFormValue("user_id")
		uname = r.PostFormValue("user_name")
	)

	switch cmd {
	case "/goal":
		s.respond(w, s.keeper.Goal(r.Context(), uid, uname, text))
	case "/score":
		s.respond(w, s.keeper.Score(r.Context(), uid, uname, text))
	default:
		// shouldn't be possible with a correctly installed app
		s.respond(w, keeper.General(fmt.Sprintf("Got POST on %s for %s.", time.Now().Format(time.RFC1123), cmd), false))
	}
}

// interactive handles an interactive-message callback, today only the
// connect button.
func (s *Server) interactive(w http.ResponseWriter, r *http.Request, payload string) {
	var cb slack.AttachmentActionCallback
	if err := json.Unmarshal([]byte(payload), &cb); err != nil {
		s.log.Errorw("decoding interactive payload", "error", err)
		s.respond(w, keeper.Error("Bad request."))
		return
	}

	if !s.verify(cb.Token) {
		s.respond(w, keeper.Error("Verification failed."))
		return
	}

	s.keeper.Connect(r.Context(), cb.User.ID, cb.User.Name, cb.ResponseURL)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	names, err := s.wb.SheetNames(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	fmt.Fprintf(w, "ok, %d sheets\n", len(names))
}

func (s *Server) verify(token string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) == 1
}

// respond writes resp as JSON with status 200. Slack does not treat non-200
// meaningfully, so errors are reported as 200 plus an error-shaped body.
func (s *Server) respond(w http.ResponseWriter, resp keeper.Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Errorw("encoding response", "error", err)
	}
}
