/*Package stimsrv exposes a stimulation session over HTTP.  This
enables a server-client architecture: the rig control loop runs next to
the hardware, and clients compile and dispatch sequences from any
language with an HTTP library.

Routes are bound on a chi router with request logging.  Compilation
endpoints accept the same parameter shapes as the experiment config and
reply with a summary of what was (or would be) built, so clients can
verify sweep enumeration without firing a single pulse.
*/
package stimsrv

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/chuhuiyu/mxstim/experiment"
	"github.com/chuhuiyu/mxstim/stim"
)

// Server adapts a session to HTTP.
type Server struct {
	Sess *experiment.Session
}

// New returns a Server around a session.
func New(sess *experiment.Session) *Server {
	return &Server{Sess: sess}
}

// SequenceSummary describes a compiled sequence without shipping every
// instruction across the wire.
type SequenceSummary struct {
	Instructions int `json:"instructions"`
	Pulses       int `json:"pulses"`
	FirstEventID int `json:"firstEventID"`
	LastEventID  int `json:"lastEventID"`
}

func summarize(seq *stim.Sequence) SequenceSummary {
	s := SequenceSummary{Instructions: seq.Len()}
	for _, in := range seq.Instructions() {
		if ev, ok := in.(stim.Event); ok {
			if s.Pulses == 0 {
				s.FirstEventID = ev.ID
			}
			s.LastEventID = ev.ID
			s.Pulses++
		}
	}
	return s
}

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// statusFor maps the error taxonomy onto HTTP statuses: configuration
// and allocation errors are the client's to fix, device errors are not.
func statusFor(err error) int {
	switch err.(type) {
	case stim.ConfigurationError, stim.NoUnitAvailableError, stim.DuplicateUnitError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Get("/units", s.getUnits)
	r.Get("/dac-lsb", s.getLsb)
	r.Post("/compile", s.compile(false))
	r.Post("/send", s.compile(true))
	r.Post("/send-recurrent", s.sendRecurrent)
	r.Post("/power-on", s.powerPattern(stim.PowerOn))
	r.Post("/power-off", s.powerPattern(stim.PowerOff))
	r.Post("/power-off-all", s.powerOffAll)
	return r
}

func (s *Server) getUnits(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string][]int{"units": s.Sess.Units})
}

func (s *Server) getLsb(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]float64{"f64": s.Sess.LsbMV()})
}

// compileRequest is the body of /compile and /send.
type compileRequest struct {
	Train       experiment.TrainConfig `json:"train"`
	Repetitions int                    `json:"repetitions"`
}

func (s *Server) compile(send bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := compileRequest{Repetitions: 1}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		cfg := s.Sess.Cfg
		cfg.Train = req.Train
		seq, err := stim.Compile(cfg.TrainParams(), s.Sess.LsbMV(), s.Sess.Counter)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		if send {
			d := stim.Dispatcher{Device: s.Sess.Rig}
			if err := d.SendAll(seq, req.Repetitions, 0); err != nil {
				http.Error(w, err.Error(), statusFor(err))
				return
			}
		}
		respondJSON(w, summarize(seq))
	}
}

type recurrentRequest struct {
	Recurrent experiment.RecurrentConfig `json:"recurrent"`
}

func (s *Server) sendRecurrent(w http.ResponseWriter, r *http.Request) {
	var req recurrentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	cfg := s.Sess.Cfg
	cfg.Recurrent = req.Recurrent
	seq, err := stim.CompileRecurrent(cfg.RecurrentParams(), s.Sess.LsbMV(), s.Sess.Counter)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	d := stim.Dispatcher{Device: s.Sess.Rig}
	if err := d.SendAll(seq, 1, 0); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	respondJSON(w, summarize(seq))
}

type patternRequest struct {
	Pattern []int `json:"pattern"`
}

func (s *Server) powerPattern(gen func(stim.Pattern, []int) ([]stim.Instruction, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req patternRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		ins, err := gen(stim.Pattern(req.Pattern), s.Sess.Units)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		if err := s.Sess.Rig.SendUnitCommands(ins...); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		respondJSON(w, map[string]int{"commands": len(ins)})
	}
}

func (s *Server) powerOffAll(w http.ResponseWriter, r *http.Request) {
	if err := s.Sess.PowerOffAll(); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}
