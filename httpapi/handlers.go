package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph/fruit"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type message struct {
	Msg string `json:"msg"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusOf(code fruit.Code) int {
	switch code {
	case fruit.CodeInvalidArgument:
		return http.StatusBadRequest
	case fruit.CodeNotFound:
		return http.StatusNotFound
	case fruit.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := fruit.CodeOf(err)
	status := statusOf(code)
	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", string(code),
			"error", err,
		)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: string(code)})
}

// decodeObject reads a JSON object from the request body.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var input map[string]any
	if err := json.NewDecoder(body).Decode(&input); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &fruit.Error{Code: fruit.CodeInvalidArgument, Message: "request body is required"}
		}
		return nil, &fruit.Error{Code: fruit.CodeInvalidArgument, Message: "request body must be a JSON object", Cause: err}
	}
	if input == nil {
		return nil, &fruit.Error{Code: fruit.CodeInvalidArgument, Message: "request body must be a JSON object"}
	}
	return input, nil
}

func (s *Server) home(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Fruit API is running")
}

// apiVersion answers with the bare version string as plain text.
func (s *Server) apiVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, s.version)
}

// listRoutes answers with a bare JSON array of route patterns.
func (s *Server) listRoutes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Routes())
}

func (s *Server) pingGraph(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.Ping(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) searchFruits(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) getFruit(w http.ResponseWriter, r *http.Request) {
	detail, err := s.svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) getFruitGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := s.svc.FruitGraph(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

func (s *Server) createFruit(w http.ResponseWriter, r *http.Request) {
	input, err := decodeObject(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Create(r.Context(), input); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, message{Msg: "Created"})
}

func (s *Server) updateFruit(w http.ResponseWriter, r *http.Request) {
	input, err := decodeObject(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Update(r.Context(), r.PathValue("id"), input); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Msg: "Updated"})
}

func (s *Server) deleteFruit(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Msg: "Deleted"})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.svc.DashboardStats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) reconcile(w http.ResponseWriter, r *http.Request) {
	var opts fruit.ReconcileOptions
	if raw := r.URL.Query().Get("repair"); raw != "" {
		repair, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, r, &fruit.Error{Code: fruit.CodeInvalidArgument, Message: "repair must be a boolean", Cause: err})
			return
		}
		opts.Repair = repair
	}
	report, err := s.svc.Reconcile(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
