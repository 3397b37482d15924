package webui

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/skillbuilder/skillbuilder/pkg/catalog"
	"github.com/skillbuilder/skillbuilder/pkg/logger"
	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

// APIKeyHeader carries a caller-supplied provider credential
const APIKeyHeader = "X-API-Key"

// GenerateRequest is the body of POST /api/generate
type GenerateRequest struct {
	Prompt any `json:"prompt"`
}

// ExportRequest is the body of POST /api/skills/export
type ExportRequest struct {
	IDs []string `json:"ids"`
}

// SkillResponse wraps a single record
type SkillResponse struct {
	Skill skilltypes.Record `json:"skill"`
}

// SkillListResponse wraps listing summaries
type SkillListResponse struct {
	Skills []skilltypes.Summary `json:"skills"`
}

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, r, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Uptime:    time.Since(s.startedAt).Seconds(),
	})
}

// handleGenerate handles POST /api/generate
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	prompt, ok := req.Prompt.(string)
	if !ok {
		s.writeError(w, r, skilltypes.ValidationError("Prompt is required."))
		return
	}

	record, err := s.builder.Build(r.Context(), prompt, r.Header.Get(APIKeyHeader))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSONResponse(w, r, http.StatusOK, SkillResponse{Skill: record})
}

// handleListSkills handles GET /api/skills
func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.catalog.ListPublished(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	query := r.URL.Query()
	summaries = catalog.Filter(summaries, catalog.Query{
		Search:   query.Get("search"),
		Category: query.Get("category"),
	})

	s.writeJSONResponse(w, r, http.StatusOK, SkillListResponse{Skills: summaries})
}

// handleGetSkill handles GET /api/skills/{id}
func (s *Server) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	record, err := s.catalog.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSONResponse(w, r, http.StatusOK, SkillResponse{Skill: record})
}

// handleGetRawSkill handles GET /api/skills/{id}/raw
func (s *Server) handleGetRawSkill(w http.ResponseWriter, r *http.Request) {
	content, err := s.catalog.GetRawContent(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, content)
}

// handleUpdateSkill handles PUT /api/skills/{id}
func (s *Server) handleUpdateSkill(w http.ResponseWriter, r *http.Request) {
	var patch skilltypes.Patch
	if err := s.decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	record, err := s.catalog.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSONResponse(w, r, http.StatusOK, SkillResponse{Skill: record})
}

// handlePublishSkill handles POST /api/skills/{id}/publish
func (s *Server) handlePublishSkill(w http.ResponseWriter, r *http.Request) {
	record, err := s.catalog.Publish(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSONResponse(w, r, http.StatusOK, SkillResponse{Skill: record})
}

// handleExportSkills handles POST /api/skills/export
func (s *Server) handleExportSkills(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if _, err := s.catalog.Export(r.Context(), &buf, req.IDs); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="skills.zip"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.G(r.Context()).WithError(err).Warn("failed to write export archive")
	}
}

// handleAPINotFound answers unknown API paths with a JSON 404, or a 405
// when the path exists under a different method
func (s *Server) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	if allowed := s.allowedMethods(r); len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed.", nil)
		return
	}
	s.writeErrorResponse(w, r, http.StatusNotFound, "Not found.", nil)
}

var routeMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut}

// allowedMethods lists the methods a registered API route accepts for
// the request path
func (s *Server) allowedMethods(r *http.Request) []string {
	var allowed []string
	for _, method := range routeMethods {
		if method == r.Method {
			continue
		}
		req := r.Clone(r.Context())
		req.Method = method
		var match mux.RouteMatch
		if s.router.Match(req, &match) && match.MatchErr == nil && match.Route != s.apiFallback {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

// decodeJSON decodes the request body into v, mapping oversize and
// malformed bodies onto validation errors
func (s *Server) decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return skilltypes.NewError(skilltypes.KindValidation, "Request body too large.", err)
		}
		return skilltypes.NewError(skilltypes.KindValidation, "Invalid JSON body.", err)
	}
	return nil
}

// writeJSONResponse writes a JSON response
func (s *Server) writeJSONResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.G(r.Context()).WithError(err).Error("failed to encode JSON response")
	}
}

// writeError maps a domain error onto its status and public message
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := skilltypes.HTTPStatus(err)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		status = http.StatusRequestEntityTooLarge
	}
	s.writeErrorResponse(w, r, status, skilltypes.PublicMessage(err), err)
}

// writeErrorResponse writes an {"error": message} response and logs the
// underlying cause
func (s *Server) writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		entry := logger.G(r.Context()).WithError(err).WithField("status", status)
		if status >= http.StatusInternalServerError {
			entry.Error(message)
		} else {
			entry.Debug(message)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logger.G(r.Context()).WithError(err).Error("failed to encode error response")
	}
}
