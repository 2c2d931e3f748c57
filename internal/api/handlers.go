// Package api exposes the matching engine over HTTP: a public surface
// for resume upload, matching, skill gaps and suggestions, and a
// bearer-authenticated management surface for sessions and the profile.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kalambet/careersync/internal/docparse"
	"github.com/kalambet/careersync/internal/extract"
	"github.com/kalambet/careersync/internal/match"
	"github.com/kalambet/careersync/internal/profile"
	"github.com/kalambet/careersync/internal/recommend"
	"github.com/kalambet/careersync/internal/storage"
	"github.com/kalambet/careersync/internal/taxonomy"
)

const (
	defaultMaxUploadBytes = 10 << 20
	maxRequestBodySize    = 1 << 20
	resumePreviewChars    = 500
)

type AppDeps struct {
	Store     *storage.Store
	Profile   *profile.Manager
	Extractor *extract.Extractor
	Matcher   *match.Matcher
	Courses   *recommend.Catalog
	Taxonomy  *taxonomy.Taxonomy
	Token     string

	MaxUploadBytes int // 0 means defaultMaxUploadBytes
	HistoryLimit   int // sessions returned by the list endpoint
}

// NewEngineHandler serves the public matching surface.
func NewEngineHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/upload_resume", handleUploadResume(deps))
	r.Post("/match_jobs", handleMatchJobs(deps))
	r.Post("/get_skill_gap", handleSkillGap(deps))
	r.Post("/get_suggestions", handleSuggestions(deps))

	return r
}

// NewAppHandler serves the bearer-authenticated management surface.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(BearerAuth(deps.Token))

	r.Get("/sessions", handleListSessions(deps))
	r.Get("/sessions/{id}", handleGetSession(deps))
	r.Delete("/sessions/{id}", handleDeleteSession(deps))
	r.Get("/profile", handleGetProfile(deps))
	r.Post("/profile/skills", handleAddProfileSkill(deps))
	r.Delete("/profile/skills", handleClearProfileSkills(deps))
	r.Delete("/profile/skills/{name}", handleRemoveProfileSkill(deps))
	r.Put("/profile/preference", handleSetPreference(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func handleUploadResume(deps AppDeps) http.HandlerFunc {
	maxBytes := int64(deps.MaxUploadBytes)
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		file, header, err := r.FormFile("resume")
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "no resume file uploaded: %v", err)
			return
		}
		defer file.Close()

		text, err := docparse.Text(file, header.Size, header.Filename)
		if errors.Is(err, docparse.ErrUnsupportedFormat) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unsupported file format, expected .pdf or .docx")
			return
		}
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, "invalid_request_error", "could not read resume: %v", err)
			return
		}

		owned, err := deps.Profile.SkillNames()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load profile: %v", err)
			return
		}

		skills := deps.Extractor.Extract(text, owned)
		if _, err := deps.Profile.AddSkills(skills); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to update profile: %v", err)
			return
		}

		preview := truncatePreview(text, resumePreviewChars)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success":          true,
			"extracted_skills": skills,
			"resume_text":      preview,
		})
	}
}

type matchJobsRequest struct {
	Skills        []string `json:"skills"`
	JobPreference string   `json:"job_preference"`
}

func handleMatchJobs(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req matchJobsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(req.Skills) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "no skills provided")
			return
		}

		matches := deps.Matcher.Match(req.Skills)

		sessionID, err := saveSession(deps.Store, req, matches)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save session: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"job_matches": matches,
			"session_id":  sessionID,
		})
	}
}

func saveSession(store *storage.Store, req matchJobsRequest, matches []match.Match) (string, error) {
	skillsJSON, err := json.Marshal(req.Skills)
	if err != nil {
		return "", fmt.Errorf("marshalling skills: %w", err)
	}
	matchesJSON, err := json.Marshal(matches)
	if err != nil {
		return "", fmt.Errorf("marshalling matches: %w", err)
	}

	id := uuid.New().String()
	err = store.SaveSession(storage.Session{
		ID:            id,
		CreatedAt:     time.Now().UTC(),
		JobPreference: req.JobPreference,
		SkillsJSON:    string(skillsJSON),
		MatchesJSON:   string(matchesJSON),
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

type skillGapRequest struct {
	JobID  string   `json:"job_id"`
	Skills []string `json:"skills"`
}

func handleSkillGap(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req skillGapRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.JobID == "" || len(req.Skills) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "missing job_id or skills")
			return
		}

		gap, err := deps.Matcher.Gap(req.JobID, req.Skills)
		if errors.Is(err, match.ErrUnknownOccupation) {
			httpError(w, http.StatusNotFound, "not_found", "unknown occupation: %s", req.JobID)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to analyze skill gap: %v", err)
			return
		}

		missing := append([]string{}, gap.MissingSkills.Skills...)
		missing = append(missing, gap.MissingSkills.TechnologySkills...)
		courses := deps.Courses.Recommend(missing)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success":             true,
			"skill_gap":           gap,
			"recommended_courses": courses,
		})
	}
}

type suggestionsRequest struct {
	Query   string   `json:"query"`
	Exclude []string `json:"exclude"`
}

func handleSuggestions(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req suggestionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		suggestions := deps.Taxonomy.Suggest(req.Query, req.Exclude, 8)
		if suggestions == nil {
			suggestions = []string{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"suggestions": suggestions,
		})
	}
}

func handleListSessions(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", deps.HistoryLimit, 100)
		if limit <= 0 {
			limit = 50
		}

		sessions, err := deps.Store.ListSessions(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list sessions: %v", err)
			return
		}
		if sessions == nil {
			sessions = []storage.Session{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sessions)
	}
}

func handleGetSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		sess, err := deps.Store.GetSession(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get session: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sess)
	}
}

func handleDeleteSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := deps.Store.DeleteSession(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete session: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
	}
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skills, err := deps.Profile.Skills()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get profile: %v", err)
			return
		}
		pref, err := deps.Profile.JobPreference()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get job preference: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"skills":         skills,
			"job_preference": pref,
		})
	}
}

type addSkillRequest struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

func handleAddProfileSkill(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req addSkillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
			return
		}

		skill := extract.Skill{Name: req.Name, Category: req.Category, Confidence: req.Confidence}
		if skill.Category == "" {
			if c, ok := deps.Taxonomy.CategoryOf(req.Name); ok {
				skill.Category = c
			}
		}
		if skill.Confidence == 0 {
			skill.Confidence = 1 // user-declared skills are trusted
		}

		if err := deps.Profile.AddSkill(skill); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to add skill: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "added"})
	}
}

func handleClearProfileSkills(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Profile.ClearSkills(); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to clear skills: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "cleared"})
	}
}

func handleRemoveProfileSkill(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		err := deps.Profile.RemoveSkill(name)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "skill not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to remove skill: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "removed"})
	}
}

type preferenceRequest struct {
	JobPreference string `json:"job_preference"`
}

func handleSetPreference(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req preferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if err := deps.Profile.SetJobPreference(req.JobPreference); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to set job preference: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

// truncatePreview shortens s to at most n bytes without splitting a
// UTF-8 sequence, appending an ellipsis when anything was cut.
func truncatePreview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
