package api

import (
	"net/http"
	"strconv"

	"github.com/sprite-ai/autotag/internal/config"
	"github.com/sprite-ai/autotag/internal/detect"
	"github.com/sprite-ai/autotag/internal/diff"
	"github.com/sprite-ai/autotag/internal/model"
	"github.com/sprite-ai/autotag/internal/version"
)

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Detectors ---

type detectorJSON struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	ChangeKind string `json:"produce_type_change"`
	Pattern    string `json:"pattern"`
}

func (s *Server) handleDetectors(w http.ResponseWriter, r *http.Request) {
	out := make([]detectorJSON, 0, s.detectors.Len())
	for _, d := range s.detectors.Detectors() {
		out = append(out, detectorJSON{
			Name:       d.Name(),
			Type:       d.Kind(),
			ChangeKind: d.ChangeKind().String(),
			Pattern:    d.Spec().Pattern,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"detectors": out})
}

// --- Classify ---

type commitJSON struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

type classifyRequest struct {
	Commits []commitJSON `json:"commits"`
	// Detectors is an optional YAML configuration replacing the server set.
	Detectors string `json:"detectors,omitempty"`
}

type triggerJSON struct {
	Detector string `json:"detector"`
	Kind     string `json:"kind"`
	Commit   string `json:"commit"`
	Head     string `json:"head"`
}

type classifyResponse struct {
	Kind     string        `json:"kind"`
	Summary  string        `json:"summary"`
	Commits  int           `json:"commits"`
	Triggers []triggerJSON `json:"triggers"`
}

func newClassifyResponse(commits int, res *detect.Result) classifyResponse {
	resp := classifyResponse{
		Kind:     res.Kind.String(),
		Summary:  res.Summary(),
		Commits:  commits,
		Triggers: []triggerJSON{},
	}
	for _, t := range res.Triggers {
		resp.Triggers = append(resp.Triggers, triggerJSON{
			Detector: t.Detector,
			Kind:     t.Kind.String(),
			Commit:   string(t.Commit.ID),
			Head:     t.Commit.Head(),
		})
	}
	return resp
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	set := s.detectors
	if req.Detectors != "" {
		var err error
		set, err = config.BuildDetectors([]byte(req.Detectors), s.log)
		if err != nil {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	commits := make([]model.Commit, 0, len(req.Commits))
	for i, c := range req.Commits {
		id := c.ID
		if id == "" {
			id = strconv.Itoa(i)
		}
		commits = append(commits, model.Commit{ID: model.CommitRef(id), Message: c.Message})
	}

	s.writeJSON(w, http.StatusOK, newClassifyResponse(len(commits), set.Evaluate(commits)))
}

// --- Bump ---

type bumpRequest struct {
	// Version is empty when no baseline exists.
	Version  string   `json:"version,omitempty"`
	Kind     string   `json:"kind"`
	Prefixes []string `json:"prefixes,omitempty"`
}

type bumpResponse struct {
	Current string `json:"current,omitempty"`
	Next    string `json:"next"`
	Kind    string `json:"kind"`
}

func (s *Server) handleBump(w http.ResponseWriter, r *http.Request) {
	var req bumpRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	kind, err := model.ParseChangeKind(req.Kind)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var current *version.Version
	if req.Version != "" {
		v, err := version.Parse(req.Version, req.Prefixes)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		current = &v
	}

	resp := bumpResponse{Next: version.Bump(current, kind).String(), Kind: kind.String()}
	if current != nil {
		resp.Current = current.String()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// --- Diff ---

type diffRequest struct {
	Diff string `json:"diff"`
}

type diffStatsJSON struct {
	Files   int `json:"files"`
	Added   int `json:"added"`
	Deleted int `json:"deleted"`
}

type diffResponse struct {
	Files   []*diff.File  `json:"files"`
	Stats   diffStatsJSON `json:"stats"`
	Summary string        `json:"summary"`
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req diffRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	if req.Diff == "" {
		s.writeError(w, http.StatusBadRequest, "diff is required")
		return
	}

	ds, err := diff.Parse(req.Diff)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "parsing diff: "+err.Error())
		return
	}

	files, added, deleted := ds.Stats()
	s.writeJSON(w, http.StatusOK, diffResponse{
		Files:   ds.Files,
		Stats:   diffStatsJSON{Files: files, Added: added, Deleted: deleted},
		Summary: ds.Summary(),
	})
}
