package controllers

import (
	"errors"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"

	"postpilot/internal/genai"
	"postpilot/internal/models"
	"postpilot/internal/providers"
	"postpilot/internal/services"
	"postpilot/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type PipelineController struct {
	logger   providers.Logger
	pipeline services.PipelineServiceInterface
	news     services.NewsServiceInterface
	docs     storage.DocumentStoreInterface
}

func NewPipelineController(logger providers.Logger, pipeline services.PipelineServiceInterface, news services.NewsServiceInterface, docs storage.DocumentStoreInterface) *PipelineController {
	return &PipelineController{
		logger:   logger,
		pipeline: pipeline,
		news:     news,
		docs:     docs,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// writeError maps a generation fault class to an HTTP status. Transient
// classes get statuses that tell the client to retry or resume.
func (pc *PipelineController) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var genErr *genai.Error
	if errors.As(err, &genErr) {
		switch genErr.Kind {
		case genai.KindQuota:
			status = http.StatusTooManyRequests
		case genai.KindTimeout:
			status = http.StatusGatewayTimeout
		case genai.KindNetwork, genai.KindParsing, genai.KindAuth:
			status = http.StatusBadGateway
		}
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

type createPostPayload struct {
	OwnerID     string `json:"ownerId"`
	Name        string `json:"name"`
	Personality string `json:"personality"`
	VisualStyle string `json:"visualStyle"`
	Niche       string `json:"niche"`
	Grid        string `json:"grid"`
	ArticleID   string `json:"articleId"`
}

func (pc *PipelineController) CreatePost(w http.ResponseWriter, r *http.Request) {
	var payload createPostPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.OwnerID == "" {
		http.Error(w, "ownerId is required", http.StatusBadRequest)
		return
	}

	post, err := pc.pipeline.RunPost(r.Context(), services.PostRequest{
		OwnerID: payload.OwnerID,
		Identity: models.Identity{
			ID:          payload.OwnerID,
			Name:        payload.Name,
			Personality: payload.Personality,
			VisualStyle: payload.VisualStyle,
		},
		Niche:     payload.Niche,
		Grid:      models.GridShape(payload.Grid),
		ArticleID: payload.ArticleID,
	})
	if err != nil {
		pc.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

type resumePayload struct {
	OwnerID string `json:"ownerId"`
}

func (pc *PipelineController) ResumePost(w http.ResponseWriter, r *http.Request) {
	var payload resumePayload
	if !decodeBody(w, r, &payload) {
		return
	}
	post, err := pc.pipeline.ResumePost(r.Context(), payload.OwnerID)
	if err != nil {
		pc.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

type createPersonaPayload struct {
	OwnerID        string `json:"ownerId"`
	Niche          string `json:"niche"`
	SelectedVisual int    `json:"selectedVisual"`
}

func (pc *PipelineController) CreatePersona(w http.ResponseWriter, r *http.Request) {
	var payload createPersonaPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.OwnerID == "" {
		http.Error(w, "ownerId is required", http.StatusBadRequest)
		return
	}

	influencer, err := pc.pipeline.RunPersona(r.Context(), services.PersonaRequest{
		OwnerID:        payload.OwnerID,
		Niche:          payload.Niche,
		SelectedVisual: payload.SelectedVisual,
	})
	if err != nil {
		pc.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, influencer)
}

func (pc *PipelineController) ResumePersona(w http.ResponseWriter, r *http.Request) {
	var payload resumePayload
	if !decodeBody(w, r, &payload) {
		return
	}
	influencer, err := pc.pipeline.ResumePersona(r.Context(), payload.OwnerID)
	if err != nil {
		pc.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, influencer)
}

func (pc *PipelineController) GetNews(w http.ResponseWriter, r *http.Request) {
	niche := r.URL.Query().Get("niche")
	if niche == "" {
		http.Error(w, "niche is required", http.StatusBadRequest)
		return
	}
	allowRetry := r.URL.Query().Get("retry") == "1"

	articles, err := pc.news.FetchNews(r.Context(), niche, allowRetry)
	if err != nil {
		pc.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (pc *PipelineController) GetPosts(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner")
	if ownerID == "" {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}

	posts, err := pc.docs.ListPosts(r.Context(), ownerID, limit)
	if err != nil {
		pc.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (pc *PipelineController) GetCheckpoints(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pc.pipeline.Checkpoints())
}

type discardPayload struct {
	Kind    string `json:"kind"`
	OwnerID string `json:"ownerId"`
}

func (pc *PipelineController) DiscardCheckpoint(w http.ResponseWriter, r *http.Request) {
	var payload discardPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	pc.pipeline.DiscardCheckpoint(models.CheckpointKey{
		Kind:    models.PipelineKind(payload.Kind),
		OwnerID: payload.OwnerID,
	})
	w.WriteHeader(http.StatusNoContent)
}
