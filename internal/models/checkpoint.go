package models

import "time"

// PipelineKind tags the two checkpoint variants.
type PipelineKind string

const (
	KindPost    PipelineKind = "post"
	KindPersona PipelineKind = "persona"
)

// Step names a pipeline stage. A checkpoint's Step is the next stage to
// run: everything before it already completed.
type Step string

const (
	StepContent Step = "content"
	StepImages  Step = "images"
	StepUpload  Step = "upload"

	StepPersona Step = "persona"
	StepVisuals Step = "visuals"
)

var stepOrder = map[PipelineKind][]Step{
	KindPost:    {StepContent, StepImages, StepUpload},
	KindPersona: {StepPersona, StepVisuals},
}

// StepIndex returns the position of step within kind's pipeline, or -1.
func StepIndex(kind PipelineKind, step Step) int {
	for i, s := range stepOrder[kind] {
		if s == step {
			return i
		}
	}
	return -1
}

// Steps returns the ordered stages of kind's pipeline.
func Steps(kind PipelineKind) []Step {
	return stepOrder[kind]
}

// GeneratedImage is one produced panel, kept in the checkpoint until
// upload succeeds.
type GeneratedImage struct {
	Data        []byte `json:"data"`
	MIMEType    string `json:"mimeType"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// Checkpoint is the durable record of pipeline progress, keyed uniquely
// by (Kind, OwnerID): at most one live checkpoint per key. Step only
// ever advances for the same key; the store overwrites blindly and the
// orchestrator enforces monotonicity.
type Checkpoint struct {
	Kind      PipelineKind `json:"kind"`
	OwnerID   string       `json:"ownerId"`
	OwnerName string       `json:"ownerName,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	Step      Step         `json:"step"`

	// Post pipeline payloads.
	Content *GeneratedTrend  `json:"content,omitempty"`
	Images  []GeneratedImage `json:"images,omitempty"`
	Grid    GridShape        `json:"grid,omitempty"`
	// ArticleID links the post back to the article it was sourced from.
	ArticleID string `json:"articleId,omitempty"`
	Niche     string `json:"niche,omitempty"`

	// Persona pipeline payloads.
	Persona        *Persona `json:"persona,omitempty"`
	SelectedVisual int      `json:"selectedVisual,omitempty"`
}

// Key identifies the checkpoint's storage slot.
func (c *Checkpoint) Key() CheckpointKey {
	return CheckpointKey{Kind: c.Kind, OwnerID: c.OwnerID}
}

// Expired reports whether the checkpoint is older than the staleness
// window and must be treated as absent.
func (c *Checkpoint) Expired(staleness time.Duration, now time.Time) bool {
	return now.Sub(c.CreatedAt) > staleness
}

type CheckpointKey struct {
	Kind    PipelineKind
	OwnerID string
}
