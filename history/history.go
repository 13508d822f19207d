// Package history records the outcome of every generation run.
package history

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sweetpotato0/chatbot-factory/chatbot"
)

// Record is one finished generation run
type Record struct {
	ID             string        `json:"id" bson:"_id"`
	RunID          string        `json:"run_id" bson:"run_id"`
	Name           string        `json:"name" bson:"name"`
	Type           string        `json:"type" bson:"type"`
	Success        bool          `json:"success" bson:"success"`
	Message        string        `json:"message" bson:"message"`
	FilesGenerated int           `json:"files_generated" bson:"files_generated"`
	OutputPath     string        `json:"output_path" bson:"output_path"`
	DockerImage    string        `json:"docker_image,omitempty" bson:"docker_image,omitempty"`
	ArtifactPrefix string        `json:"artifact_prefix,omitempty" bson:"artifact_prefix,omitempty"`
	Errors         []string      `json:"errors" bson:"errors"`
	Duration       time.Duration `json:"duration" bson:"duration"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
}

// Store persists generation records.
// List returns the newest records first; a limit <= 0 returns everything.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, limit int) ([]*Record, error)
	Close() error
}

// NewRecord builds a record from a request and its response.
func NewRecord(req *chatbot.GenerationRequest, resp *chatbot.GenerationResponse, runID string, duration time.Duration) *Record {
	rec := &Record{
		ID:        uuid.NewString(),
		RunID:     runID,
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	}
	if req != nil {
		rec.Name = req.Config.Name
		rec.Type = string(req.Config.ChatbotType)
	}
	if resp != nil {
		rec.Success = resp.Success
		rec.Message = resp.Message
		rec.FilesGenerated = len(resp.FilesGenerated)
		rec.OutputPath = resp.OutputPath
		rec.DockerImage = resp.DockerImage
		rec.Errors = append([]string(nil), resp.Errors...)
	}
	return rec
}

// Prepare fills a missing ID and timestamp. Stores call it before writing.
func Prepare(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
}

// SortNewestFirst orders records by creation time, newest first, and applies limit.
func SortNewestFirst(recs []*Record, limit int) []*Record {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
