// Package service contains the typed resource services of the EduBase client.
// Each service is a thin wrapper that forwards parameters to its REST endpoints
// through the request pipeline; envelope handling, credential attachment and
// error policy all live in the pipeline, never here. After a mutation the
// caller refetches - services keep no local state.
package service

import (
	"context"
	"fmt"

	"github.com/edubase/edubase-client/internal/domain/content"
	"github.com/edubase/edubase-client/internal/infrastructure/api"
)

// SubjectService calls the subject endpoints.
type SubjectService struct {
	api *api.Client
}

// NewSubjectService creates a subject service over the pipeline.
func NewSubjectService(client *api.Client) *SubjectService {
	return &SubjectService{api: client}
}

// List fetches all subjects visible to the current user.
func (s *SubjectService) List(ctx context.Context) ([]content.Subject, error) {
	var subjects []content.Subject
	if err := s.api.Get(ctx, "/api/v1/subjects/", &subjects); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// Get fetches a single subject.
func (s *SubjectService) Get(ctx context.Context, id int64) (*content.Subject, error) {
	var subject content.Subject
	if err := s.api.Get(ctx, fmt.Sprintf("/api/v1/subjects/%d", id), &subject); err != nil {
		return nil, fmt.Errorf("get subject %d: %w", id, err)
	}
	return &subject, nil
}

// Create creates a subject and returns the stored record.
func (s *SubjectService) Create(ctx context.Context, draft content.SubjectDraft) (*content.Subject, error) {
	var subject content.Subject
	if err := s.api.Post(ctx, "/api/v1/subjects/", draft, &subject); err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return &subject, nil
}

// Update replaces a subject's mutable fields.
func (s *SubjectService) Update(ctx context.Context, id int64, draft content.SubjectDraft) (*content.Subject, error) {
	var subject content.Subject
	if err := s.api.Put(ctx, fmt.Sprintf("/api/v1/subjects/%d", id), draft, &subject); err != nil {
		return nil, fmt.Errorf("update subject %d: %w", id, err)
	}
	return &subject, nil
}

// Delete removes a subject.
func (s *SubjectService) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("/api/v1/subjects/%d", id)); err != nil {
		return fmt.Errorf("delete subject %d: %w", id, err)
	}
	return nil
}

// KnowledgeMap fetches the subject's knowledge graph.
func (s *SubjectService) KnowledgeMap(ctx context.Context, id int64) (*content.KnowledgeMap, error) {
	var m content.KnowledgeMap
	if err := s.api.Get(ctx, fmt.Sprintf("/api/v1/subjects/%d/knowledge-map", id), &m); err != nil {
		return nil, fmt.Errorf("get knowledge map for subject %d: %w", id, err)
	}
	return &m, nil
}
