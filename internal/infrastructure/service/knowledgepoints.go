package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/edubase/edubase-client/internal/domain/content"
	"github.com/edubase/edubase-client/internal/infrastructure/api"
)

// KnowledgePointService calls the knowledge-point endpoints. Points are
// created and listed underneath their subject; updates and deletes address
// them directly.
type KnowledgePointService struct {
	api *api.Client
}

// NewKnowledgePointService creates a knowledge-point service over the pipeline.
func NewKnowledgePointService(client *api.Client) *KnowledgePointService {
	return &KnowledgePointService{api: client}
}

// ListBySubject fetches all knowledge points of a subject.
func (s *KnowledgePointService) ListBySubject(ctx context.Context, subjectID int64) ([]content.KnowledgePoint, error) {
	var points []content.KnowledgePoint
	path := fmt.Sprintf("/api/v1/subjects/%d/knowledge-points", subjectID)
	if err := s.api.Get(ctx, path, &points); err != nil {
		return nil, fmt.Errorf("list knowledge points for subject %d: %w", subjectID, err)
	}
	return points, nil
}

// Get fetches a single knowledge point.
func (s *KnowledgePointService) Get(ctx context.Context, id int64) (*content.KnowledgePoint, error) {
	var point content.KnowledgePoint
	if err := s.api.Get(ctx, fmt.Sprintf("/api/v1/knowledge-points/%d", id), &point); err != nil {
		return nil, fmt.Errorf("get knowledge point %d: %w", id, err)
	}
	return &point, nil
}

// Search finds knowledge points of a subject by name.
func (s *KnowledgePointService) Search(ctx context.Context, subjectID int64, keyword string) ([]content.KnowledgePoint, error) {
	var points []content.KnowledgePoint
	path := fmt.Sprintf("/api/v1/subjects/%d/knowledge-points?keyword=%s", subjectID, url.QueryEscape(keyword))
	if err := s.api.Get(ctx, path, &points); err != nil {
		return nil, fmt.Errorf("search knowledge points for subject %d: %w", subjectID, err)
	}
	return points, nil
}

// Create adds a knowledge point under its subject.
func (s *KnowledgePointService) Create(ctx context.Context, point content.KnowledgePoint) (*content.KnowledgePoint, error) {
	if point.SubjectID == 0 {
		return nil, fmt.Errorf("create knowledge point: subject id required")
	}

	var created content.KnowledgePoint
	path := fmt.Sprintf("/api/v1/subjects/%d/knowledge-points", point.SubjectID)
	if err := s.api.Post(ctx, path, point, &created); err != nil {
		return nil, fmt.Errorf("create knowledge point: %w", err)
	}
	return &created, nil
}

// Update replaces a knowledge point's mutable fields.
func (s *KnowledgePointService) Update(ctx context.Context, id int64, point content.KnowledgePoint) (*content.KnowledgePoint, error) {
	var updated content.KnowledgePoint
	if err := s.api.Put(ctx, fmt.Sprintf("/api/v1/knowledge-points/%d", id), point, &updated); err != nil {
		return nil, fmt.Errorf("update knowledge point %d: %w", id, err)
	}
	return &updated, nil
}

// Delete removes a knowledge point.
func (s *KnowledgePointService) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("/api/v1/knowledge-points/%d", id)); err != nil {
		return fmt.Errorf("delete knowledge point %d: %w", id, err)
	}
	return nil
}
