package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/edubase/edubase-client/internal/domain/content"
	"github.com/edubase/edubase-client/internal/infrastructure/api"
)

// QuestionService calls the question-bank endpoints.
type QuestionService struct {
	api *api.Client
}

// NewQuestionService creates a question service over the pipeline.
func NewQuestionService(client *api.Client) *QuestionService {
	return &QuestionService{api: client}
}

// QuestionFilter narrows a question listing.
type QuestionFilter struct {
	SubjectID  int64
	Type       content.QuestionType
	Difficulty int
	Keyword    string
	Page       int
	Size       int
}

func (f QuestionFilter) query() url.Values {
	params := url.Values{}
	if f.SubjectID > 0 {
		params.Set("subject_id", strconv.FormatInt(f.SubjectID, 10))
	}
	if f.Type != "" {
		params.Set("type", string(f.Type))
	}
	if f.Difficulty > 0 {
		params.Set("difficulty", strconv.Itoa(f.Difficulty))
	}
	if f.Keyword != "" {
		params.Set("keyword", f.Keyword)
	}
	if f.Page > 0 {
		params.Set("page", strconv.Itoa(f.Page))
	}
	if f.Size > 0 {
		params.Set("size", strconv.Itoa(f.Size))
	}
	return params
}

// List fetches questions matching the filter, with pagination meta when the
// backend provides it.
func (s *QuestionService) List(ctx context.Context, filter QuestionFilter) ([]content.Question, *api.Meta, error) {
	path := "/api/v1/questions/"
	if params := filter.query(); len(params) > 0 {
		path += "?" + params.Encode()
	}

	var questions []content.Question
	meta, err := s.api.GetList(ctx, path, &questions)
	if err != nil {
		return nil, nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, meta, nil
}

// Get fetches a single question.
func (s *QuestionService) Get(ctx context.Context, id int64) (*content.Question, error) {
	var question content.Question
	if err := s.api.Get(ctx, fmt.Sprintf("/api/v1/questions/%d", id), &question); err != nil {
		return nil, fmt.Errorf("get question %d: %w", id, err)
	}
	return &question, nil
}

// Create adds a question to the bank.
func (s *QuestionService) Create(ctx context.Context, draft content.QuestionDraft) (*content.Question, error) {
	var question content.Question
	if err := s.api.Post(ctx, "/api/v1/questions/", draft, &question); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return &question, nil
}

// Update replaces a question's mutable fields.
func (s *QuestionService) Update(ctx context.Context, id int64, draft content.QuestionDraft) (*content.Question, error) {
	var question content.Question
	if err := s.api.Put(ctx, fmt.Sprintf("/api/v1/questions/%d", id), draft, &question); err != nil {
		return nil, fmt.Errorf("update question %d: %w", id, err)
	}
	return &question, nil
}

// Delete removes a question.
func (s *QuestionService) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("/api/v1/questions/%d", id)); err != nil {
		return fmt.Errorf("delete question %d: %w", id, err)
	}
	return nil
}
