package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/edubase/edubase-client/internal/domain/content"
	"github.com/edubase/edubase-client/internal/domain/user"
)

// IdentitySource provides the authenticated user, if any.
type IdentitySource interface {
	CurrentUser() *user.Identity
}

// DashboardService assembles the landing-screen summary from several
// endpoints in one round.
type DashboardService struct {
	identity  IdentitySource
	subjects  *SubjectService
	questions *QuestionService
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(identity IdentitySource, subjects *SubjectService, questions *QuestionService) *DashboardService {
	return &DashboardService{identity: identity, subjects: subjects, questions: questions}
}

// Summary is the landing-screen data set.
type Summary struct {
	User            *user.Identity
	Subjects        []content.Subject
	RecentQuestions []content.Question
	QuestionTotal   int
}

// Summary fetches subjects and recent questions concurrently. The first
// failure cancels the remaining fetches and is returned; individual call
// errors were already classified and notified by the pipeline.
func (s *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	out := &Summary{User: s.identity.CurrentUser()}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		subjects, err := s.subjects.List(gctx)
		if err != nil {
			return err
		}
		out.Subjects = subjects
		return nil
	})

	g.Go(func() error {
		questions, meta, err := s.questions.List(gctx, QuestionFilter{Page: 1, Size: 5})
		if err != nil {
			return err
		}
		out.RecentQuestions = questions
		if meta != nil {
			out.QuestionTotal = meta.Total
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	return out, nil
}
