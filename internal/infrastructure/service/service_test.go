package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edubase/edubase-client/internal/domain/content"
	"github.com/edubase/edubase-client/internal/domain/user"
	"github.com/edubase/edubase-client/internal/infrastructure/api"
	"github.com/edubase/edubase-client/internal/infrastructure/credentials"
	"github.com/edubase/edubase-client/pkg/retry"
)

func newTestAPI(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := api.DefaultConfig(srv.URL)
	cfg.Retry = retry.Config{MaxAttempts: 1}
	return api.NewClient(cfg, credentials.NewMemoryStore(), nil)
}

func TestSubjectService_ListUnwrapsEnvelope(t *testing.T) {
	client := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/subjects/", r.URL.Path)
		w.Write([]byte(`{"code": 0, "data": [{"id": 1, "name": "Math"}, {"id": 2, "name": "Physics"}]}`))
	}))

	subjects, err := NewSubjectService(client).List(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "Math", subjects[0].Name)
}

func TestSubjectService_CreateAndDelete(t *testing.T) {
	var method, path string
	client := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		if r.Method == http.MethodPost {
			var draft content.SubjectDraft
			require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
			json.NewEncoder(w).Encode(map[string]any{"id": 9, "name": draft.Name})
			return
		}
		w.Write([]byte(`{"code": 0}`))
	}))

	svc := NewSubjectService(client)

	created, err := svc.Create(context.Background(), content.SubjectDraft{Name: "Chemistry"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)
	assert.Equal(t, "Chemistry", created.Name)

	require.NoError(t, svc.Delete(context.Background(), 9))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/v1/subjects/9", path)
}

func TestQuestionService_ListBuildsFilterQuery(t *testing.T) {
	var query string
	client := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(`{"code": 0, "data": [{"id": 5, "title": "Quadratics"}], "total": 1, "page": 1, "size": 20, "pages": 1}`))
	}))

	questions, meta, err := NewQuestionService(client).List(context.Background(), QuestionFilter{
		SubjectID:  7,
		Type:       content.QuestionSingleChoice,
		Difficulty: 3,
		Keyword:    "roots",
		Page:       1,
		Size:       20,
	})
	require.NoError(t, err)
	require.Len(t, questions, 1)
	require.NotNil(t, meta)
	assert.Equal(t, 1, meta.Total)

	assert.Equal(t, "difficulty=3&keyword=roots&page=1&size=20&subject_id=7&type=single_choice", query)
}

func TestQuestionService_ListWithoutFilter(t *testing.T) {
	var raw string
	client := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw = r.URL.RawQuery
		w.Write([]byte(`{"code": 0, "data": []}`))
	}))

	_, meta, err := NewQuestionService(client).List(context.Background(), QuestionFilter{})
	require.NoError(t, err)
	assert.Nil(t, meta, "no pagination fields means no meta")
	assert.Empty(t, raw)
}

func TestKnowledgePointService_SubjectScopedPaths(t *testing.T) {
	var paths []string
	client := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPost {
			w.Write([]byte(`{"code": 0, "data": {"id": 42}}`))
			return
		}
		w.Write([]byte(`{"code": 0, "data": []}`))
	}))

	svc := NewKnowledgePointService(client)

	_, err := svc.ListBySubject(context.Background(), 3)
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), 3, "mean value")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), content.KnowledgePoint{Name: "Derivatives", SubjectID: 3})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 11))

	assert.Equal(t, []string{
		"GET /api/v1/subjects/3/knowledge-points",
		"GET /api/v1/subjects/3/knowledge-points",
		"POST /api/v1/subjects/3/knowledge-points",
		"DELETE /api/v1/knowledge-points/11",
	}, paths)
}

func TestKnowledgePointService_CreateRequiresSubject(t *testing.T) {
	svc := NewKnowledgePointService(newTestAPI(t, http.NewServeMux()))
	_, err := svc.Create(context.Background(), content.KnowledgePoint{Name: "Orphan"})
	require.Error(t, err)
}

type staticIdentity struct{ id *user.Identity }

func (s staticIdentity) CurrentUser() *user.Identity { return s.id }

func TestDashboardService_SummaryFansOut(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/subjects/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 0, "data": [{"id": 1, "name": "Math"}]}`))
	})
	mux.HandleFunc("/api/v1/questions/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 0, "data": [{"id": 2, "title": "Q"}], "total": 12, "page": 1, "size": 5, "pages": 3}`))
	})
	client := newTestAPI(t, mux)

	identity := staticIdentity{id: &user.Identity{ID: 1, Username: "alice"}}
	svc := NewDashboardService(identity, NewSubjectService(client), NewQuestionService(client))

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", summary.User.Username)
	assert.Len(t, summary.Subjects, 1)
	assert.Len(t, summary.RecentQuestions, 1)
	assert.Equal(t, 12, summary.QuestionTotal)
}

func TestDashboardService_SummaryPropagatesFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/subjects/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/v1/questions/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 0, "data": []}`))
	})
	client := newTestAPI(t, mux)

	svc := NewDashboardService(staticIdentity{}, NewSubjectService(client), NewQuestionService(client))

	_, err := svc.Summary(context.Background())
	assert.ErrorIs(t, err, api.ErrServer)
}
