// Package content contains the business-data models of the EduBase platform:
// subjects, questions and knowledge points. These mirror the backend response
// shapes; the client treats them as read-mostly records and refetches after
// every mutation instead of patching local copies.
package content

import "time"

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Subject is a course subject owned by a user.
type Subject struct {
	ID                   int64      `json:"id"`
	UserID               int64      `json:"user_id"`
	Name                 string     `json:"name"`
	Description          string     `json:"description,omitempty"`
	KnowledgePointsCount int        `json:"knowledge_points_count"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
}

// SubjectDraft is the payload for creating or updating a subject.
type SubjectDraft struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// QUESTIONS
// ══════════════════════════════════════════════════════════════════════════════

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single_choice"
	QuestionMultiChoice  QuestionType = "multiple_choice"
	QuestionFillBlank    QuestionType = "fill_blank"
	QuestionShortAnswer  QuestionType = "short_answer"
)

// QuestionStatus enumerates the lifecycle states of a question.
type QuestionStatus string

const (
	StatusDraft     QuestionStatus = "draft"
	StatusPublished QuestionStatus = "published"
	StatusArchived  QuestionStatus = "archived"
)

// Question is a single exercise item in the question bank.
type Question struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Type        QuestionType   `json:"type"`
	Difficulty  int            `json:"difficulty"`
	SubjectID   int64          `json:"subject_id,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
	Answer      map[string]any `json:"answer,omitempty"`
	Explanation string         `json:"explanation,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Source      string         `json:"source,omitempty"`
	Status      QuestionStatus `json:"status"`
	AuthorID    int64          `json:"author_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// QuestionDraft is the payload for creating or updating a question.
type QuestionDraft struct {
	Title             string         `json:"title"`
	Content           string         `json:"content"`
	Type              QuestionType   `json:"type"`
	Difficulty        int            `json:"difficulty"`
	SubjectID         int64          `json:"subject_id,omitempty"`
	Options           map[string]any `json:"options,omitempty"`
	Answer            map[string]any `json:"answer,omitempty"`
	Explanation       string         `json:"explanation,omitempty"`
	Tags              []string       `json:"tags,omitempty"`
	Source            string         `json:"source,omitempty"`
	Status            QuestionStatus `json:"status,omitempty"`
	KnowledgePointIDs []int64        `json:"knowledge_point_ids,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// KNOWLEDGE POINTS
// ══════════════════════════════════════════════════════════════════════════════

// KnowledgePoint is a node in a subject's knowledge graph.
type KnowledgePoint struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Difficulty  int    `json:"difficulty,omitempty"`
	SubjectID   int64  `json:"subject_id,omitempty"`
	CreatorID   int64  `json:"creator_id,omitempty"`
}

// KnowledgeEdge is a directed relation between two knowledge points.
type KnowledgeEdge struct {
	FromID   int64  `json:"from_id"`
	ToID     int64  `json:"to_id"`
	Relation string `json:"relation,omitempty"`
}

// KnowledgeMap is the graph of knowledge points for one subject.
type KnowledgeMap struct {
	SubjectID int64            `json:"subject_id"`
	Points    []KnowledgePoint `json:"points"`
	Edges     []KnowledgeEdge  `json:"edges,omitempty"`
}
