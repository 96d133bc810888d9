package models

import "time"

type Topic struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type TopicDetail struct {
	Topic
	Documents     []Document `json:"documents"`
	QuestionCount int        `json:"question_count"`
}

type DocumentStatus string

const (
	DocumentPending    DocumentStatus = "pending"
	DocumentProcessing DocumentStatus = "processing"
	DocumentReady      DocumentStatus = "ready"
	DocumentFailed     DocumentStatus = "failed"
)

type Document struct {
	ID         int64          `json:"id"`
	TopicID    int64          `json:"topic_id"`
	Filename   string         `json:"filename"`
	FilePath   string         `json:"-"`
	Content    string         `json:"-"`
	Status     DocumentStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	UploadedAt time.Time      `json:"uploaded_at"`
}
