package archive

import "time"

// RecordVersion is the schema version written with every session record.
const RecordVersion = "1.0"

// SessionRecord is the archived copy of one chat session's transcript.
type SessionRecord struct {
	Version      string    `json:"version"`
	SessionID    string    `json:"session_id"`
	StartedAt    time.Time `json:"started_at"`
	ArchivedAt   time.Time `json:"archived_at"`
	MessageCount int       `json:"message_count"`
	Messages     []Message `json:"messages"`
}

// Message is a single transcript turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ManifestEntry is one JSONL line in the monthly manifest file.
type ManifestEntry struct {
	SessionID  string `json:"session_id"`
	S3Key      string `json:"s3_key"`
	StartedAt  string `json:"started_at"`
	ArchivedAt string `json:"archived_at"`
}
