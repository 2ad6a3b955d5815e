package storage

import "time"

// timestampLayout is fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// BatchRecord is one stored transform run.
type BatchRecord struct {
	ID              string
	Source          string
	Language        string
	Strategy        string
	RootCount       int
	NodeCount       int
	ReplacedCount   int
	RetainedCount   int
	DiagnosticCount int
	Duration        time.Duration
	CreatedAt       time.Time
}

// NodeDoc is the documentation text stored for one node of a batch.
type NodeDoc struct {
	BatchID  string
	Seq      int
	Path     string
	Kind     string
	NodeName string
	Content  *string // nil when the node had no content
}

// DiagnosticRecord is one stored diagnostic of a batch.
type DiagnosticRecord struct {
	BatchID string
	Seq     int
	Kind    string
	Path    string
	Message string
}
