package mcp

import (
	"encoding/json"

	"github.com/mvp-joe/docmeta/internal/transform"
)

// TransformRequest holds the arguments of docmeta_transform. Batch may be
// sent as JSON text or as a structured array or object.
type TransformRequest struct {
	Batch    string `json:"batch" validate:"required"`
	Language string `json:"language,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	Workers  *int   `json:"workers,omitempty" validate:"omitempty,gte=0,lte=64"`
	Store    bool   `json:"store,omitempty"`
}

// TransformResponse is returned by the docmeta_transform tool.
type TransformResponse struct {
	Language    string                 `json:"language"`
	Strategy    string                 `json:"strategy"`
	Batch       json.RawMessage        `json:"batch"`
	Stats       transform.Stats        `json:"stats"`
	Diagnostics []transform.Diagnostic `json:"diagnostics"`
	BatchID     string                 `json:"batch_id,omitempty"` // set when the result was stored
}

// LanguagesResponse is returned by the docmeta_languages tool.
type LanguagesResponse struct {
	Languages  []string `json:"languages"`
	Strategies []string `json:"strategies"`
}

// BatchesRequest holds the arguments of docmeta_batches.
type BatchesRequest struct {
	Limit *int `json:"limit,omitempty" validate:"omitempty,gte=1,lte=100"`
}

// BatchDocsRequest holds the arguments of docmeta_batch_docs.
type BatchDocsRequest struct {
	BatchID string   `json:"batch_id" validate:"required"`
	Kinds   []string `json:"kinds,omitempty" validate:"dive,oneof=struct function"`
}

// StoredBatch is one row of the docmeta_batches listing.
type StoredBatch struct {
	BatchID         string `json:"batch_id"`
	Source          string `json:"source,omitempty"`
	Language        string `json:"language"`
	Strategy        string `json:"strategy"`
	RootCount       int    `json:"root_count"`
	NodeCount       int    `json:"node_count"`
	DiagnosticCount int    `json:"diagnostic_count"`
	CreatedAt       string `json:"created_at"`
}

// BatchesResponse is returned by the docmeta_batches tool.
type BatchesResponse struct {
	Batches []StoredBatch `json:"batches"`
	Total   int           `json:"total"`
}

// StoredNode is the stored text of one node.
type StoredNode struct {
	Path     string  `json:"path"`
	Kind     string  `json:"kind"`
	NodeName string  `json:"node_name,omitempty"`
	Content  *string `json:"content"`
}

// BatchDocsResponse is returned by the docmeta_batch_docs tool.
type BatchDocsResponse struct {
	Batch StoredBatch  `json:"batch"`
	Nodes []StoredNode `json:"nodes"`
}
