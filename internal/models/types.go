package models

import "time"

type ItemKind string

const (
	KindContainer ItemKind = "container"
	KindLeaf      ItemKind = "leaf"
)

type RemoteItem struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Kind ItemKind `json:"kind"`
}

func (i RemoteItem) IsContainer() bool {
	return i.Kind == KindContainer
}

type FailureRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Error string `json:"error"`
	Phase string `json:"phase"`
}

type RunStatistics struct {
	Attempted int `json:"total_files"`
	Succeeded int `json:"successfully_copied_files"`
	Failed    int `json:"failed_files"`
}

type RunSummary struct {
	SourceID       string          `json:"source_id"`
	StagingRootID  string          `json:"staging_root_id,omitempty"`
	DestinationID  string          `json:"destination_id,omitempty"`
	Phase          string          `json:"phase"`
	Statistics     RunStatistics   `json:"statistics"`
	Relocated      int             `json:"relocated_files"`
	RelocateFailed int             `json:"relocate_failed_files"`
	Failures       []FailureRecord `json:"failures,omitempty"`
	ReportPath     string          `json:"report_path,omitempty"`
	StartTime      string          `json:"start_time"`
	EndTime        string          `json:"end_time"`
	Elapsed        string          `json:"elapsed"`
	Error          string          `json:"error,omitempty"`
}

type TreeInfo struct {
	RootID         string    `json:"root_id"`
	RootName       string    `json:"root_name"`
	ContainerCount int       `json:"container_count"`
	LeafCount      int       `json:"leaf_count"`
	MaxDepth       int       `json:"max_depth"`
	ScannedAt      time.Time `json:"scanned_at"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}
