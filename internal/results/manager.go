// Package results manages translation results on disk: metadata per
// document, the reconstructed output files, and resumable failure records.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Status represents the processing status of one document
type Status string

const (
	// StatusPending indicates processing has not started
	StatusPending Status = "pending"
	// StatusExtracted indicates elements have been extracted
	StatusExtracted Status = "extracted"
	// StatusTranslating indicates translation is in progress
	StatusTranslating Status = "translating"
	// StatusTranslated indicates translation is complete
	StatusTranslated Status = "translated"
	// StatusComplete indicates the output document has been rendered
	StatusComplete Status = "complete"
	// StatusError indicates processing stopped on an error
	StatusError Status = "error"
)

// DocumentInfo is the stored metadata for one processed document
type DocumentInfo struct {
	ID           string    `json:"id"`
	SourceName   string    `json:"source_name"`
	SourcePath   string    `json:"source_path"`
	OutputName   string    `json:"output_name,omitempty"`
	SourceLang   string    `json:"source_lang"`
	TargetLang   string    `json:"target_lang"`
	PageCount    int       `json:"page_count"`
	ElementCount int       `json:"element_count"`
	Status       Status    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	FailedPage   int       `json:"failed_page,omitempty"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// Manager stores results under one base directory: a subdirectory per
// document holding info.json, the element snapshot and the rendered output.
type Manager struct {
	baseDir string
}

// NewManager creates a Manager rooted at baseDir, creating it if needed.
// An empty baseDir selects "procrai-results" under the user home directory.
func NewManager(baseDir string) (*Manager, error) {
	if baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		baseDir = filepath.Join(homeDir, "procrai-results")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &Manager{baseDir: baseDir}, nil
}

// BaseDir returns the base directory for results
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// DocumentDir returns the directory for one document's artifacts
func (m *Manager) DocumentDir(id string) string {
	return filepath.Join(m.baseDir, sanitizeID(id))
}

// OutputPath returns the path where a document's rendered output lives
func (m *Manager) OutputPath(id, outputName string) string {
	return filepath.Join(m.DocumentDir(id), outputName)
}

// Save writes the document metadata
func (m *Manager) Save(info *DocumentInfo) error {
	dir := m.DocumentDir(info.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document info: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "info.json"), data, 0644)
}

// Load reads the metadata for one document
func (m *Manager) Load(id string) (*DocumentInfo, error) {
	data, err := os.ReadFile(filepath.Join(m.DocumentDir(id), "info.json"))
	if err != nil {
		return nil, err
	}

	info := &DocumentInfo{}
	if err := json.Unmarshal(data, info); err != nil {
		return nil, fmt.Errorf("failed to parse document info: %w", err)
	}
	return info, nil
}

// List returns all stored documents, most recent first
func (m *Manager) List() ([]*DocumentInfo, error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		return nil, err
	}

	var infos []*DocumentInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := m.Load(entry.Name())
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ProcessedAt.After(infos[j].ProcessedAt)
	})
	return infos, nil
}

// Exists reports whether a document has stored metadata
func (m *Manager) Exists(id string) bool {
	_, err := os.Stat(filepath.Join(m.DocumentDir(id), "info.json"))
	return err == nil
}

// Delete removes a document and all its artifacts
func (m *Manager) Delete(id string) error {
	return os.RemoveAll(m.DocumentDir(id))
}

// UpdateStatus records a status transition. Error details support resuming
// from the failed page.
func (m *Manager) UpdateStatus(id string, status Status, errorMsg string, failedPage int) error {
	info, err := m.Load(id)
	if err != nil {
		return err
	}
	info.Status = status
	info.ErrorMessage = errorMsg
	info.FailedPage = failedPage
	return m.Save(info)
}

// Incomplete returns documents whose processing did not reach completion,
// candidates for reprocessing.
func (m *Manager) Incomplete() ([]*DocumentInfo, error) {
	all, err := m.List()
	if err != nil {
		return nil, err
	}

	var incomplete []*DocumentInfo
	for _, info := range all {
		if info.Status != StatusComplete {
			incomplete = append(incomplete, info)
		}
	}
	return incomplete, nil
}

// sanitizeID makes an identifier safe as a directory name
func sanitizeID(id string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_")
	return r.Replace(id)
}
