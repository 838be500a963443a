// Package progress persists per-upload categorization state as a single JSON
// file keyed by the upload's content hash. The whole file is rewritten on
// every mutation; writes go through a temp file and rename so a crash never
// leaves a half-written store.
package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/pkozlov/bucketeer/internal/common"
	"github.com/pkozlov/bucketeer/internal/model"
)

// RowState is the persisted state of one uploaded row.
type RowState struct {
	Data     map[string]string `json:"data"`
	Category string            `json:"category,omitempty"`
	Mapped   bool              `json:"mapped"`
}

// File is the on-disk progress document.
type File struct {
	FileName    string              `json:"file_name"`
	FileHash    string              `json:"file_hash"`
	LastUpdated string              `json:"last_updated"`
	Rows        map[string]RowState `json:"rows"`
	TotalRows   int                 `json:"total_rows"`
}

// Store reads and writes the progress file.
type Store struct {
	path string
}

// NewStore creates a store at path. The parent directory is created on the
// first save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the store's file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the progress file. A missing file yields an empty document.
func (s *Store) Load() (*File, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &File{Rows: make(map[string]RowState)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read progress file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse progress file: %w", err)
	}
	if f.Rows == nil {
		f.Rows = make(map[string]RowState)
	}
	return &f, nil
}

// Save writes the document atomically and stamps LastUpdated.
func (s *Store) Save(f *File) error {
	f.LastUpdated = time.Now().Format(time.RFC3339)

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create progress directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".progress-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace progress file: %w", err)
	}
	return nil
}

// Init registers an upload. Rows already mapped under the same content hash
// keep their confirmed state; a different hash resets the document.
func (s *Store) Init(fileName, fileHash string, rows []model.Row) (*File, error) {
	f, err := s.Load()
	if err != nil {
		return nil, err
	}

	if f.FileHash != fileHash {
		f.Rows = make(map[string]RowState)
	}
	f.FileName = fileName
	f.FileHash = fileHash
	f.TotalRows = len(rows)

	for _, row := range rows {
		key := strconv.Itoa(row.Index)
		if _, exists := f.Rows[key]; exists {
			continue
		}
		f.Rows[key] = RowState{Data: rowData(row)}
	}

	if err := s.Save(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Confirm records a confirmed category for the row. This is the only path
// that flips a row to mapped.
func (s *Store) Confirm(index int, categoryName string) (*File, error) {
	f, err := s.Load()
	if err != nil {
		return nil, err
	}

	key := strconv.Itoa(index)
	state, ok := f.Rows[key]
	if !ok {
		return nil, fmt.Errorf("row %d: %w", index, common.ErrNotFound)
	}

	state.Category = categoryName
	state.Mapped = true
	f.Rows[key] = state

	if err := s.Save(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Unmapped returns the rows still awaiting a confirmed category, ordered by
// index, restricted to rows eligible for categorization.
func (f *File) Unmapped() []model.Row {
	rows := f.rowList()
	out := rows[:0]
	for _, r := range rows {
		if !r.Mapped && r.Eligible() {
			out = append(out, r)
		}
	}
	return out
}

// AllRows returns every row ordered by index.
func (f *File) AllRows() []model.Row {
	return f.rowList()
}

// Row returns the row with the given index.
func (f *File) Row(index int) (model.Row, bool) {
	state, ok := f.Rows[strconv.Itoa(index)]
	if !ok {
		return model.Row{}, false
	}
	return toRow(index, state), true
}

func (f *File) rowList() []model.Row {
	indices := make([]int, 0, len(f.Rows))
	for key := range f.Rows {
		idx, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	rows := make([]model.Row, 0, len(indices))
	for _, idx := range indices {
		rows = append(rows, toRow(idx, f.Rows[strconv.Itoa(idx)]))
	}
	return rows
}

func toRow(index int, state RowState) model.Row {
	return model.Row{
		Index:       index,
		Date:        firstOf(state.Data, "date", "Date", "Transaction Date"),
		Amount:      firstOf(state.Data, "amount", "Amount"),
		Description: firstOf(state.Data, "description", "Description", "Memo"),
		Category:    state.Category,
		Mapped:      state.Mapped,
		Raw:         state.Data,
	}
}

func rowData(row model.Row) map[string]string {
	if len(row.Raw) > 0 {
		return row.Raw
	}
	return map[string]string{
		"date":        row.Date,
		"amount":      row.Amount,
		"description": row.Description,
	}
}

func firstOf(data map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := data[k]; v != "" {
			return v
		}
	}
	return ""
}
