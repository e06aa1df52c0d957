// Package records persists finished interviews as JSON documents on disk,
// one file per interview, and serves them back to the recruiter commands.
package records

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/talent-scout/scout/internal/interview"
)

const filePrefix = "interview_"

// Record is the durable form of a concluded interview session.
type Record struct {
	ID        string                     `json:"interview_id"`
	Timestamp time.Time                  `json:"timestamp"`
	Candidate interview.CandidateProfile `json:"candidate"`
	Items     []interview.QAItem         `json:"questions_and_answers"`
	Summary   *interview.Summary         `json:"summary,omitempty"`
}

// FromSession snapshots a concluded session into a record.
func FromSession(s *interview.Session) *Record {
	return &Record{
		ID:        s.ID,
		Timestamp: s.StartedAt,
		Candidate: s.Profile,
		Items:     s.Items,
		Summary:   s.Summary,
	}
}

// Store reads and writes interview records under a single directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes the record as interview_<id>.json, creating the directory if
// needed. Files are written whole; partially written records are not a
// concern at this volume.
func (st *Store) Save(r *Record) (string, error) {
	if err := os.MkdirAll(st.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating records directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding record %s: %w", r.ID, err)
	}

	path := st.path(r.ID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing record %s: %w", r.ID, err)
	}

	return path, nil
}

// Load reads a single record by interview id.
func (st *Store) Load(id string) (*Record, error) {
	data, err := os.ReadFile(st.path(id))
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", id, err)
	}

	return &r, nil
}

// List returns all records, newest first. Files that fail to decode are
// skipped rather than failing the whole listing.
func (st *Store) List() ([]*Record, error) {
	entries, err := os.ReadDir(st.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading records directory: %w", err)
	}

	var out []*Record
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}

		id := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), ".json")
		r, err := st.Load(id)
		if err != nil {
			continue
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	return out, nil
}

func (st *Store) path(id string) string {
	return filepath.Join(st.dir, filePrefix+id+".json")
}
