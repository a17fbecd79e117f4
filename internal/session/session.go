// Package session persists a conversation: its dataset, language and the
// ordered history of user, assistant and report turns.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
	"github.com/KaramelBytes/bizlens-cli/internal/prompt"
	"github.com/KaramelBytes/bizlens-cli/internal/report"
	"github.com/KaramelBytes/bizlens-cli/internal/utils"
)

const fileExt = ".json"

// ReportMessage is the text stored with report turns.
const ReportMessage = "Comprehensive Business Analysis Report Generated"

// ErrNotFound is returned when no session matches an ID.
var ErrNotFound = errors.New("session not found")

// Turn is one conversation entry. Report turns carry the structured report.
type Turn struct {
	Kind      prompt.TurnKind `json:"type"`
	Message   string          `json:"message"`
	Report    *report.Report  `json:"report,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Session is owned by one caller at a time; it is not safe for concurrent use.
type Session struct {
	ID          string           `json:"id"`
	Language    string           `json:"language"`
	DatasetPath string           `json:"dataset_path,omitempty"`
	Dataset     *dataset.Dataset `json:"dataset,omitempty"`
	History     []Turn           `json:"history"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Not serialized: directory holding the session file
	dir string `json:"-"`
}

// New constructs an in-memory session. Call Save() to persist.
func New(dir, language string) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Language:  language,
		CreatedAt: now,
		UpdatedAt: now,
		dir:       dir,
	}
}

// Load reads a session by full ID or unique ID prefix.
func Load(dir, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	path := filepath.Join(dir, id+fileExt)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		matches, _ := filepath.Glob(filepath.Join(dir, id+"*"+fileExt))
		switch len(matches) {
		case 0:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		case 1:
			path = matches[0]
		default:
			return nil, fmt.Errorf("session id %q is ambiguous (%d matches)", id, len(matches))
		}
	}
	return loadFile(path)
}

func loadFile(path string) (*Session, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", filepath.Base(path), err)
	}
	s.dir = filepath.Dir(path)
	return &s, nil
}

// Path returns the session file location.
func (s *Session) Path() string { return filepath.Join(s.dir, s.ID+fileExt) }

// Save writes the session file using atomic write.
func (s *Session) Save() error {
	if s.dir == "" {
		return errors.New("session directory not set")
	}
	s.UpdatedAt = time.Now()
	return utils.WriteJSON(s.Path(), s)
}

// SetDataset replaces the session dataset.
func (s *Session) SetDataset(ds *dataset.Dataset, path string) {
	s.Dataset = ds
	s.DatasetPath = path
	s.UpdatedAt = time.Now()
}

// Append records a plain turn and returns it.
func (s *Session) Append(kind prompt.TurnKind, message string) Turn {
	t := Turn{Kind: kind, Message: message, Timestamp: time.Now()}
	s.History = append(s.History, t)
	s.UpdatedAt = t.Timestamp
	return t
}

// AppendReport records a report turn.
func (s *Session) AppendReport(r report.Report) Turn {
	t := Turn{Kind: prompt.TurnReport, Message: ReportMessage, Report: &r, Timestamp: time.Now()}
	s.History = append(s.History, t)
	s.UpdatedAt = t.Timestamp
	return t
}

// PromptHistory converts the history for prompt assembly.
func (s *Session) PromptHistory() []prompt.Turn {
	out := make([]prompt.Turn, 0, len(s.History))
	for _, t := range s.History {
		out = append(out, prompt.Turn{Kind: t.Kind, Text: t.Message})
	}
	return out
}

// LastReport returns the most recent report, or nil.
func (s *Session) LastReport() *report.Report {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Report != nil {
			return s.History[i].Report
		}
	}
	return nil
}

// Summary is a listing entry.
type Summary struct {
	ID        string
	Language  string
	FileName  string
	Turns     int
	UpdatedAt time.Time
}

// List returns every session in dir, most recently updated first. A missing
// directory yields an empty list.
func List(dir string) ([]Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}
	var out []Summary
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		s, err := loadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		sum := Summary{ID: s.ID, Language: s.Language, Turns: len(s.History), UpdatedAt: s.UpdatedAt}
		if s.Dataset != nil {
			sum.FileName = s.Dataset.FileName
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
