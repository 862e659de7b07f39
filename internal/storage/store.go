package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/starstage/internal/scene"
)

var (
	ErrNotFound = errors.New("storage: document not found")
	ErrBadID    = errors.New("storage: invalid document name")
)

const (
	metadataFile = "metadata.json"
	sceneFile    = "scene.json"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Metadata summarises a stored document so List does not need to decode
// whole scenes.
type Metadata struct {
	ID         string    `json:"id"`
	Created    time.Time `json:"created"`
	Updated    time.Time `json:"updated"`
	Objects    int       `json:"objects"`
	Meshes     int       `json:"meshes"`
	Vertices   int       `json:"vertices"`
	Actions    int       `json:"actions"`
	FrameStart int       `json:"frame_start"`
	FrameEnd   int       `json:"frame_end"`
}

func checkID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrBadID, id)
	}
	return nil
}

func (s *Store) dir(id string) string {
	return filepath.Join(s.baseDir, id)
}

func (s *Store) Exists(id string) bool {
	_, err := os.Stat(filepath.Join(s.dir(id), sceneFile))
	return err == nil
}

// Save writes doc under its name, replacing an earlier version.
func (s *Store) Save(doc *scene.Document) (*Metadata, error) {
	if err := checkID(doc.Name); err != nil {
		return nil, err
	}
	dir := s.dir(doc.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	now := time.Now()
	meta := Metadata{
		ID:         doc.Name,
		Created:    now,
		Updated:    now,
		Objects:    len(doc.Objects),
		Meshes:     len(doc.Meshes),
		Actions:    len(doc.Actions),
		FrameStart: doc.FrameStart,
		FrameEnd:   doc.FrameEnd,
	}
	for _, m := range doc.Meshes {
		meta.Vertices += len(m.Vertices)
	}
	if old, err := s.Metadata(doc.Name); err == nil {
		meta.Created = old.Created
	}

	if err := writeJSON(filepath.Join(dir, sceneFile), doc); err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(dir, metadataFile), meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Load decodes the stored document id.
func (s *Store) Load(id string) (*scene.Document, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var doc scene.Document
	if err := readJSON(filepath.Join(s.dir(id), sceneFile), &doc); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	doc.Normalize()
	return &doc, nil
}

func (s *Store) Metadata(id string) (*Metadata, error) {
	var meta Metadata
	if err := readJSON(filepath.Join(s.dir(id), metadataFile), &meta); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return nil, err
	}
	return &meta, nil
}

// List returns the metadata of every stored document, newest first.
// Directories without readable metadata are skipped.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	docs := make([]Metadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Metadata(entry.Name())
		if err != nil {
			continue
		}
		docs = append(docs, *meta)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].Updated.Equal(docs[j].Updated) {
			return docs[i].Updated.After(docs[j].Updated)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

func (s *Store) Delete(id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if !s.Exists(id) {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return os.RemoveAll(s.dir(id))
}
