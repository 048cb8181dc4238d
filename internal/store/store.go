// Package store persists per-user checklists as a single JSON document.
// The whole document is rewritten on every save; there is no write-ahead
// log or cross-process locking. A single bot process is assumed to be the
// only writer.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Task is one checklist entry. The JSON keys match the on-disk document:
// { ownerID: { checklistName: [ {"task": ..., "completed": ...} ] } }.
type Task struct {
	Description string `json:"task"`
	Completed   bool   `json:"completed"`
}

var (
	// ErrNotFound is returned when the named checklist does not exist.
	ErrNotFound = errors.New("checklist not found")
	// ErrAlreadyExists is returned when creating a checklist whose name
	// is already taken for that owner.
	ErrAlreadyExists = errors.New("checklist already exists")
	// ErrConflict is returned when sharing would overwrite a checklist
	// the target owner already has.
	ErrConflict = errors.New("target already has a checklist with that name")
	// ErrOutOfRange is returned when a task index does not exist.
	ErrOutOfRange = errors.New("task index out of range")
)

// Store holds every owner's checklists in memory and persists them to a
// single JSON file. The mutex guards concurrent command flows within this
// process; mutations never suspend mid-update, so flows only observe
// complete states.
type Store struct {
	mu   sync.RWMutex
	path string
	data map[string]map[string][]Task
}

// Open loads the checklist file at path. A missing file yields an empty
// store; a malformed file is an error and is never auto-repaired.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		data: make(map[string]map[string][]Task),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read checklist file: %w", err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parse checklist file %s: %w", path, err)
	}
	if s.data == nil {
		s.data = make(map[string]map[string][]Task)
	}
	return s, nil
}

// Path returns the file the store persists to.
func (s *Store) Path() string {
	return s.path
}

// Save writes the full document to disk using atomic write (temp file +
// rename), creating the parent directory if needed.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checklists: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Owners returns every owner ID present in the store, sorted.
func (s *Store) Owners() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owners := make([]string, 0, len(s.data))
	for owner := range s.data {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}

// Names returns the owner's checklist names, sorted. The sorted order is
// the stable order used everywhere a checklist menu is rendered.
func (s *Store) Names(owner string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lists := s.data[owner]
	names := make([]string, 0, len(lists))
	for name := range lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Checklists returns a deep copy of all of the owner's checklists, empty
// if the owner is unknown.
func (s *Store) Checklists(owner string) map[string][]Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]Task, len(s.data[owner]))
	for name, tasks := range s.data[owner] {
		result[name] = copyTasks(tasks)
	}
	return result
}

// Tasks returns a copy of the named checklist's task sequence.
func (s *Store) Tasks(owner, name string) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks, ok := s.data[owner][name]
	if !ok {
		return nil, ErrNotFound
	}
	return copyTasks(tasks), nil
}

// CreateChecklist adds an empty checklist for the owner.
func (s *Store) CreateChecklist(owner, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists := s.ownerLists(owner)
	if _, exists := lists[name]; exists {
		return ErrAlreadyExists
	}
	lists[name] = []Task{}
	return nil
}

// AppendTasks appends one task per description, in order, all incomplete.
func (s *Store) AppendTasks(owner, name string, descriptions []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, ok := s.data[owner][name]
	if !ok {
		return ErrNotFound
	}
	for _, desc := range descriptions {
		tasks = append(tasks, Task{Description: desc})
	}
	s.data[owner][name] = tasks
	return nil
}

// ToggleTask flips the completion state of the task at index and returns
// the new state. The change is in-memory only; callers persist explicitly.
func (s *Store) ToggleTask(owner, name string, index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, ok := s.data[owner][name]
	if !ok {
		return false, ErrNotFound
	}
	if index < 0 || index >= len(tasks) {
		return false, ErrOutOfRange
	}
	tasks[index].Completed = !tasks[index].Completed
	return tasks[index].Completed, nil
}

// ClearChecklist removes every task from the named checklist. Clearing an
// already-empty checklist is a no-op success.
func (s *Store) ClearChecklist(owner, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[owner][name]; !ok {
		return ErrNotFound
	}
	s.data[owner][name] = []Task{}
	return nil
}

// ShareChecklist copies the owner's checklist into the target owner's
// mapping. The copy is deep: later mutations on either side are invisible
// to the other. Fails with ErrConflict if the target already has a
// checklist of that name.
func (s *Store) ShareChecklist(owner, name, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, ok := s.data[owner][name]
	if !ok {
		return ErrNotFound
	}

	targetLists := s.ownerLists(target)
	if _, exists := targetLists[name]; exists {
		return ErrConflict
	}
	targetLists[name] = copyTasks(tasks)
	return nil
}

// ownerLists returns the owner's checklist map, creating it if absent.
// Callers must hold the write lock.
func (s *Store) ownerLists(owner string) map[string][]Task {
	lists, ok := s.data[owner]
	if !ok {
		lists = make(map[string][]Task)
		s.data[owner] = lists
	}
	return lists
}

func copyTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
