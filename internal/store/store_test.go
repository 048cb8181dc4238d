package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "checklists.json"))
	require.NoError(t, err)
	return s
}

func TestOpenMissingFile(t *testing.T) {
	s := newStore(t)
	assert.Empty(t, s.Owners())
}

func TestOpenMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checklists.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestCreateChecklist(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.CreateChecklist("U1", "Groceries"))

	tasks, err := s.Tasks("U1", "Groceries")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreateChecklistDuplicate(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.CreateChecklist("U1", "Groceries"))
	err := s.CreateChecklist("U1", "Groceries")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// Same name under a different owner is fine.
	assert.NoError(t, s.CreateChecklist("U2", "Groceries"))
}

func TestAppendTasks(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateChecklist("U1", "Groceries"))

	require.NoError(t, s.AppendTasks("U1", "Groceries", []string{"milk", "eggs"}))
	require.NoError(t, s.AppendTasks("U1", "Groceries", []string{"milk"}))

	tasks, err := s.Tasks("U1", "Groceries")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "milk", tasks[0].Description)
	assert.Equal(t, "eggs", tasks[1].Description)
	assert.Equal(t, "milk", tasks[2].Description, "duplicates are preserved")
	for i, task := range tasks {
		assert.False(t, task.Completed, "task %d must start incomplete", i)
	}
}

func TestAppendTasksUnknownChecklist(t *testing.T) {
	s := newStore(t)
	err := s.AppendTasks("U1", "Nope", []string{"milk"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleTask(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateChecklist("U1", "Groceries"))
	require.NoError(t, s.AppendTasks("U1", "Groceries", []string{"milk"}))

	done, err := s.ToggleTask("U1", "Groceries", 0)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = s.ToggleTask("U1", "Groceries", 0)
	require.NoError(t, err)
	assert.False(t, done, "double toggle restores the original state")
}

func TestToggleTaskOutOfRange(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateChecklist("U1", "Groceries"))

	_, err := s.ToggleTask("U1", "Groceries", 0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = s.ToggleTask("U1", "Groceries", -1)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = s.ToggleTask("U1", "Nope", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearChecklist(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateChecklist("U1", "Groceries"))
	require.NoError(t, s.AppendTasks("U1", "Groceries", []string{"milk", "eggs"}))

	require.NoError(t, s.ClearChecklist("U1", "Groceries"))

	tasks, err := s.Tasks("U1", "Groceries")
	require.NoError(t, err, "clearing keeps the checklist itself")
	assert.Empty(t, tasks)

	// Clearing an already-empty checklist is a no-op success.
	assert.NoError(t, s.ClearChecklist("U1", "Groceries"))
}

func TestClearChecklistUnknown(t *testing.T) {
	s := newStore(t)
	assert.ErrorIs(t, s.ClearChecklist("U1", "Nope"), ErrNotFound)
}

func TestShareChecklist(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateChecklist("U1", "Groceries"))
	require.NoError(t, s.AppendTasks("U1", "Groceries", []string{"milk"}))

	require.NoError(t, s.ShareChecklist("U1", "Groceries", "U2"))

	got, err := s.Tasks("U2", "Groceries")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "milk", got[0].Description)

	// The copy is deep: mutating either side is invisible to the other.
	_, err = s.ToggleTask("U1", "Groceries", 0)
	require.NoError(t, err)
	got, err = s.Tasks("U2", "Groceries")
	require.NoError(t, err)
	assert.False(t, got[0].Completed)

	_, err = s.ToggleTask("U2", "Groceries", 0)
	require.NoError(t, err)
	require.NoError(t, s.AppendTasks("U2", "Groceries", []string{"extra"}))
	mine, err := s.Tasks("U1", "Groceries")
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestShareChecklistConflict(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateChecklist("U1", "Groceries"))
	require.NoError(t, s.AppendTasks("U1", "Groceries", []string{"milk"}))
	require.NoError(t, s.CreateChecklist("U2", "Groceries"))
	require.NoError(t, s.AppendTasks("U2", "Groceries", []string{"their task"}))

	err := s.ShareChecklist("U1", "Groceries", "U2")
	assert.ErrorIs(t, err, ErrConflict)

	// The target's checklist is untouched.
	theirs, err := s.Tasks("U2", "Groceries")
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "their task", theirs[0].Description)
}

func TestShareChecklistUnknownSource(t *testing.T) {
	s := newStore(t)
	assert.ErrorIs(t, s.ShareChecklist("U1", "Nope", "U2"), ErrNotFound)
}

func TestNamesSorted(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateChecklist("U1", "zeta"))
	require.NoError(t, s.CreateChecklist("U1", "alpha"))
	require.NoError(t, s.CreateChecklist("U1", "mid"))

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, s.Names("U1"))
	assert.Empty(t, s.Names("unknown"))
}

func TestChecklistsReturnsDeepCopy(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateChecklist("U1", "Groceries"))
	require.NoError(t, s.AppendTasks("U1", "Groceries", []string{"milk"}))

	all := s.Checklists("U1")
	require.Len(t, all, 1)
	all["Groceries"][0].Completed = true

	tasks, err := s.Tasks("U1", "Groceries")
	require.NoError(t, err)
	assert.False(t, tasks[0].Completed)

	assert.Empty(t, s.Checklists("unknown"))
}

func TestTasksReturnsCopy(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateChecklist("U1", "Groceries"))
	require.NoError(t, s.AppendTasks("U1", "Groceries", []string{"milk"}))

	tasks, err := s.Tasks("U1", "Groceries")
	require.NoError(t, err)
	tasks[0].Completed = true

	again, err := s.Tasks("U1", "Groceries")
	require.NoError(t, err)
	assert.False(t, again[0].Completed, "callers must not be able to mutate stored tasks")
}

func TestSaveAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "checklists.json")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.CreateChecklist("U1", "Groceries"))
	require.NoError(t, s.AppendTasks("U1", "Groceries", []string{"milk", "eggs"}))
	_, err = s.ToggleTask("U1", "Groceries", 1)
	require.NoError(t, err)
	require.NoError(t, s.Save())

	reopened, err := Open(path)
	require.NoError(t, err)

	tasks, err := reopened.Tasks("U1", "Groceries")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "milk", tasks[0].Description)
	assert.False(t, tasks[0].Completed)
	assert.Equal(t, "eggs", tasks[1].Description)
	assert.True(t, tasks[1].Completed)
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateChecklist("U1", "Groceries"))
	require.NoError(t, s.Save())

	_, err := os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
