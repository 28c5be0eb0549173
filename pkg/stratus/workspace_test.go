package stratus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

func projects(names ...string) []stratus.Record {
	records := make([]stratus.Record, len(names))
	for i, name := range names {
		records[i] = stratus.Project{ID: "id-" + name, Name: name}
	}

	return records
}

func packages(names ...string) []stratus.Record {
	records := make([]stratus.Record, len(names))
	for i, name := range names {
		records[i] = stratus.Package{ID: "id-" + name, Name: name}
	}

	return records
}

func names(records []stratus.Record) []string {
	out := make([]string, len(records))
	for i, record := range records {
		out[i] = record.RecordName()
	}

	return out
}

func TestWorkspace_Filter(t *testing.T) {
	t.Parallel()
	t.Run("case-insensitive substring, order preserved", func(t *testing.T) {
		t.Parallel()

		ws := stratus.NewWorkspace()
		ws.ReplaceAll(stratus.KindProject, "", projects("Alpha", "Beta", "gamma"))

		ws.SetFilter(stratus.KindProject, "a")
		assert.Equal(t, []string{"Alpha", "Beta", "gamma"}, names(ws.Visible(stratus.KindProject)))

		ws.SetFilter(stratus.KindProject, "AL")
		assert.Equal(t, []string{"Alpha"}, names(ws.Visible(stratus.KindProject)))

		// The unfiltered collection is untouched.
		assert.Len(t, ws.All(stratus.KindProject), 3)
	})

	t.Run("empty filter restores the full view", func(t *testing.T) {
		t.Parallel()

		ws := stratus.NewWorkspace()
		ws.ReplaceAll(stratus.KindProject, "", projects("Alpha", "Beta"))

		ws.SetFilter(stratus.KindProject, "alpha")
		ws.SetFilter(stratus.KindProject, "")

		assert.Len(t, ws.Visible(stratus.KindProject), 2)
	})

	t.Run("filter persists across collection swaps", func(t *testing.T) {
		t.Parallel()

		ws := stratus.NewWorkspace()
		ws.SetFilter(stratus.KindProject, "plant")

		ws.ReplaceAll(stratus.KindProject, "", projects("Plant 4", "Office", "plant 9"))

		assert.Equal(t, []string{"Plant 4", "plant 9"}, names(ws.Visible(stratus.KindProject)))
	})
}

func TestWorkspace_Select(t *testing.T) {
	t.Parallel()
	t.Run("selection must be visible", func(t *testing.T) {
		t.Parallel()

		ws := stratus.NewWorkspace()
		ws.ReplaceAll(stratus.KindProject, "", projects("Alpha", "Beta"))
		ws.SetFilter(stratus.KindProject, "alpha")

		err := ws.Select(stratus.KindProject, "id-Beta")
		assert.ErrorIs(t, err, stratus.ErrRecordNotVisible)

		err = ws.Select(stratus.KindProject, "id-Alpha")
		require.NoError(t, err)
		assert.Equal(t, "id-Alpha", ws.SelectedID(stratus.KindProject))
	})

	t.Run("selected returns the record", func(t *testing.T) {
		t.Parallel()

		ws := stratus.NewWorkspace()
		ws.ReplaceAll(stratus.KindProject, "", projects("Alpha"))

		require.NoError(t, ws.Select(stratus.KindProject, "id-Alpha"))

		record, ok := ws.Selected(stratus.KindProject)
		require.True(t, ok)
		assert.Equal(t, "Alpha", record.RecordName())
	})
}

func TestWorkspace_Cascade(t *testing.T) {
	t.Parallel()
	t.Run("deselecting a project clears the whole subtree", func(t *testing.T) {
		t.Parallel()

		ws := stratus.NewWorkspace()
		ws.ReplaceAll(stratus.KindProject, "", projects("Alpha"))
		require.NoError(t, ws.Select(stratus.KindProject, "id-Alpha"))

		ws.ReplaceAll(stratus.KindPackage, "id-Alpha", packages("Pkg1"))
		require.NoError(t, ws.Select(stratus.KindPackage, "id-Pkg1"))

		cleared := ws.Deselect(stratus.KindProject)

		assert.ElementsMatch(t, []stratus.Kind{
			stratus.KindPackage,
			stratus.KindAssembly,
			stratus.KindPackageAttachment,
			stratus.KindAssemblyAttachment,
		}, cleared)
		assert.Empty(t, ws.SelectedID(stratus.KindPackage))
		assert.Empty(t, ws.All(stratus.KindPackage))
		assert.Empty(t, ws.ParentID(stratus.KindPackage))
	})

	t.Run("filtering out the selection cascades", func(t *testing.T) {
		t.Parallel()

		ws := stratus.NewWorkspace()
		ws.ReplaceAll(stratus.KindPackage, "id-proj", packages("Pkg1", "Pkg2"))
		require.NoError(t, ws.Select(stratus.KindPackage, "id-Pkg1"))

		ws.ReplaceAll(stratus.KindAssembly, "id-Pkg1", projects("Asm1"))

		outcome := ws.SetFilter(stratus.KindPackage, "pkg2")

		assert.False(t, outcome.SelectionKept)
		assert.Contains(t, outcome.Cleared, stratus.KindAssembly)
		assert.Empty(t, ws.SelectedID(stratus.KindPackage))
		assert.Empty(t, ws.All(stratus.KindAssembly))
	})

	t.Run("replacing a collection keeps a surviving selection", func(t *testing.T) {
		t.Parallel()

		ws := stratus.NewWorkspace()
		ws.ReplaceAll(stratus.KindPackage, "id-proj", packages("Pkg1", "Pkg2"))
		require.NoError(t, ws.Select(stratus.KindPackage, "id-Pkg1"))

		outcome := ws.ReplaceAll(stratus.KindPackage, "id-proj", packages("Pkg1", "Pkg3"))

		assert.True(t, outcome.SelectionKept)
		assert.Equal(t, "id-Pkg1", ws.SelectedID(stratus.KindPackage))
	})

	t.Run("replacing a collection drops a vanished selection", func(t *testing.T) {
		t.Parallel()

		ws := stratus.NewWorkspace()
		ws.ReplaceAll(stratus.KindPackage, "id-proj", packages("Pkg1"))
		require.NoError(t, ws.Select(stratus.KindPackage, "id-Pkg1"))

		outcome := ws.ReplaceAll(stratus.KindPackage, "id-proj", packages("Pkg2"))

		assert.False(t, outcome.SelectionKept)
		assert.NotEmpty(t, outcome.Cleared)
		assert.Empty(t, ws.SelectedID(stratus.KindPackage))
	})
}

func TestWorkspace_Snapshot(t *testing.T) {
	t.Parallel()

	ws := stratus.NewWorkspace()
	ws.ReplaceAll(stratus.KindPackage, "id-proj", packages("Pkg1"))
	require.NoError(t, ws.Select(stratus.KindPackage, "id-Pkg1"))

	ws.SetSnapshot(map[string]string{"name": "Pkg1", "status": "Active (0)"})

	snapshot := ws.Snapshot()
	require.NotNil(t, snapshot)
	assert.Equal(t, "Pkg1", snapshot["name"])

	// The copy does not alias the stored snapshot.
	snapshot["name"] = "mutated"
	assert.Equal(t, "Pkg1", ws.Snapshot()["name"])

	// Losing the package selection drops the snapshot.
	ws.Deselect(stratus.KindPackage)
	assert.Nil(t, ws.Snapshot())
}

func TestWorkspace_SnapshotCascade(t *testing.T) {
	t.Parallel()
	t.Run("deselecting the project drops the snapshot", func(t *testing.T) {
		t.Parallel()

		ws := stratus.NewWorkspace()
		ws.ReplaceAll(stratus.KindProject, "", projects("Alpha"))
		require.NoError(t, ws.Select(stratus.KindProject, "id-Alpha"))

		ws.ReplaceAll(stratus.KindPackage, "id-Alpha", packages("Pkg1"))
		require.NoError(t, ws.Select(stratus.KindPackage, "id-Pkg1"))
		ws.SetSnapshot(map[string]string{"name": "Pkg1"})

		ws.Deselect(stratus.KindProject)

		assert.Empty(t, ws.SelectedID(stratus.KindPackage))
		assert.Nil(t, ws.Snapshot())
	})

	t.Run("filtering out the project drops the snapshot", func(t *testing.T) {
		t.Parallel()

		ws := stratus.NewWorkspace()
		ws.ReplaceAll(stratus.KindProject, "", projects("Alpha", "Beta"))
		require.NoError(t, ws.Select(stratus.KindProject, "id-Alpha"))

		ws.ReplaceAll(stratus.KindPackage, "id-Alpha", packages("Pkg1"))
		require.NoError(t, ws.Select(stratus.KindPackage, "id-Pkg1"))
		ws.SetSnapshot(map[string]string{"name": "Pkg1"})

		outcome := ws.SetFilter(stratus.KindProject, "beta")

		assert.False(t, outcome.SelectionKept)
		assert.Nil(t, ws.Snapshot())
	})
}
