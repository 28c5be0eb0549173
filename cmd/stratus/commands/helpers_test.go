package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

func TestFilterVisible(t *testing.T) {
	t.Parallel()

	items := []stratus.Project{
		{ID: "p1", Name: "Plant 4"},
		{ID: "p2", Name: "Office"},
		{ID: "p3", Name: "plant 9"},
	}

	t.Run("empty filter returns everything", func(t *testing.T) {
		t.Parallel()

		assert.Len(t, filterVisible(stratus.KindProject, items, ""), 3)
	})

	t.Run("substring match ignores case and keeps order", func(t *testing.T) {
		t.Parallel()

		filtered := filterVisible(stratus.KindProject, items, "PLANT")

		require.Len(t, filtered, 2)
		assert.Equal(t, "Plant 4", filtered[0].Name)
		assert.Equal(t, "plant 9", filtered[1].Name)
	})

	t.Run("no matches", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, filterVisible(stratus.KindProject, items, "warehouse"))
	})
}

func TestMatchRecord(t *testing.T) {
	t.Parallel()

	items := []stratus.Package{
		{ID: "pkg-1", Name: "Duct Run A"},
		{ID: "pkg-2", Name: "pkg-1"},
	}

	t.Run("id match wins over name match", func(t *testing.T) {
		t.Parallel()

		pkg, ok := matchRecord(items, "pkg-1")
		require.True(t, ok)
		assert.Equal(t, "pkg-1", pkg.ID)
	})

	t.Run("name match ignores case", func(t *testing.T) {
		t.Parallel()

		pkg, ok := matchRecord(items, "duct run a")
		require.True(t, ok)
		assert.Equal(t, "pkg-1", pkg.ID)
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()

		_, ok := matchRecord(items, "pkg-9")
		assert.False(t, ok)
	})
}

func TestContainsFold(t *testing.T) {
	t.Parallel()

	assert.True(t, containsFold("Crate 7", "crate"))
	assert.True(t, containsFold("Crate 7", ""))
	assert.False(t, containsFold("Crate 7", "pallet"))
}

func TestWarnOnPartialFetch(t *testing.T) {
	t.Parallel()

	assert.NoError(t, warnOnPartialFetch(nil))

	partial := &stratus.PartialFetchError{Pages: 2, Err: errors.New("boom")}
	assert.NoError(t, warnOnPartialFetch(partial))

	other := errors.New("hard failure")
	assert.ErrorIs(t, warnOnPartialFetch(other), other)
}
