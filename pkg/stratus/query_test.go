package stratus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

func TestQueryParams(t *testing.T) {
	t.Parallel()
	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		params := stratus.NewQueryParams("id", "name")

		assert.Equal(t, stratus.DefaultPageSize, params.PageSize)
		assert.True(t, params.DisableTotal)
		assert.Equal(t, 0, params.Page)
	})

	t.Run("ToValues", func(t *testing.T) {
		t.Parallel()

		params := stratus.NewQueryParams("id", "name")
		params.Page = 2
		params.Where = "projectId eq 'proj-1'"

		values := params.ToValues()

		assert.Equal(t, "id,name", values.Get("include"))
		assert.Equal(t, "projectId eq 'proj-1'", values.Get("where"))
		assert.Equal(t, "2", values.Get("page"))
		assert.Equal(t, "1000", values.Get("pagesize"))
		assert.Equal(t, "true", values.Get("disabletotal"))
	})

	t.Run("page and pagesize are always sent", func(t *testing.T) {
		t.Parallel()

		values := (&stratus.QueryParams{}).ToValues()

		assert.Equal(t, "0", values.Get("page"))
		assert.Equal(t, "1000", values.Get("pagesize"))
		assert.Empty(t, values.Get("include"))
		assert.Empty(t, values.Get("disabletotal"))
	})

	t.Run("Clone is independent", func(t *testing.T) {
		t.Parallel()

		params := stratus.NewQueryParams("id")

		clone := params.Clone()
		clone.Page = 7
		clone.Include[0] = "name"

		assert.Equal(t, 0, params.Page)
		assert.Equal(t, "id", params.Include[0])
	})
}
