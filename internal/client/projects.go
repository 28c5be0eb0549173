package client

import (
	"context"
	"fmt"

	"github.com/fabshop-io/stratus-client/internal/constants"
	"github.com/fabshop-io/stratus-client/internal/http"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

var projectIncludeFields = []string{"id", "name"}

// ProjectsClient implements stratus.ProjectsClient.
type ProjectsClient struct {
	httpClient *http.Client
	pageSize   int
}

// List lists all projects.
func (c *ProjectsClient) List(ctx context.Context, params *stratus.QueryParams) ([]stratus.Project, error) {
	params = defaultParams(params, c.pageSize, projectIncludeFields...)

	projects, err := listAll[stratus.Project](ctx, c.httpClient, constants.APIPathProject, params)
	if err != nil {
		return projects, fmt.Errorf("listing projects: %w", err)
	}

	return projects, nil
}
