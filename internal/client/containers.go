package client

import (
	"context"
	"fmt"

	"github.com/fabshop-io/stratus-client/internal/constants"
	"github.com/fabshop-io/stratus-client/internal/http"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

var containerIncludeFields = []string{"id", "name", "description"}

// ContainersClient implements stratus.ContainersClient.
type ContainersClient struct {
	httpClient *http.Client
	pageSize   int
}

// List lists all containers.
func (c *ContainersClient) List(ctx context.Context, params *stratus.QueryParams) ([]stratus.Container, error) {
	params = defaultParams(params, c.pageSize, containerIncludeFields...)

	containers, err := listAll[stratus.Container](ctx, c.httpClient, constants.APIPathContainer, params)
	if err != nil {
		return containers, fmt.Errorf("listing containers: %w", err)
	}

	return containers, nil
}
