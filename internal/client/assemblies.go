package client

import (
	"context"
	"fmt"

	"github.com/fabshop-io/stratus-client/internal/constants"
	"github.com/fabshop-io/stratus-client/internal/http"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

var assemblyIncludeFields = []string{"id", "name", "description"}

// AssembliesClient implements stratus.AssembliesClient.
type AssembliesClient struct {
	httpClient *http.Client
	pageSize   int
}

// ListByPackage lists the assemblies of one package.
func (c *AssembliesClient) ListByPackage(ctx context.Context, packageID string, params *stratus.QueryParams) ([]stratus.Assembly, error) {
	params = defaultParams(params, c.pageSize, assemblyIncludeFields...)

	path := fmt.Sprintf(constants.APIPathPackageAssemblies, packageID)

	assemblies, err := listAll[stratus.Assembly](ctx, c.httpClient, path, params)
	if err != nil {
		return assemblies, fmt.Errorf("listing assemblies: %w", err)
	}

	return assemblies, nil
}
