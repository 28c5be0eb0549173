package client

import (
	"context"
	"fmt"

	"github.com/fabshop-io/stratus-client/internal/constants"
	"github.com/fabshop-io/stratus-client/internal/http"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

var packageIncludeFields = append([]string{"id"}, stratus.EditablePackageFields...)

// PackagesClient implements stratus.PackagesClient.
type PackagesClient struct {
	httpClient *http.Client
	pageSize   int
}

// ListByProject lists the packages of one project.
func (c *PackagesClient) ListByProject(ctx context.Context, projectID string, params *stratus.QueryParams) ([]stratus.Package, error) {
	params = defaultParams(params, c.pageSize, packageIncludeFields...).Clone()
	params.Where = fmt.Sprintf("projectId eq '%s'", projectID)

	packages, err := listAll[stratus.Package](ctx, c.httpClient, constants.APIPathPackage, params)
	if err != nil {
		return packages, fmt.Errorf("listing packages: %w", err)
	}

	return packages, nil
}

// UpdateProperties submits a partial property document keyed by package
// id. Attempted exactly once.
func (c *PackagesClient) UpdateProperties(ctx context.Context, patch map[string]any) error {
	_, err := c.httpClient.Patch(ctx, constants.APIPathPackageProperties, patch)
	if err != nil {
		return fmt.Errorf("updating package properties: %w", err)
	}

	return nil
}

// AssemblyCount counts the assemblies of one package by walking the
// listing with the narrowest projection.
func (c *PackagesClient) AssemblyCount(ctx context.Context, packageID string) (int, error) {
	params := stratus.NewQueryParams("id")
	if c.pageSize > 0 {
		params.PageSize = c.pageSize
	}

	path := fmt.Sprintf(constants.APIPathPackageAssemblies, packageID)

	assemblies, err := listAll[stratus.Assembly](ctx, c.httpClient, path, params)
	if err != nil {
		return len(assemblies), fmt.Errorf("counting assemblies: %w", err)
	}

	return len(assemblies), nil
}
