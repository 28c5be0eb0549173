package client

import (
	"context"
	"fmt"

	"github.com/fabshop-io/stratus-client/internal/constants"
	"github.com/fabshop-io/stratus-client/internal/http"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

var userIncludeFields = []string{"id", "firstName", "lastName", "email", "status"}

// UsersClient implements stratus.UsersClient.
type UsersClient struct {
	httpClient *http.Client
	pageSize   int
}

// List lists all users.
func (c *UsersClient) List(ctx context.Context, params *stratus.QueryParams) ([]stratus.User, error) {
	params = defaultParams(params, c.pageSize, userIncludeFields...)

	users, err := listAll[stratus.User](ctx, c.httpClient, constants.APIPathUser, params)
	if err != nil {
		return users, fmt.Errorf("listing users: %w", err)
	}

	return users, nil
}
