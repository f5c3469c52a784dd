package restapi

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, request{method: http.MethodPost, route: "/auth/login", path: "/auth/login", body: creds}, &resp)
	if err != nil {
		if isStatus(err, http.StatusUnauthorized, http.StatusBadRequest) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(err, "logging in")
	}
	if resp.Token == "" {
		return "", errors.New("login response carries no token")
	}
	return resp.Token, nil
}
