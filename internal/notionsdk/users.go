package notionsdk

import (
	"context"
)

const usersMePath = "/users/me"

// BotUser is the integration's own user object, used as a lightweight
// token validation probe.
type BotUser struct {
	Object string `json:"object,omitempty"`
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
}

// Me fetches the bot user behind the current token. A 401/403 here is the
// definitive signal that the token is no longer valid.
func (c *Client) Me(ctx context.Context) (user *BotUser, err error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetSuccessResult(&user).
		Get(usersMePath)

	if err := handleAPIError(res, err, "users me"); err != nil {
		return nil, err
	}

	return user, nil
}
