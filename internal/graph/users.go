package graph

import (
	"context"
	"fmt"
	"net/url"
)

// userResponse mirrors the Graph API user JSON.
// Unexported — callers use User via toUser() normalization.
type userResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Mail        string `json:"mail"`
	// UPN is a fallback when mail is empty (common on accounts without
	// a mailbox).
	UPN string `json:"userPrincipalName"`
}

// toUser normalizes a Graph API user response into our User type.
func (u *userResponse) toUser() User {
	email := u.Mail
	if email == "" {
		email = u.UPN
	}

	return User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       email,
	}
}

// ListUsers returns every user in the tenant, following pagination.
// On a mid-sequence failure the users fetched so far are returned
// together with the error (partial result).
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	c.logger.Info("listing tenant users")

	raw, err := collectPages[userResponse](ctx, c, fmt.Sprintf("/users?$top=%d", pageSize))

	users := make([]User, 0, len(raw))
	for i := range raw {
		users = append(users, raw[i].toUser())
	}

	if err != nil {
		return users, fmt.Errorf("graph: listing users: %w", err)
	}

	c.logger.Info("listed tenant users",
		"count", len(users),
	)

	return users, nil
}

// FindUsersByEmail looks up users whose mail or UPN exactly matches the
// given address. An empty result with a nil error means no such user
// exists (deleted identities resolve this way).
func (c *Client) FindUsersByEmail(ctx context.Context, email string) ([]User, error) {
	c.logger.Info("looking up user by email",
		"email", email,
	)

	filter := fmt.Sprintf("mail eq '%s' or userPrincipalName eq '%s'", email, email)
	path := "/users?$filter=" + url.QueryEscape(filter)

	raw, err := collectPages[userResponse](ctx, c, path)
	if err != nil {
		return nil, fmt.Errorf("graph: filtering users by email: %w", err)
	}

	users := make([]User, 0, len(raw))
	for i := range raw {
		users = append(users, raw[i].toUser())
	}

	return users, nil
}
