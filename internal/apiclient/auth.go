package apiclient

import (
	"context"
	"net/http"

	"pos-agent/internal/models"
)

func (c *Client) Login(ctx context.Context, body models.LoginRequest) (*models.MessageResponse, error) {
	req, err := JSONRequest(http.MethodPost, "/auth/login", body)
	if err != nil {
		return nil, err
	}
	var resp models.MessageResponse
	if err := c.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup registers a staff account; the profile picture is optional.
func (c *Client) Signup(ctx context.Context, body models.SignupRequest, picture *File) (*models.SignupResponse, error) {
	req, err := multipartRequest(http.MethodPost, "/auth/signup", []formField{
		{"email", body.Email},
		{"password", body.Password},
		{"firstName", body.FirstName},
		{"lastName", body.LastName},
		{"phoneNumber", body.PhoneNumber},
	}, map[string]*File{"profilePicture": picture})
	if err != nil {
		return nil, err
	}
	var resp models.SignupResponse
	if err := c.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	if err := c.Do(ctx, &Request{Method: http.MethodPost, Path: "/auth/logout"}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me probes the current user.
func (c *Client) Me(ctx context.Context) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := c.Do(ctx, &Request{Method: http.MethodGet, Path: "/auth/me"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
