package api

import (
	"context"
	"fmt"
	"net/http"
)

// MembersAPI covers the /members endpoints.
type MembersAPI struct {
	c *Client
}

func (a *MembersAPI) GetAll(ctx context.Context) ([]Member, error) {
	var out []Member
	if err := a.c.do(ctx, http.MethodGet, "/members", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *MembersAPI) Create(ctx context.Context, name, role string) (Member, error) {
	body := map[string]string{"name": name, "role": role}
	var out Member
	if err := a.c.do(ctx, http.MethodPost, "/members", body, &out); err != nil {
		return Member{}, err
	}
	return out, nil
}

func (a *MembersAPI) Update(ctx context.Context, id int64, name, role string) (Member, error) {
	body := map[string]string{"name": name, "role": role}
	var out Member
	if err := a.c.do(ctx, http.MethodPut, fmt.Sprintf("/members/%d", id), body, &out); err != nil {
		return Member{}, err
	}
	return out, nil
}

func (a *MembersAPI) Delete(ctx context.Context, id int64) error {
	return a.c.do(ctx, http.MethodDelete, fmt.Sprintf("/members/%d", id), nil, nil)
}
