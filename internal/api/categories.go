package api

import (
	"context"
	"fmt"
	"net/http"
)

// CategoriesAPI covers the /categories endpoints.
type CategoriesAPI struct {
	c *Client
}

func (a *CategoriesAPI) GetAll(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := a.c.do(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *CategoriesAPI) Create(ctx context.Context, name string) (Category, error) {
	body := map[string]string{"name": name}
	var out Category
	if err := a.c.do(ctx, http.MethodPost, "/categories", body, &out); err != nil {
		return Category{}, err
	}
	return out, nil
}

func (a *CategoriesAPI) Update(ctx context.Context, id int64, name string) (Category, error) {
	body := Category{ID: id, Name: name}
	var out Category
	if err := a.c.do(ctx, http.MethodPut, fmt.Sprintf("/categories/%d", id), body, &out); err != nil {
		return Category{}, err
	}
	return out, nil
}

func (a *CategoriesAPI) Delete(ctx context.Context, id int64) error {
	return a.c.do(ctx, http.MethodDelete, fmt.Sprintf("/categories/%d", id), nil, nil)
}
