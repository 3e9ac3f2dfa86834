package api

import (
	"context"
	"fmt"
	"net/http"
)

// TransactionsAPI covers the /transactions endpoints.
type TransactionsAPI struct {
	c *Client
}

// GetAll walks every page of the transactions listing and returns the
// concatenation. The server sorts by date descending with id descending as
// tiebreak; pages are fetched one at a time because the total count is only
// known once a page reports it is the last.
func (a *TransactionsAPI) GetAll(ctx context.Context) ([]Transaction, error) {
	var all []Transaction
	for page := 0; ; page++ {
		path := fmt.Sprintf("/transactions?page=%d&size=%d&sort=date,desc&sort=id,desc", page, a.c.pageSize)
		var resp pagedResponse
		if err := a.c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Content...)
		if resp.Last {
			return all, nil
		}
	}
}

func (a *TransactionsAPI) GetByID(ctx context.Context, id int64) (Transaction, error) {
	var out Transaction
	if err := a.c.do(ctx, http.MethodGet, fmt.Sprintf("/transactions/%d", id), nil, &out); err != nil {
		return Transaction{}, err
	}
	return out, nil
}

func (a *TransactionsAPI) Create(ctx context.Context, in TransactionInput) (Transaction, error) {
	var out Transaction
	if err := a.c.do(ctx, http.MethodPost, "/transactions", in.body(0), &out); err != nil {
		return Transaction{}, err
	}
	return out, nil
}

func (a *TransactionsAPI) Update(ctx context.Context, id int64, in TransactionInput) (Transaction, error) {
	var out Transaction
	if err := a.c.do(ctx, http.MethodPut, fmt.Sprintf("/transactions/%d", id), in.body(id), &out); err != nil {
		return Transaction{}, err
	}
	return out, nil
}

func (a *TransactionsAPI) Delete(ctx context.Context, id int64) error {
	return a.c.do(ctx, http.MethodDelete, fmt.Sprintf("/transactions/%d", id), nil, nil)
}

// body builds the wire payload. The id rides along on updates only.
func (in TransactionInput) body(id int64) map[string]any {
	b := map[string]any{
		"amount":          in.Amount,
		"description":     in.Description,
		"date":            in.Date,
		"transactionType": in.TransactionType,
		"memberId":        in.MemberID,
		"category":        map[string]int64{"id": in.CategoryID},
	}
	if id != 0 {
		b["id"] = id
	}
	return b
}
