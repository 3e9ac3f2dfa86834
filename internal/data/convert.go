package data

import (
	"context"
	"net/http"
	"strconv"

	"famfin/internal/api"
	"famfin/internal/categories"
	"famfin/internal/core"
)

func memberToCore(m api.Member) core.Member {
	return core.Member{
		ID:   strconv.FormatInt(m.ID, 10),
		Name: m.Name,
		Role: m.Role,
	}
}

// txToCore converts a wire transaction to the UI shape. The wire category may
// carry its name inline; when it does not, the id is resolved through the
// cache, degrading to the fallback label.
func (s *Service) txToCore(ctx context.Context, t api.Transaction) core.Transaction {
	name := t.Category.Name
	if name == "" && t.Category.ID != 0 {
		name = s.categories.ResolveName(ctx, t.Category.ID)
	}
	if name == "" {
		name = categories.FallbackName
	}
	return core.Transaction{
		ID:          strconv.FormatInt(t.ID, 10),
		Type:        api.CoreType(t.TransactionType),
		Amount:      t.Amount,
		Category:    name,
		Description: t.Description,
		Date:        t.Date,
		MemberID:    strconv.FormatInt(t.MemberID, 10),
	}
}

// transactionInput builds the wire payload for a create or update, resolving
// the category name to its remote id. Fuel readings have no wire field and
// stay local only.
func (s *Service) transactionInput(ctx context.Context, t core.Transaction) (api.TransactionInput, error) {
	memberID, err := parseRemoteID(t.MemberID)
	if err != nil {
		return api.TransactionInput{}, err
	}
	categoryID, err := s.categories.ResolveID(ctx, t.Category)
	if err != nil {
		return api.TransactionInput{}, err
	}
	return api.TransactionInput{
		Amount:          t.Amount,
		Description:     t.Description,
		Date:            t.Date,
		TransactionType: api.WireType(t.Type),
		MemberID:        memberID,
		CategoryID:      categoryID,
	}, nil
}

// parseRemoteID converts a UI id to the integer the remote API expects. Ids
// the API could never have issued are reported as not found so the caller's
// failure handling treats them like any other missing remote record.
func parseRemoteID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, &api.StatusError{StatusCode: http.StatusNotFound, Message: "id " + id + " is not a remote id"}
	}
	return n, nil
}
