package http

import (
	"net/http"
	"strconv"

	"famfin/internal/core"
)

type memberPayload struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

type transactionPayload struct {
	Type        *string      `json:"type"`
	Amount      *float64     `json:"amount"`
	Category    *string      `json:"category"`
	Description *string      `json:"description"`
	Date        *string      `json:"date"`
	MemberID    *string      `json:"memberId"`
	FuelData    *fuelPayload `json:"fuelData"`
}

type fuelPayload struct {
	Liters     float64 `json:"liters"`
	Kilometers float64 `json:"kilometers"`
}

type fuelEntryPayload struct {
	Liters      float64 `json:"liters"`
	Kilometers  float64 `json:"kilometers"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	MemberID    string  `json:"memberId"`
	Description string  `json:"description"`
}

type categoryPayload struct {
	Name string `json:"name"`
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.svc.Members(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if members == nil {
		members = []core.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var p memberPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	saved, err := s.svc.SaveMember(r.Context(), core.Member{Name: deref(p.Name), Role: deref(p.Role)})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var p memberPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	upd := core.MemberUpdate{Name: p.Name, Role: p.Role}
	if err := s.svc.UpdateMember(r.Context(), r.PathValue("id"), upd); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteMember(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.Transactions(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var p transactionPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	tx := core.Transaction{
		Type:        core.TransactionType(deref(p.Type)),
		Amount:      deref(p.Amount),
		Category:    deref(p.Category),
		Description: deref(p.Description),
		Date:        deref(p.Date),
		MemberID:    deref(p.MemberID),
	}
	if p.FuelData != nil {
		fd, err := core.NewFuelData(p.FuelData.Liters, p.FuelData.Kilometers)
		if err != nil {
			respondError(w, r, err)
			return
		}
		tx.FuelData = &fd
	}
	saved, err := s.svc.SaveTransaction(r.Context(), tx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleCreateFuelEntry(w http.ResponseWriter, r *http.Request) {
	var p fuelEntryPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	saved, err := s.svc.SaveFuelEntry(r.Context(), p.Liters, p.Kilometers, p.Amount, p.Date, p.MemberID, p.Description)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var p transactionPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	upd := core.TransactionUpdate{
		Amount:      p.Amount,
		Category:    p.Category,
		Description: p.Description,
		Date:        p.Date,
		MemberID:    p.MemberID,
	}
	if p.Type != nil {
		t := core.TransactionType(*p.Type)
		if !t.IsValid() {
			respondError(w, r, core.ErrInvalidType)
			return
		}
		upd.Type = &t
	}
	if p.FuelData != nil {
		fd, err := core.NewFuelData(p.FuelData.Liters, p.FuelData.Kilometers)
		if err != nil {
			respondError(w, r, err)
			return
		}
		upd.FuelData = &fd
	}
	if err := s.svc.UpdateTransaction(r.Context(), r.PathValue("id"), upd); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Categories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	var p categoryPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := s.svc.RenameCategory(r.Context(), id, p.Name); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	if err := s.svc.DeleteCategory(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSummary totals all transactions, or one month when year and month
// query parameters are both present.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	yearStr := r.URL.Query().Get("year")
	monthStr := r.URL.Query().Get("month")

	var (
		sum core.Summary
		err error
	)
	if yearStr != "" || monthStr != "" {
		year, yerr := strconv.Atoi(yearStr)
		month, merr := strconv.Atoi(monthStr)
		if yerr != nil || merr != nil || month < 1 || month > 12 {
			writeError(w, http.StatusBadRequest, "invalid year or month")
			return
		}
		sum, err = s.svc.MonthSummary(r.Context(), year, month)
	} else {
		sum, err = s.svc.Summary(r.Context())
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
