// Package handlers exposes the permission core over a minimal, framework
// free HTTP surface for operational use. Production request authorization
// is expected to call the checker in-process; these endpoints exist for
// administration and debugging.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/moklgydocs/mokpermissions/internal/entities"
	"github.com/moklgydocs/mokpermissions/internal/services"
	"github.com/moklgydocs/mokpermissions/internal/services/authorization"
	"github.com/moklgydocs/mokpermissions/internal/tenant"
)

// PermissionHandler serves check and grant-management requests.
type PermissionHandler struct {
	checker authorization.CheckerInterface
	manager services.PermissionManagerInterface
}

// NewPermissionHandler creates a handler over the composed checker and
// manager.
func NewPermissionHandler(checker authorization.CheckerInterface, manager services.PermissionManagerInterface) *PermissionHandler {
	return &PermissionHandler{checker: checker, manager: manager}
}

// Register attaches the handler's routes to mux.
func (h *PermissionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/check", h.handleCheck)
	mux.HandleFunc("POST /v1/grants", h.handleMutate)
	mux.HandleFunc("GET /v1/grants", h.handleList)
}

type checkRequest struct {
	TenantID    string   `json:"tenantId,omitempty"`
	UserID      string   `json:"userId,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	ClientID    string   `json:"clientId,omitempty"`
	Permissions []string `json:"permissions"`
}

type checkResponse struct {
	Results map[string]bool `json:"results"`
}

func (h *PermissionHandler) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Permissions) == 0 {
		http.Error(w, "permissions is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if req.TenantID != "" {
		ctx = tenant.Change(ctx, req.TenantID)
	}
	principal := &entities.Principal{
		UserID:        req.UserID,
		Roles:         req.Roles,
		ClientID:      req.ClientID,
		Authenticated: req.UserID != "" || req.ClientID != "",
	}

	results, err := h.checker.IsGrantedMany(ctx, principal, req.Permissions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{Results: results})
}

type mutateRequest struct {
	TenantID       string `json:"tenantId,omitempty"`
	PermissionName string `json:"permissionName"`
	ProviderName   string `json:"providerName"`
	ProviderKey    string `json:"providerKey"`
	Action         string `json:"action"` // "grant", "prohibit", "revoke"
}

func (h *PermissionHandler) handleMutate(w http.ResponseWriter, r *http.Request) {
	var req mutateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if req.TenantID != "" {
		ctx = tenant.Change(ctx, req.TenantID)
	}

	var err error
	switch req.Action {
	case "grant":
		err = h.manager.Grant(ctx, req.PermissionName, req.ProviderName, req.ProviderKey)
	case "prohibit":
		err = h.manager.Prohibit(ctx, req.PermissionName, req.ProviderName, req.ProviderKey)
	case "revoke":
		err = h.manager.Revoke(ctx, req.PermissionName, req.ProviderName, req.ProviderKey)
	default:
		http.Error(w, "action must be grant, prohibit or revoke", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PermissionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	providerName := query.Get("providerName")
	providerKey := query.Get("providerKey")

	ctx := r.Context()
	if tenantID := query.Get("tenantId"); tenantID != "" {
		ctx = tenant.Change(ctx, tenantID)
	}

	grants, err := h.manager.GetAll(ctx, providerName, providerKey)
	if err != nil {
		writeError(w, err)
		return
	}

	type grantView struct {
		PermissionName string `json:"permissionName"`
		Status         string `json:"status"`
	}
	views := make([]grantView, 0, len(grants))
	for _, g := range grants {
		views = append(views, grantView{PermissionName: g.PermissionName, Status: g.Status.String()})
	}
	writeJSON(w, http.StatusOK, views)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrUnknownPermission):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, entities.ErrInvalidHolderKey):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, entities.ErrStoreUnavailable):
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	default:
		log.Printf("ERROR: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("ERROR: failed to encode response: %v", err)
	}
}
