package services

import (
	"fmt"
	"sort"

	"github.com/lborres/facturo/core"
)

// Operation IDs. HTTP adapters bind their handlers by these names.
const (
	OpSignUp         = "signUpWithEmailAndPassword"
	OpSignIn         = "signInWithEmailAndPassword"
	OpSignOut        = "signOut"
	OpGetSession     = "getSession"
	OpListSessions   = "listSessions"
	OpRevokeSession  = "revokeSession"
	OpGetProfile     = "getProfile"
	OpUpdateProfile  = "updateProfile"
	OpChangePassword = "changePassword"
	OpDeleteAccount  = "deleteAccount"
	OpDashboard      = "getDashboard"
	OpHealth         = "health"
)

const (
	AuthBasePath  = "/api/auth"
	ProfilePath   = "/api/users/profile"
	DashboardPath = "/api/dashboard"
	HealthPath    = "/healthz"
)

// BaseEndpoints returns framework-agnostic endpoint definitions for the
// whole HTTP surface. Protected endpoints require a session.
func BaseEndpoints() []core.Endpoint {
	return []core.Endpoint{
		{
			Path:   AuthBasePath + "/sign-up",
			Method: "POST",
			Metadata: core.EndpointMetadata{
				OperationID: OpSignUp,
				Description: "Sign up a user using email and password",
			},
		},
		{
			Path:   AuthBasePath + "/sign-in",
			Method: "POST",
			Metadata: core.EndpointMetadata{
				OperationID: OpSignIn,
				Description: "Sign in a user using email and password",
			},
		},
		{
			Path:      AuthBasePath + "/sign-out",
			Method:    "POST",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpSignOut,
				Description: "Sign out the current user and invalidate the session",
			},
		},
		{
			Path:      AuthBasePath + "/session",
			Method:    "GET",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpGetSession,
				Description: "Get the current user's session data",
			},
		},
		{
			Path:      AuthBasePath + "/list-sessions",
			Method:    "GET",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpListSessions,
				Description: "List the current user's active sessions",
			},
		},
		{
			Path:      AuthBasePath + "/revoke-session",
			Method:    "POST",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpRevokeSession,
				Description: "Revoke one of the current user's sessions by ID",
			},
		},
		{
			Path:      ProfilePath,
			Method:    "GET",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpGetProfile,
				Description: "Read the current user's profile and linked providers",
			},
		},
		{
			Path:      ProfilePath,
			Method:    "PUT",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpUpdateProfile,
				Description: "Update the current user's name and/or avatar",
			},
		},
		{
			Path:      ProfilePath,
			Method:    "POST",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpChangePassword,
				Description: "Change the current user's password",
			},
		},
		{
			Path:      ProfilePath,
			Method:    "DELETE",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpDeleteAccount,
				Description: "Delete the current user's account",
			},
		},
		{
			Path:      DashboardPath,
			Method:    "GET",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpDashboard,
				Description: "Dashboard summary for the current user",
			},
		},
		{
			Path:   HealthPath,
			Method: "GET",
			Metadata: core.EndpointMetadata{
				OperationID: OpHealth,
				Description: "Liveness check",
			},
		},
	}
}

// EndpointRegistry manages a collection of framework-agnostic endpoints
// and rejects duplicate METHOD:PATH combinations.
type EndpointRegistry struct {
	endpoints map[string]*core.Endpoint // key: "METHOD:PATH"
}

// NewEndpointRegistry creates a registry with the base endpoints registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		endpoints: make(map[string]*core.Endpoint),
	}

	for _, ep := range BaseEndpoints() {
		ep := ep
		if err := reg.register(&ep); err != nil {
			panic(err)
		}
	}

	return reg
}

func endpointKey(ep *core.Endpoint) string {
	return fmt.Sprintf("%s:%s", ep.Method, ep.Path)
}

func (r *EndpointRegistry) register(ep *core.Endpoint) error {
	key := endpointKey(ep)
	if _, exists := r.endpoints[key]; exists {
		return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
	}
	r.endpoints[key] = ep
	return nil
}

// Endpoints returns all registered endpoints ordered by path, then method.
func (r *EndpointRegistry) Endpoints() []*core.Endpoint {
	result := make([]*core.Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		result = append(result, ep)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Path != result[j].Path {
			return result[i].Path < result[j].Path
		}
		return result[i].Method < result[j].Method
	})
	return result
}
