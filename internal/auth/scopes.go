package auth

// Known OAuth scopes.
const (
	ScopeFitnessWrite = "fitness:write"
	ScopeFitnessRead  = "fitness:read"
)

// DefaultScopes are granted to every password login.
var DefaultScopes = []string{ScopeFitnessRead, ScopeFitnessWrite}
