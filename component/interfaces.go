package component

import "context"

// HealthStatus is the coarse state reported by Health.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is one component's entry in /health and the startup summary.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a piece of infrastructure the app starts before serving and
// stops on shutdown: the Redis store and the HTTP server.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is a component's line in the startup summary, e.g.
// {Name: "Redis", Type: "redis", Details: "localhost:6379 db=0 pool=10"}.
// Port, when set, is appended to Details unless already present.
type Description struct {
	Name    string
	Type    string
	Details string
	Port    int
}

// Describable is implemented by components that report their configuration
// in the startup summary.
type Describable interface {
	Describe() Description
}
