package observability

import "github.com/kbukum/diagramkit/component"

// ServiceHealth is the body of the health endpoint.
type ServiceHealth struct {
	Service    string             `json:"service"`
	Status     string             `json:"status"`
	Version    string             `json:"version,omitempty"`
	Timestamp  string             `json:"timestamp"`
	Components []component.Health `json:"components,omitempty"`
}

// Overall health values.
const (
	HealthOK       = "OK"
	HealthDegraded = "DEGRADED"
	HealthDown     = "DOWN"
)

// NewServiceHealth creates a ServiceHealth with status OK.
func NewServiceHealth(service, version, timestamp string) *ServiceHealth {
	return &ServiceHealth{Service: service, Status: HealthOK, Version: version, Timestamp: timestamp}
}

// AddComponent adds a component result and lowers the overall status if needed.
func (sh *ServiceHealth) AddComponent(h component.Health) {
	sh.Components = append(sh.Components, h)

	switch h.Status {
	case component.StatusUnhealthy:
		sh.Status = HealthDown
	case component.StatusDegraded:
		if sh.Status != HealthDown {
			sh.Status = HealthDegraded
		}
	}
}
