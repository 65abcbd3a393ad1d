package endpoints

import (
	"github.com/syllacal/syllacal/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},
		&ParseEndpoint{},
		&ParseLLMEndpoint{},
		&ICSEndpoint{},
		&PreviewEndpoint{},
	}
}
