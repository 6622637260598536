package endpoints

import (
	"github.com/jackzampolin/promptdice/internal/api"
	"github.com/jackzampolin/promptdice/internal/dice"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	// Roller drives the standalone generate endpoint. Defaults to dice.DefaultRoller.
	Roller dice.Roller
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},

		// Standalone fill, independent of the session
		&GenerateEndpoint{Roller: cfg.Roller},

		// Prompt endpoints
		&GetPromptEndpoint{},
		&RollEndpoint{},
		&EditSlotEndpoint{},
		&CopyPromptEndpoint{},

		// History endpoints
		&ListHistoryEndpoint{},
		&CopyHistoryEndpoint{},

		// Dice endpoints
		&ListDiceEndpoint{},
		&AddValueEndpoint{},
		&UpdateValueEndpoint{},
		&DeleteValueEndpoint{},

		&ResetEndpoint{},

		// Swagger/OpenAPI endpoints
		&SwaggerEndpoint{},
		&SwaggerUIEndpoint{},

		// Static files (catch-all, must be last)
		&StaticEndpoint{},
	}
}
