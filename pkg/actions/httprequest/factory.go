package httprequest

import (
	"context"

	"github.com/calheira/conveyor/pkg/protocol"
)

type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

func (f *ActionFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Action, error) {
	return NewAction(id, config)
}

func (f *ActionFactory) ID() string {
	return "http_request"
}

func (f *ActionFactory) Name() string {
	return "HTTP Request"
}

func (f *ActionFactory) Description() string {
	return "Performs an HTTP request to a specified URL with optional headers, body and retries."
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The URL to send the HTTP request to. Supports templating with node outputs.",
				"examples": []string{
					"https://api.example.com/users",
					"https://api.example.com/users/{{.context.fetch_user.body.id}}",
				},
			},
			"method": map[string]any{
				"type":        "string",
				"description": "HTTP method to use",
				"default":     "GET",
				"enum":        []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "HTTP headers to include in the request. Values support templating.",
				"additionalProperties": map[string]any{
					"type": "string",
				},
			},
			"body": map[string]any{
				"type":        "string",
				"format":      "code",
				"description": "Request body content. Supports templating for dynamic JSON or text content.",
			},
			"timeout": map[string]any{
				"type":        "integer",
				"description": "Request timeout in seconds",
				"default":     30,
				"minimum":     1,
			},
			"retry": map[string]any{
				"type":        "object",
				"description": "Retry configuration for failed requests",
				"properties": map[string]any{
					"attempts": map[string]any{
						"type":        "integer",
						"description": "Total number of attempts",
						"default":     1,
						"minimum":     1,
						"maximum":     5,
					},
					"delay": map[string]any{
						"type":        "integer",
						"description": "Delay between attempts in milliseconds",
						"default":     1000,
						"minimum":     0,
					},
				},
			},
		},
		"required": []string{"url"},
	}
}
