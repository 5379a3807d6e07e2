package platforms

import (
	"context"
	"strings"
)

// WebhookAdapter posts a flat JSON document to any HTTP endpoint. The
// optional target secret is sent as a bearer token.
type WebhookAdapter struct {
	client *HTTPClient
}

func NewWebhookAdapter(client *HTTPClient) *WebhookAdapter {
	return &WebhookAdapter{client: client}
}

func (a *WebhookAdapter) Name() string {
	return "webhook"
}

func (a *WebhookAdapter) Send(ctx context.Context, endpoint, secret string, msg Message) error {
	type jsonField struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	fields := make([]jsonField, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, jsonField{Name: f.Name, Value: f.Value})
	}
	payload := map[string]any{
		"title":       msg.Title,
		"content":     msg.Content,
		"description": msg.Description,
		"fields":      fields,
	}
	if msg.Timestamp != "" {
		payload["timestamp"] = msg.Timestamp
	}
	var headers map[string]string
	if s := strings.TrimSpace(secret); s != "" {
		headers = map[string]string{"Authorization": "Bearer " + s}
	}
	return a.client.PostJSON(ctx, endpoint, headers, payload)
}
