// Package seeder generates realistic fake domain events for exercising the
// relay pipeline during development.
package seeder

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// Envelope mirrors the wire format of a domain event as the write side
// publishes it.
type Envelope struct {
	Type       string         `json:"type"`
	ProducedAt time.Time      `json:"produced_at"`
	Metadata   Metadata       `json:"metadata"`
	Payload    map[string]any `json:"payload"`
}

// Metadata mirrors the event-sourcing context fields.
type Metadata struct {
	EventID       string `json:"event_id"`
	AggregateID   string `json:"aggregate_id"`
	AggregateType string `json:"aggregate_type"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Marshal serializes the envelope for publishing.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

type generator struct {
	aggregateType string
	payload       func() map[string]any
}

// generators lists the event types the seeder can fabricate, with payloads
// shaped like the real producers'.
var generators = map[string]generator{
	"UserWasNotified": {
		aggregateType: "user",
		payload: func() map[string]any {
			return map[string]any{
				"user_id": uuid.NewString(),
				"notification": map[string]any{
					"id":           uuid.NewString(),
					"workspace_id": uuid.NewString(),
					"kind":         gofakeit.RandomString([]string{"mention", "comment", "share"}),
					"message":      gofakeit.Sentence(8),
					"created_at":   time.Now().UTC().Format(time.RFC3339),
				},
			}
		},
	},
	"UserWasRegisteredByEmail": {
		aggregateType: "user",
		payload: func() map[string]any {
			return map[string]any{
				"user_id":         uuid.NewString(),
				"organization_id": "",
			}
		},
	},
	"UserProfileWasChanged": {
		aggregateType: "user",
		payload: func() map[string]any {
			return map[string]any{
				"user_id": uuid.NewString(),
				"patch": map[string]any{
					"job":      gofakeit.JobTitle(),
					"names":    map[string]any{"first": gofakeit.FirstName(), "last": gofakeit.LastName()},
					"portrait": gofakeit.URL(),
				},
			}
		},
	},
	"UserAccountWasChanged": {
		aggregateType: "user",
		payload: func() map[string]any {
			return map[string]any{
				"user_id": uuid.NewString(),
				"patch": map[string]any{
					"email":  gofakeit.Email(),
					"phone":  gofakeit.Phone(),
					"locale": gofakeit.RandomString([]string{"en", "fr", "de", "es"}),
				},
			}
		},
	},
	"OrganizationWasChanged": {
		aggregateType: "organization",
		payload: func() map[string]any {
			return map[string]any{
				"organization_id": uuid.NewString(),
				"patch": map[string]any{
					"name":     gofakeit.Company(),
					"location": gofakeit.City(),
					"logo":     gofakeit.URL(),
				},
			}
		},
	},
	"OrganizationWasCredited": {
		aggregateType: "organization",
		payload: func() map[string]any {
			return map[string]any{
				"organization_id": uuid.NewString(),
				"amount":          gofakeit.Number(100, 100000),
			}
		},
	},
	"WorkspaceWasCreated": {
		aggregateType: "workspace",
		payload: func() map[string]any {
			return map[string]any{
				"workspace_id":    uuid.NewString(),
				"created_at":      time.Now().UTC().Format(time.RFC3339),
				"creator_id":      uuid.NewString(),
				"organization_id": uuid.NewString(),
				"name":            gofakeit.ProductName(),
			}
		},
	},
	"WorkspaceWasChanged": {
		aggregateType: "workspace",
		payload: func() map[string]any {
			return map[string]any{
				"workspace_id": uuid.NewString(),
				"patch":        map[string]any{"name": gofakeit.ProductName()},
			}
		},
	},
	"VideoWasCreated": {
		aggregateType: "video",
		payload: func() map[string]any {
			return map[string]any{
				"video_id":     uuid.NewString(),
				"workspace_id": uuid.NewString(),
			}
		},
	},
	"VideoWasChanged": {
		aggregateType: "video",
		payload: func() map[string]any {
			return map[string]any{
				"video_id": uuid.NewString(),
				"patch": map[string]any{
					"name":        gofakeit.MovieName(),
					"state":       gofakeit.RandomString([]string{"draft", "generating", "ready"}),
					"description": gofakeit.Sentence(12),
				},
			}
		},
	},
	"VideoSocialPostWasScheduled": {
		aggregateType: "video",
		payload: func() map[string]any {
			return map[string]any{
				"video_id":        uuid.NewString(),
				"post_id":         uuid.NewString(),
				"by":              map[string]any{"user_id": uuid.NewString()},
				"network":         gofakeit.RandomString([]string{"youtube", "linkedin", "x"}),
				"remote_space_id": uuid.NewString(),
				"title":           gofakeit.Sentence(5),
				"description":     gofakeit.Sentence(12),
				"scheduled_for":   time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
			}
		},
	},
	"BotWasDeployed": {
		aggregateType: "bot",
		payload: func() map[string]any {
			return map[string]any{
				"auth_key":      uuid.NewString(),
				"creator_id":    uuid.NewString(),
				"created_at":    time.Now().UTC().Format(time.RFC3339),
				"flavor_id":     uuid.NewString(),
				"ip_address":    gofakeit.IPv4Address(),
				"license_id":    uuid.NewString(),
				"os_image_id":   uuid.NewString(),
				"server_id":     uuid.NewString(),
				"snapshot_id":   uuid.NewString(),
				"source_branch": gofakeit.RandomString([]string{"main", "develop", "release"}),
				"state":         "running",
				"name":          gofakeit.AppName(),
			}
		},
	},
	"LicenseWasCreated": {
		aggregateType: "license",
		payload: func() map[string]any {
			return map[string]any{
				"license_id": uuid.NewString(),
				"creator_id": uuid.NewString(),
				"created_at": time.Now().UTC().Format(time.RFC3339),
				"state":      "active",
				"email":      gofakeit.Email(),
				"password":   gofakeit.Password(true, true, true, false, false, 16),
			}
		},
	},
	"ParentTemplateWasCreated": {
		aggregateType: "parent_template",
		payload: func() map[string]any {
			return map[string]any{
				"parent_template_id": uuid.NewString(),
				"organization_id":    "",
			}
		},
	},
}

// Types returns the event types the seeder can generate, unordered.
func Types() []string {
	out := make([]string, 0, len(generators))
	for t := range generators {
		out = append(out, t)
	}
	return out
}

// Generate fabricates one envelope of the given event type. The event time
// is placed up to spread in the past with random jitter, so seeded batches
// look like organic traffic and exercise the freshness gate.
func Generate(eventType string, spread time.Duration) (Envelope, error) {
	gen, ok := generators[eventType]
	if !ok {
		return Envelope{}, fmt.Errorf("seeder: no generator for event type %q", eventType)
	}

	producedAt := time.Now().UTC()
	if spread > 0 {
		producedAt = producedAt.Add(-time.Duration(rand.Int63n(int64(spread))))
	}

	return Envelope{
		Type:       eventType,
		ProducedAt: producedAt,
		Metadata: Metadata{
			EventID:       uuid.NewString(),
			AggregateID:   uuid.NewString(),
			AggregateType: gen.aggregateType,
			CorrelationID: uuid.NewString(),
		},
		Payload: gen.payload(),
	}, nil
}

// GenerateRandom fabricates one envelope of a random supported type.
func GenerateRandom(spread time.Duration) Envelope {
	types := Types()
	env, _ := Generate(types[rand.Intn(len(types))], spread)
	return env
}
