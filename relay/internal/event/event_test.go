package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidEnvelope(t *testing.T) {
	data := []byte(`{
		"type": "UserWasNotified",
		"produced_at": "2025-06-01T12:00:00Z",
		"metadata": {
			"event_id": "evt-1",
			"aggregate_id": "u-1",
			"aggregate_type": "user",
			"correlation_id": "corr-1"
		},
		"payload": {"user_id": "u-1", "notification": {"id": "ntf-1"}}
	}`)

	env, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, TypeUserWasNotified, env.Type)
	assert.Equal(t, "evt-1", env.Metadata.EventID)
	assert.Equal(t, "corr-1", env.Metadata.CorrelationID)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), env.ProducedAt)
}

func TestParse_Garbage(t *testing.T) {
	_, err := Parse([]byte("not json at all"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParse_MissingType(t *testing.T) {
	_, err := Parse([]byte(`{"produced_at": "2025-06-01T12:00:00Z", "payload": {}}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParse_MissingProducedAt(t *testing.T) {
	_, err := Parse([]byte(`{"type": "UserWasNotified", "payload": {}}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_TypedPayload(t *testing.T) {
	env := &Envelope{
		Type:    TypeVideoWasChanged,
		Payload: json.RawMessage(`{"video_id": "v-1", "patch": {"name": "cut"}}`),
	}

	payload, err := Decode(env)
	require.NoError(t, err)

	changed, ok := payload.(VideoChanged)
	require.True(t, ok)
	assert.Equal(t, "v-1", changed.VideoID)
	assert.Equal(t, map[string]any{"name": "cut"}, changed.Patch)
}

func TestDecode_UnknownType(t *testing.T) {
	env := &Envelope{Type: Type("SomethingInternalHappened")}

	_, err := Decode(env)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDecode_WrongShape(t *testing.T) {
	env := &Envelope{
		Type:    TypeUserWasNotified,
		Payload: json.RawMessage(`{"user_id": 42}`),
	}

	_, err := Decode(env)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_EmptyPayload(t *testing.T) {
	env := &Envelope{Type: TypeVideoBecameOrphan}

	payload, err := Decode(env)
	require.NoError(t, err)
	assert.IsType(t, VideoTouched{}, payload)
}

func TestKnown(t *testing.T) {
	assert.True(t, Known(TypeBotWasDeployed))
	assert.False(t, Known(Type("BotWasTickled")))
}

func TestTypes_MatchDecoderTable(t *testing.T) {
	types := Types()
	assert.Len(t, types, len(decoders))
	for _, typ := range types {
		assert.True(t, Known(typ))
	}
}

func TestAge(t *testing.T) {
	now := time.Now()
	env := &Envelope{ProducedAt: now.Add(-10 * time.Second)}
	assert.Equal(t, 10*time.Second, env.Age(now))
}

func TestUserNotified_Accessors(t *testing.T) {
	p := UserNotified{Notification: map[string]any{"id": "ntf-1", "workspace_id": "ws-1"}}
	assert.Equal(t, "ntf-1", p.NotificationID())
	assert.Equal(t, "ws-1", p.NotificationWorkspaceID())

	empty := UserNotified{Notification: map[string]any{}}
	assert.Empty(t, empty.NotificationID())
	assert.Empty(t, empty.NotificationWorkspaceID())
}
