package processor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywinf/relay-stack/common/logging"
	"github.com/keywinf/relay-stack/common/messaging"
	"github.com/keywinf/relay-stack/relay/internal/event"
	"github.com/keywinf/relay-stack/relay/internal/gate"
	"github.com/keywinf/relay-stack/relay/internal/projection"
	"github.com/keywinf/relay-stack/relay/internal/readmodel"
	"github.com/keywinf/relay-stack/relay/internal/recipient"
)

type fakeGateway struct {
	organizations map[string]*readmodel.Organization
	workspaces    map[string]*readmodel.Workspace
	users         map[string]*readmodel.User
	videos        map[string]*readmodel.Video

	err error
}

func (g *fakeGateway) Organization(_ context.Context, id string) (*readmodel.Organization, error) {
	return lookup(g.organizations, id, g.err)
}

func (g *fakeGateway) Workspace(_ context.Context, id string) (*readmodel.Workspace, error) {
	return lookup(g.workspaces, id, g.err)
}

func (g *fakeGateway) User(_ context.Context, id string) (*readmodel.User, error) {
	return lookup(g.users, id, g.err)
}

func (g *fakeGateway) Video(_ context.Context, id string) (*readmodel.Video, error) {
	return lookup(g.videos, id, g.err)
}

func (g *fakeGateway) ChildTemplate(_ context.Context, id string) (*readmodel.ChildTemplate, error) {
	return lookup(map[string]*readmodel.ChildTemplate{}, id, g.err)
}

func (g *fakeGateway) ParentTemplate(_ context.Context, id string) (*readmodel.ParentTemplate, error) {
	return lookup(map[string]*readmodel.ParentTemplate{}, id, g.err)
}

func (g *fakeGateway) License(_ context.Context, id string) (*readmodel.License, error) {
	return lookup(map[string]*readmodel.License{}, id, g.err)
}

func (g *fakeGateway) Members(_ context.Context, organizationID string) ([]readmodel.User, error) {
	if g.err != nil {
		return nil, g.err
	}
	org, ok := g.organizations[organizationID]
	if !ok {
		return nil, readmodel.ErrNotFound
	}
	members := make([]readmodel.User, 0, len(org.MemberIDs))
	for _, id := range org.MemberIDs {
		if u, ok := g.users[id]; ok {
			members = append(members, *u)
		}
	}
	return members, nil
}

func lookup[T any](m map[string]*T, id string, transportErr error) (*T, error) {
	if transportErr != nil {
		return nil, transportErr
	}
	v, ok := m[id]
	if !ok {
		return nil, readmodel.ErrNotFound
	}
	return v, nil
}

type fakeRoles struct {
	admins []string
	err    error
}

func (r *fakeRoles) FindUsersWithRole(context.Context, string) ([]string, error) {
	return r.admins, r.err
}

type fakePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func newTestProcessor(g *fakeGateway, roles *fakeRoles, pub *fakePublisher) *Processor {
	logger := logging.New(slog.LevelError, "json")
	resolver := recipient.NewResolver(g, roles, logger.Logger)
	waiter := projection.NewWaiter(2, time.Millisecond).WithSleep(
		func(context.Context, time.Duration) error { return nil })
	projector := projection.NewProjector(g, waiter, logger)
	return New(resolver, projector, gate.New(20*time.Second), pub, logger, 5*time.Second)
}

func marshalEnvelope(t *testing.T, typ event.Type, producedAt time.Time, payload any) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	data, err := json.Marshal(event.Envelope{
		Type:       typ,
		ProducedAt: producedAt,
		Metadata: event.Metadata{
			EventID:       "evt-1",
			AggregateID:   "agg-1",
			AggregateType: "user",
			CorrelationID: "corr-1",
		},
		Payload: raw,
	})
	require.NoError(t, err)
	return data
}

func TestProcess_RelaysFreshEvent(t *testing.T) {
	pub := &fakePublisher{}
	p := newTestProcessor(&fakeGateway{}, &fakeRoles{}, pub)

	data := marshalEnvelope(t, event.TypeUserWasNotified, time.Now(),
		event.UserNotified{UserID: "u-1", Notification: map[string]any{"id": "ntf-1"}})
	outcome, err := p.Process(context.Background(), data)

	require.NoError(t, err)
	assert.Equal(t, OutcomeRelayed, outcome)
	require.Len(t, pub.payloads, 1)
	assert.Equal(t, messaging.SubjectWebsocketDelivery, pub.subjects[0])

	var out OutboundEnvelope
	require.NoError(t, json.Unmarshal(pub.payloads[0], &out))
	assert.Equal(t, event.TypeUserWasNotified, out.Type)
	assert.Equal(t, "evt-1", out.Metadata.EventID)
	assert.Equal(t, []string{"u-1"}, out.Recipient.IDs())
	assert.Contains(t, out.Payload, "notification")
	assert.Contains(t, out.Payload, "cursor")
}

func TestProcess_BroadcastRecipientIsNull(t *testing.T) {
	pub := &fakePublisher{}
	p := newTestProcessor(&fakeGateway{}, &fakeRoles{}, pub)

	// Open registration has no organization: everyone sees it.
	data := marshalEnvelope(t, event.TypeUserWasRegisteredByEmail, time.Now(),
		event.UserRegisteredByEmail{UserID: "u-1"})
	outcome, err := p.Process(context.Background(), data)

	require.NoError(t, err)
	assert.Equal(t, OutcomeRelayed, outcome)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(pub.payloads[0], &raw))
	assert.Equal(t, "null", string(raw["recipient"]))
}

func TestProcess_SuppressesStaleEvent(t *testing.T) {
	pub := &fakePublisher{}
	p := newTestProcessor(&fakeGateway{}, &fakeRoles{}, pub)

	data := marshalEnvelope(t, event.TypeUserWasNotified, time.Now().Add(-time.Minute),
		event.UserNotified{UserID: "u-1", Notification: map[string]any{"id": "ntf-1"}})
	outcome, err := p.Process(context.Background(), data)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSuppressed, outcome)
	assert.Empty(t, pub.payloads)
}

func TestProcess_SuppressesWhenNobodyAuthorized(t *testing.T) {
	pub := &fakePublisher{}
	// Video missing from the read model: sharer resolution denies.
	p := newTestProcessor(&fakeGateway{}, &fakeRoles{}, pub)

	data := marshalEnvelope(t, event.TypeVideoSocialPostWasDiscarded, time.Now(),
		event.VideoSocialPostDiscarded{VideoID: "v-gone", PostID: "post-1"})
	outcome, err := p.Process(context.Background(), data)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSuppressed, outcome)
	assert.Empty(t, pub.payloads)
}

func TestProcess_SkipsUnroutedType(t *testing.T) {
	pub := &fakePublisher{}
	p := newTestProcessor(&fakeGateway{}, &fakeRoles{}, pub)

	data := marshalEnvelope(t, event.Type("SomethingInternalHappened"), time.Now(), nil)
	outcome, err := p.Process(context.Background(), data)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Empty(t, pub.payloads)
}

func TestProcess_MalformedEnvelope(t *testing.T) {
	p := newTestProcessor(&fakeGateway{}, &fakeRoles{}, &fakePublisher{})

	outcome, err := p.Process(context.Background(), []byte("not json"))

	require.Error(t, err)
	assert.Equal(t, OutcomeMalformed, outcome)
}

func TestProcess_MalformedPayload(t *testing.T) {
	p := newTestProcessor(&fakeGateway{}, &fakeRoles{}, &fakePublisher{})

	data, err := json.Marshal(map[string]any{
		"type":        string(event.TypeUserWasNotified),
		"produced_at": time.Now().Format(time.RFC3339),
		"metadata":    map[string]any{"event_id": "evt-1"},
		"payload":     map[string]any{"user_id": 42}, // wrong type
	})
	require.NoError(t, err)

	outcome, err := p.Process(context.Background(), data)

	require.Error(t, err)
	assert.Equal(t, OutcomeMalformed, outcome)
}

func TestProcess_TransientReadModelFailure(t *testing.T) {
	pub := &fakePublisher{}
	p := newTestProcessor(&fakeGateway{err: errors.New("gateway down")}, &fakeRoles{}, pub)

	data := marshalEnvelope(t, event.TypeVideoWasChanged, time.Now(),
		event.VideoChanged{VideoID: "v-1", Patch: map[string]any{"name": "n"}})
	outcome, err := p.Process(context.Background(), data)

	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Empty(t, pub.payloads)
}

func TestProcess_PublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	p := newTestProcessor(&fakeGateway{}, &fakeRoles{}, pub)

	data := marshalEnvelope(t, event.TypeUserWasNotified, time.Now(),
		event.UserNotified{UserID: "u-1", Notification: map[string]any{"id": "ntf-1"}})
	outcome, err := p.Process(context.Background(), data)

	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
}

func TestHandle_MapsOutcomesToBrokerContract(t *testing.T) {
	valid := marshalEnvelope(t, event.TypeUserWasNotified, time.Now(),
		event.UserNotified{UserID: "u-1", Notification: map[string]any{"id": "ntf-1"}})

	t.Run("relayed acks", func(t *testing.T) {
		p := newTestProcessor(&fakeGateway{}, &fakeRoles{}, &fakePublisher{})
		err := p.Handle(context.Background(), &messaging.Message{Data: valid})
		assert.NoError(t, err)
	})

	t.Run("malformed is permanent", func(t *testing.T) {
		p := newTestProcessor(&fakeGateway{}, &fakeRoles{}, &fakePublisher{})
		err := p.Handle(context.Background(), &messaging.Message{Data: []byte("junk")})
		require.Error(t, err)
		assert.True(t, messaging.IsPermanent(err))
	})

	t.Run("transient failure is retryable", func(t *testing.T) {
		p := newTestProcessor(&fakeGateway{}, &fakeRoles{}, &fakePublisher{err: errors.New("broker down")})
		err := p.Handle(context.Background(), &messaging.Message{Data: valid})
		require.Error(t, err)
		assert.False(t, messaging.IsPermanent(err))
	})

	t.Run("suppressed acks", func(t *testing.T) {
		stale := marshalEnvelope(t, event.TypeUserWasNotified, time.Now().Add(-time.Hour),
			event.UserNotified{UserID: "u-1", Notification: map[string]any{"id": "ntf-1"}})
		p := newTestProcessor(&fakeGateway{}, &fakeRoles{}, &fakePublisher{})
		err := p.Handle(context.Background(), &messaging.Message{Data: stale})
		assert.NoError(t, err)
	})
}

func TestProcess_ProfileChangeRedactsAndScopesToOrganization(t *testing.T) {
	g := &fakeGateway{
		organizations: map[string]*readmodel.Organization{
			"org-1": {ID: "org-1", MemberIDs: []string{"u-1", "u-2"}},
		},
		users: map[string]*readmodel.User{
			"u-1": {ID: "u-1", OrganizationID: "org-1"},
			"u-2": {ID: "u-2", OrganizationID: "org-1"},
		},
	}
	pub := &fakePublisher{}
	p := newTestProcessor(g, &fakeRoles{}, pub)

	data := marshalEnvelope(t, event.TypeUserProfileWasChanged, time.Now(),
		event.UserProfileChanged{UserID: "u-1", Patch: map[string]any{
			"job":         "engineer",
			"names":       map[string]any{"first": "Ada"},
			"secretField": "leak",
		}})
	outcome, err := p.Process(context.Background(), data)

	require.NoError(t, err)
	assert.Equal(t, OutcomeRelayed, outcome)

	var out OutboundEnvelope
	require.NoError(t, json.Unmarshal(pub.payloads[0], &out))
	assert.ElementsMatch(t, []string{"u-1", "u-2"}, out.Recipient.IDs())
	patch, ok := out.Payload["patch"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"job":   "engineer",
		"names": map[string]any{"first": "Ada"},
	}, patch)
}

func TestProcess_OrganizationEventReachesMembers(t *testing.T) {
	g := &fakeGateway{
		organizations: map[string]*readmodel.Organization{
			"org-1": {ID: "org-1", MemberIDs: []string{"u-1", "u-2"}},
		},
		users: map[string]*readmodel.User{
			"u-1": {ID: "u-1", OrganizationID: "org-1"},
			"u-2": {ID: "u-2", OrganizationID: "org-1"},
		},
	}
	pub := &fakePublisher{}
	p := newTestProcessor(g, &fakeRoles{admins: []string{"adm-1"}}, pub)

	data := marshalEnvelope(t, event.TypeOrganizationWasChanged, time.Now(),
		event.OrganizationChanged{OrganizationID: "org-1", Patch: map[string]any{"name": "Acme", "billing_token": "leak"}})
	outcome, err := p.Process(context.Background(), data)

	require.NoError(t, err)
	assert.Equal(t, OutcomeRelayed, outcome)

	var out OutboundEnvelope
	require.NoError(t, json.Unmarshal(pub.payloads[0], &out))
	assert.ElementsMatch(t, []string{"u-1", "u-2"}, out.Recipient.IDs())
	patch, ok := out.Payload["patch"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "Acme"}, patch)
}
