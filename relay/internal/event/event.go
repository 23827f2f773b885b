// Package event defines the domain-event envelope consumed from the write
// side and the closed set of event types the relay knows how to route.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Type discriminates domain events. The set is closed: every type the
// platform emits toward the websocket feed has a constant here and a typed
// payload in payloads.go.
type Type string

const (
	TypeBotErrorWasRaised                       Type = "BotErrorWasRaised"
	TypeBotSwitchedToBranch                     Type = "BotSwitchedToBranch"
	TypeBotWasChanged                           Type = "BotWasChanged"
	TypeBotWasDeployed                          Type = "BotWasDeployed"
	TypeBotWasRebooted                          Type = "BotWasRebooted"
	TypeBotWasRemoved                           Type = "BotWasRemoved"
	TypeChildTemplateWasChanged                 Type = "ChildTemplateWasChanged"
	TypeChildTemplateWasCreated                 Type = "ChildTemplateWasCreated"
	TypeChildTemplateWasRemoved                 Type = "ChildTemplateWasRemoved"
	TypeLicenseWasAttributedToBot               Type = "LicenseWasAttributedToBot"
	TypeLicenseWasChanged                       Type = "LicenseWasChanged"
	TypeLicenseWasCreated                       Type = "LicenseWasCreated"
	TypeLicenseWasRemoved                       Type = "LicenseWasRemoved"
	TypeNotificationsWereRemovedFromUser        Type = "NotificationsWereRemovedFromUser"
	TypeOrganizationBadgeWasAddedToUser         Type = "OrganizationBadgeWasAddedToUser"
	TypeOrganizationBadgeWasRemovedFromUser     Type = "OrganizationBadgeWasRemovedFromUser"
	TypeOrganizationPlanWasChanged              Type = "OrganizationPlanWasChanged"
	TypeOrganizationPlanWasStarted              Type = "OrganizationPlanWasStarted"
	TypeOrganizationWasChanged                  Type = "OrganizationWasChanged"
	TypeOrganizationWasCredited                 Type = "OrganizationWasCredited"
	TypeOrganizationWasDebited                  Type = "OrganizationWasDebited"
	TypeParentTemplateConfigThumbnailWasChanged Type = "ParentTemplateConfigThumbnailWasChanged"
	TypeParentTemplateWasChanged                Type = "ParentTemplateWasChanged"
	TypeParentTemplateWasCreated                Type = "ParentTemplateWasCreated"
	TypeParentTemplateWasPruned                 Type = "ParentTemplateWasPruned"
	TypeParentTemplateWasRemoved                Type = "ParentTemplateWasRemoved"
	TypeUserAccountWasChanged                   Type = "UserAccountWasChanged"
	TypeUserNotificationSettingWasChanged       Type = "UserNotificationSettingWasChanged"
	TypeUserNotificationsWereMarkedAsBeingRead  Type = "UserNotificationsWereMarkedAsBeingRead"
	TypeUserProfileWasChanged                   Type = "UserProfileWasChanged"
	TypeUserWasActivated                        Type = "UserWasActivated"
	TypeUserWasLocked                           Type = "UserWasLocked"
	TypeUserWasNotified                         Type = "UserWasNotified"
	TypeUserWasPokedForActivation               Type = "UserWasPokedForActivation"
	TypeUserWasRegisteredByEmail                Type = "UserWasRegisteredByEmail"
	TypeVideoBecameOrphan                       Type = "VideoBecameOrphan"
	TypeVideoGenerationErrorWasRaised           Type = "VideoGenerationErrorWasRaised"
	TypeVideoSocialPostStateWasChanged          Type = "VideoSocialPostStateWasChanged"
	TypeVideoSocialPostWasDiscarded             Type = "VideoSocialPostWasDiscarded"
	TypeVideoSocialPostWasScheduled             Type = "VideoSocialPostWasScheduled"
	TypeVideoWasChanged                         Type = "VideoWasChanged"
	TypeVideoWasCreated                         Type = "VideoWasCreated"
	TypeVideoWasMovedToWorkspace                Type = "VideoWasMovedToWorkspace"
	TypeVideoWasPostedOnSocials                 Type = "VideoWasPostedOnSocials"
	TypeVideoWasReinitialized                   Type = "VideoWasReinitialized"
	TypeVideoWasRemoved                         Type = "VideoWasRemoved"
	TypeWorkspaceWasChanged                     Type = "WorkspaceWasChanged"
	TypeWorkspaceWasCreated                     Type = "WorkspaceWasCreated"
)

// Metadata carries the event-sourcing context of an envelope.
type Metadata struct {
	EventID       string `json:"event_id"`
	AggregateID   string `json:"aggregate_id"`
	AggregateType string `json:"aggregate_type"`
	CausationID   string `json:"causation_id,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Envelope is the immutable domain-event record as delivered on the bus.
// The relay only reads it.
type Envelope struct {
	Type       Type            `json:"type"`
	ProducedAt time.Time       `json:"produced_at"`
	Metadata   Metadata        `json:"metadata"`
	Payload    json.RawMessage `json:"payload"`
}

// Age returns how old the event is relative to now.
func (e *Envelope) Age(now time.Time) time.Duration {
	return now.Sub(e.ProducedAt)
}

var (
	// ErrMalformed indicates an envelope that cannot be parsed at all.
	// This is permanent: redelivery cannot fix it.
	ErrMalformed = errors.New("event: malformed envelope")

	// ErrUnknownType indicates a well-formed envelope whose type the relay
	// does not route. Not an error condition for the feed; the event is
	// simply not relayed.
	ErrUnknownType = errors.New("event: unknown event type")
)

// Parse deserializes a raw message body into an Envelope.
func Parse(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	if env.ProducedAt.IsZero() {
		return nil, fmt.Errorf("%w: missing produced_at", ErrMalformed)
	}
	return &env, nil
}

// Known reports whether t belongs to the routed event set.
func Known(t Type) bool {
	_, ok := decoders[t]
	return ok
}

// Decode unmarshals the envelope's payload into the typed struct declared
// for its event type. Returns ErrUnknownType for types outside the routed
// set and ErrMalformed when the payload does not match the declared shape.
func Decode(env *Envelope) (any, error) {
	decode, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, env.Type)
	}
	payload, err := decode(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload for %s: %v", ErrMalformed, env.Type, err)
	}
	return payload, nil
}

func decodeInto[T any](data json.RawMessage) (any, error) {
	var payload T
	if len(data) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// decoders maps each routed event type to its payload decoder. A type
// missing here is not routed at all; keep this table in sync with the
// constants above.
var decoders = map[Type]func(json.RawMessage) (any, error){
	TypeBotErrorWasRaised:                       decodeInto[ErrorRaised],
	TypeBotSwitchedToBranch:                     decodeInto[BotSwitchedToBranch],
	TypeBotWasChanged:                           decodeInto[Patched],
	TypeBotWasDeployed:                          decodeInto[BotDeployed],
	TypeBotWasRebooted:                          decodeInto[Flagged],
	TypeBotWasRemoved:                           decodeInto[Flagged],
	TypeChildTemplateWasChanged:                 decodeInto[ChildTemplateChanged],
	TypeChildTemplateWasCreated:                 decodeInto[ChildTemplateCreated],
	TypeChildTemplateWasRemoved:                 decodeInto[ChildTemplateRemoved],
	TypeLicenseWasAttributedToBot:               decodeInto[LicenseAttributedToBot],
	TypeLicenseWasChanged:                       decodeInto[Patched],
	TypeLicenseWasCreated:                       decodeInto[LicenseCreated],
	TypeLicenseWasRemoved:                       decodeInto[Flagged],
	TypeNotificationsWereRemovedFromUser:        decodeInto[UserNotifications],
	TypeOrganizationBadgeWasAddedToUser:         decodeInto[UserBadge],
	TypeOrganizationBadgeWasRemovedFromUser:     decodeInto[UserBadge],
	TypeOrganizationPlanWasChanged:              decodeInto[OrganizationPlan],
	TypeOrganizationPlanWasStarted:              decodeInto[OrganizationPlan],
	TypeOrganizationWasChanged:                  decodeInto[OrganizationChanged],
	TypeOrganizationWasCredited:                 decodeInto[OrganizationBalance],
	TypeOrganizationWasDebited:                  decodeInto[OrganizationBalance],
	TypeParentTemplateConfigThumbnailWasChanged: decodeInto[ParentTemplateTouched],
	TypeParentTemplateWasChanged:                decodeInto[ParentTemplateChanged],
	TypeParentTemplateWasCreated:                decodeInto[ParentTemplateCreated],
	TypeParentTemplateWasPruned:                 decodeInto[ParentTemplateTouched],
	TypeParentTemplateWasRemoved:                decodeInto[ParentTemplateRemoved],
	TypeUserAccountWasChanged:                   decodeInto[UserAccountChanged],
	TypeUserNotificationSettingWasChanged:       decodeInto[UserNotificationSettingChanged],
	TypeUserNotificationsWereMarkedAsBeingRead:  decodeInto[UserNotifications],
	TypeUserProfileWasChanged:                   decodeInto[UserProfileChanged],
	TypeUserWasActivated:                        decodeInto[UserActivated],
	TypeUserWasLocked:                           decodeInto[UserFlagged],
	TypeUserWasNotified:                         decodeInto[UserNotified],
	TypeUserWasPokedForActivation:               decodeInto[UserFlagged],
	TypeUserWasRegisteredByEmail:                decodeInto[UserRegisteredByEmail],
	TypeVideoBecameOrphan:                       decodeInto[VideoTouched],
	TypeVideoGenerationErrorWasRaised:           decodeInto[ErrorRaised],
	TypeVideoSocialPostStateWasChanged:          decodeInto[VideoSocialPostStateChanged],
	TypeVideoSocialPostWasDiscarded:             decodeInto[VideoSocialPostDiscarded],
	TypeVideoSocialPostWasScheduled:             decodeInto[VideoSocialPostScheduled],
	TypeVideoWasChanged:                         decodeInto[VideoChanged],
	TypeVideoWasCreated:                         decodeInto[VideoCreated],
	TypeVideoWasMovedToWorkspace:                decodeInto[VideoMovedToWorkspace],
	TypeVideoWasPostedOnSocials:                 decodeInto[VideoPostedOnSocials],
	TypeVideoWasReinitialized:                   decodeInto[VideoTouched],
	TypeVideoWasRemoved:                         decodeInto[VideoRemoved],
	TypeWorkspaceWasChanged:                     decodeInto[WorkspaceChanged],
	TypeWorkspaceWasCreated:                     decodeInto[WorkspaceCreated],
}

// Types returns the routed event types in no particular order.
func Types() []Type {
	out := make([]Type, 0, len(decoders))
	for t := range decoders {
		out = append(out, t)
	}
	return out
}
