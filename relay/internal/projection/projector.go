// Package projection builds the client-facing payload for each routed event.
// Every event type has an explicit allow-list: fields not named here never
// reach the websocket feed, whatever the producer put on the bus. Some types
// additionally enrich the payload from the read model.
package projection

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/keywinf/relay-stack/common/logging"
	"github.com/keywinf/relay-stack/relay/internal/event"
	"github.com/keywinf/relay-stack/relay/internal/metrics"
	"github.com/keywinf/relay-stack/relay/internal/readmodel"
)

// Payload is the projected, redacted payload shipped to clients.
type Payload map[string]any

// Projector computes outbound payloads. Enrichment lookups that hit a
// missing aggregate drop the enriched field instead of failing the event;
// transport failures propagate so the message gets redelivered.
type Projector struct {
	gateway readmodel.Gateway
	waiter  *Waiter
	logger  *logging.Logger
}

// NewProjector creates a projector. The waiter bounds how long the projector
// polls the read model for eventually-consistent sub-resources.
func NewProjector(gateway readmodel.Gateway, waiter *Waiter, logger *logging.Logger) *Projector {
	return &Projector{gateway: gateway, waiter: waiter, logger: logger}
}

// Project returns the outbound payload for the envelope. The payload
// argument is the typed struct produced by event.Decode. Types with no
// projected fields return an empty payload; the event is still relayed as a
// bare signal.
func (p *Projector) Project(ctx context.Context, env *event.Envelope, payload any) (Payload, error) {
	switch env.Type {
	case event.TypeBotErrorWasRaised, event.TypeVideoGenerationErrorWasRaised:
		pl := payload.(event.ErrorRaised)
		return Payload{"error_log": pl.ErrorLog}, nil

	case event.TypeBotSwitchedToBranch:
		pl := payload.(event.BotSwitchedToBranch)
		return Payload{"source_branch": pl.SourceBranch}, nil

	case event.TypeBotWasDeployed:
		return p.projectBotDeployed(ctx, payload.(event.BotDeployed))

	case event.TypeBotWasRebooted, event.TypeBotWasRemoved, event.TypeLicenseWasRemoved:
		pl := payload.(event.Flagged)
		return Payload{"flag": pl.Flag}, nil

	case event.TypeBotWasChanged, event.TypeLicenseWasChanged:
		pl := payload.(event.Patched)
		return Payload{"patch": pl.Patch}, nil

	case event.TypeChildTemplateWasChanged:
		pl := payload.(event.ChildTemplateChanged)
		return Payload{"patch": filterPatch(pl.Patch, "name", "config")}, nil

	case event.TypeChildTemplateWasCreated:
		pl := payload.(event.ChildTemplateCreated)
		return Payload{
			"organization_id": pl.OrganizationID,
			"workspace_id":    pl.WorkspaceID,
		}, nil

	case event.TypeChildTemplateWasRemoved:
		return p.projectChildTemplateRemoved(ctx, payload.(event.ChildTemplateRemoved))

	case event.TypeLicenseWasAttributedToBot:
		pl := payload.(event.LicenseAttributedToBot)
		return Payload{"bot_id": pl.BotID}, nil

	case event.TypeLicenseWasCreated:
		pl := payload.(event.LicenseCreated)
		return Payload{
			"creator_id": pl.CreatorID,
			"created_at": pl.CreatedAt,
			"state":      pl.State,
			"email":      pl.Email,
			"password":   pl.Password,
		}, nil

	case event.TypeNotificationsWereRemovedFromUser,
		event.TypeUserNotificationsWereMarkedAsBeingRead:
		pl := payload.(event.UserNotifications)
		return Payload{"notification_ids": pl.NotificationIDs}, nil

	case event.TypeOrganizationBadgeWasAddedToUser,
		event.TypeOrganizationBadgeWasRemovedFromUser:
		return p.projectUserBadge(ctx, payload.(event.UserBadge))

	case event.TypeOrganizationWasChanged:
		pl := payload.(event.OrganizationChanged)
		return Payload{"patch": filterPatch(pl.Patch, "location", "logo", "name")}, nil

	case event.TypeOrganizationWasCredited, event.TypeOrganizationWasDebited:
		pl := payload.(event.OrganizationBalance)
		return Payload{"amount": pl.Amount}, nil

	case event.TypeParentTemplateWasChanged:
		return p.projectParentTemplateChanged(ctx, payload.(event.ParentTemplateChanged))

	case event.TypeParentTemplateWasCreated:
		pl := payload.(event.ParentTemplateCreated)
		return Payload{"organization_id": pl.OrganizationID}, nil

	case event.TypeParentTemplateWasRemoved:
		return p.projectParentTemplateRemoved(ctx, payload.(event.ParentTemplateRemoved))

	case event.TypeUserAccountWasChanged:
		pl := payload.(event.UserAccountChanged)
		return Payload{"patch": filterPatch(pl.Patch,
			"email", "phone", "last_login", "last_logout", "locale")}, nil

	case event.TypeUserNotificationSettingWasChanged:
		pl := payload.(event.UserNotificationSettingChanged)
		return Payload{"subject": pl.Subject, "state": pl.State}, nil

	case event.TypeUserProfileWasChanged:
		pl := payload.(event.UserProfileChanged)
		return Payload{"patch": filterPatch(pl.Patch, "job", "names", "portrait")}, nil

	case event.TypeUserWasActivated:
		pl := payload.(event.UserActivated)
		return Payload{
			"encoded_password": pl.EncodedPassword,
			"job":              pl.Job,
			"names":            pl.Names,
			"phone":            pl.Phone,
		}, nil

	case event.TypeUserWasLocked, event.TypeUserWasPokedForActivation:
		pl := payload.(event.UserFlagged)
		return Payload{"flag": pl.Flag}, nil

	case event.TypeUserWasNotified:
		return p.projectUserNotified(ctx, payload.(event.UserNotified))

	case event.TypeUserWasRegisteredByEmail:
		pl := payload.(event.UserRegisteredByEmail)
		return Payload{"organization_id": pl.OrganizationID}, nil

	case event.TypeVideoSocialPostStateWasChanged:
		pl := payload.(event.VideoSocialPostStateChanged)
		return Payload{"post_id": pl.PostID, "state": pl.State}, nil

	case event.TypeVideoSocialPostWasScheduled:
		return p.projectSocialPostScheduled(ctx, payload.(event.VideoSocialPostScheduled))

	case event.TypeVideoWasChanged:
		pl := payload.(event.VideoChanged)
		return Payload{"patch": filterPatch(pl.Patch,
			"file", "state", "name", "description", "template_data")}, nil

	case event.TypeVideoWasCreated:
		return p.projectVideoCreated(ctx, payload.(event.VideoCreated))

	case event.TypeVideoWasPostedOnSocials:
		pl := payload.(event.VideoPostedOnSocials)
		return Payload{"post_id": pl.PostID, "remote_post_id": pl.RemotePostID}, nil

	case event.TypeVideoWasRemoved:
		return p.projectVideoRemoved(ctx, payload.(event.VideoRemoved))

	case event.TypeWorkspaceWasChanged:
		pl := payload.(event.WorkspaceChanged)
		return Payload{"patch": filterPatch(pl.Patch, "name")}, nil

	case event.TypeWorkspaceWasCreated:
		pl := payload.(event.WorkspaceCreated)
		return Payload{
			"created_at":      pl.CreatedAt,
			"creator_id":      pl.CreatorID,
			"organization_id": pl.OrganizationID,
			"name":            pl.Name,
		}, nil

	default:
		// Routed but field-less: the event itself is the signal.
		return Payload{}, nil
	}
}

func (p *Projector) projectBotDeployed(ctx context.Context, pl event.BotDeployed) (Payload, error) {
	out := Payload{
		"auth_key":      pl.AuthKey,
		"creator_id":    pl.CreatorID,
		"created_at":    pl.CreatedAt,
		"flavor_id":     pl.FlavorID,
		"ip_address":    pl.IPAddress,
		"license_id":    pl.LicenseID,
		"os_image_id":   pl.OSImageID,
		"server_id":     pl.ServerID,
		"snapshot_id":   pl.SnapshotID,
		"source_branch": pl.SourceBranch,
		"state":         pl.State,
		"name":          pl.Name,
	}
	if pl.LicenseID != "" {
		license, err := p.gateway.License(ctx, pl.LicenseID)
		switch {
		case err == nil:
			out["license"] = map[string]any{"email": license.Email}
		case errors.Is(err, readmodel.ErrNotFound):
			// leave the license field out
		default:
			return nil, fmt.Errorf("enrich license: %w", err)
		}
	}
	return out, nil
}

func (p *Projector) projectChildTemplateRemoved(ctx context.Context, pl event.ChildTemplateRemoved) (Payload, error) {
	out := Payload{"flag": pl.Flag}
	ct, err := p.gateway.ChildTemplate(ctx, pl.ChildTemplateID)
	switch {
	case err == nil:
		out["organization_id"] = ct.OrganizationID
		out["workspace_id"] = ct.WorkspaceID
	case errors.Is(err, readmodel.ErrNotFound):
	default:
		return nil, fmt.Errorf("enrich child template: %w", err)
	}
	return out, nil
}

func (p *Projector) projectParentTemplateChanged(ctx context.Context, pl event.ParentTemplateChanged) (Payload, error) {
	out := Payload{"patch": filterPatch(pl.Patch,
		"state", "name", "config", "generation_cost", "preview", "thumbnail")}
	pt, err := p.gateway.ParentTemplate(ctx, pl.ParentTemplateID)
	switch {
	case err == nil:
		out["organization_id"] = pt.OrganizationID
	case errors.Is(err, readmodel.ErrNotFound):
	default:
		return nil, fmt.Errorf("enrich parent template: %w", err)
	}
	return out, nil
}

func (p *Projector) projectParentTemplateRemoved(ctx context.Context, pl event.ParentTemplateRemoved) (Payload, error) {
	out := Payload{"flag": pl.Flag}
	pt, err := p.gateway.ParentTemplate(ctx, pl.ParentTemplateID)
	switch {
	case err == nil:
		out["organization_id"] = pt.OrganizationID
	case errors.Is(err, readmodel.ErrNotFound):
	default:
		return nil, fmt.Errorf("enrich parent template: %w", err)
	}
	return out, nil
}

func (p *Projector) projectUserBadge(ctx context.Context, pl event.UserBadge) (Payload, error) {
	out := Payload{
		"organization_badge": map[string]any{
			"workspace_id": pl.OrganizationBadge.WorkspaceID,
			"badge":        pl.OrganizationBadge.Badge,
		},
	}
	user, err := p.gateway.User(ctx, pl.UserID)
	switch {
	case err == nil:
		out["organization_id"] = user.OrganizationID
	case errors.Is(err, readmodel.ErrNotFound):
	default:
		return nil, fmt.Errorf("enrich user: %w", err)
	}
	return out, nil
}

// projectUserNotified ships the notification whole, plus a feed cursor and
// the workspace snippet clients need to label workspace-scoped
// notifications without a round trip.
func (p *Projector) projectUserNotified(ctx context.Context, pl event.UserNotified) (Payload, error) {
	out := Payload{
		"notification": pl.Notification,
		"cursor":       Cursor(pl.NotificationID()),
		"workspace":    nil,
	}
	if wsID := pl.NotificationWorkspaceID(); wsID != "" {
		ws, err := p.gateway.Workspace(ctx, wsID)
		switch {
		case err == nil:
			out["workspace"] = map[string]any{"id": ws.ID, "name": ws.Name}
		case errors.Is(err, readmodel.ErrNotFound):
		default:
			return nil, fmt.Errorf("enrich workspace: %w", err)
		}
	}
	return out, nil
}

// projectSocialPostScheduled waits for the scheduled post to land in the
// video projection, then enriches with its state and remote space access.
// The post may lag the event; when the wait budget runs out the payload
// ships without the enriched fields.
func (p *Projector) projectSocialPostScheduled(ctx context.Context, pl event.VideoSocialPostScheduled) (Payload, error) {
	out := Payload{
		"post_id":         pl.PostID,
		"by":              pl.By,
		"network":         pl.Network,
		"remote_space_id": pl.RemoteSpaceID,
		"title":           pl.Title,
		"description":     pl.Description,
		"scheduled_for":   pl.ScheduledFor,
	}

	var post readmodel.SocialPost
	attempts := 0
	found, err := p.waiter.Wait(ctx, func(ctx context.Context) (bool, error) {
		attempts++
		video, err := p.gateway.Video(ctx, pl.VideoID)
		if errors.Is(err, readmodel.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		sp, ok := video.SocialPost(pl.PostID)
		if !ok {
			return false, nil
		}
		post = sp
		return true, nil
	})
	metrics.ProjectionWaitAttempts.Observe(float64(attempts))
	if err != nil {
		return nil, fmt.Errorf("wait for social post: %w", err)
	}
	if !found {
		p.logger.WarnContext(ctx, "social post never appeared in read model, shipping without enrichment",
			slog.String("video_id", pl.VideoID),
			slog.String("post_id", pl.PostID))
		return out, nil
	}
	out["state"] = post.State
	out["remote_space_access"] = post.RemoteSpaceAccess
	return out, nil
}

func (p *Projector) projectVideoCreated(ctx context.Context, pl event.VideoCreated) (Payload, error) {
	out := Payload{"workspace_id": pl.WorkspaceID}
	org, err := readmodel.OrganizationForVideo(ctx, p.gateway,
		pl.WorkspaceID, pl.ChildTemplateID, pl.ParentTemplateID)
	switch {
	case err == nil:
		out["organization_id"] = org.ID
	case errors.Is(err, readmodel.ErrNotFound):
	default:
		return nil, fmt.Errorf("enrich organization: %w", err)
	}
	return out, nil
}

func (p *Projector) projectVideoRemoved(ctx context.Context, pl event.VideoRemoved) (Payload, error) {
	out := Payload{"flag": pl.Flag}
	video, err := p.gateway.Video(ctx, pl.VideoID)
	switch {
	case errors.Is(err, readmodel.ErrNotFound):
		return out, nil
	case err != nil:
		return nil, fmt.Errorf("enrich video: %w", err)
	}
	out["workspace_id"] = video.WorkspaceID
	org, err := readmodel.OrganizationForVideo(ctx, p.gateway,
		video.WorkspaceID, video.ChildTemplateID, video.ParentTemplateID)
	switch {
	case err == nil:
		out["organization_id"] = org.ID
	case errors.Is(err, readmodel.ErrNotFound):
	default:
		return nil, fmt.Errorf("enrich organization: %w", err)
	}
	return out, nil
}

// Cursor encodes a notification id as the opaque feed cursor clients page
// with.
func Cursor(notificationID string) string {
	return base64.StdEncoding.EncodeToString([]byte(notificationID))
}

// filterPatch keeps only the allowed keys of a patch object. A nil patch
// stays nil rather than becoming an empty object.
func filterPatch(patch map[string]any, allowed ...string) map[string]any {
	if patch == nil {
		return nil
	}
	out := make(map[string]any, len(allowed))
	for _, key := range allowed {
		if v, ok := patch[key]; ok {
			out[key] = v
		}
	}
	return out
}
