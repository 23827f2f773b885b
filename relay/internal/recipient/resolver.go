package recipient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/keywinf/relay-stack/relay/internal/event"
	"github.com/keywinf/relay-stack/relay/internal/readmodel"
)

// Resolver computes the recipient set of a domain event. Each event type
// declares exactly one resolution strategy; lookups against missing
// aggregates resolve to Nobody (deny by default) while transport failures
// propagate so the message can be redelivered.
type Resolver struct {
	gateway readmodel.Gateway
	roles   readmodel.RoleResolver
	logger  *slog.Logger
}

// NewResolver creates a resolver over the given read-model clients.
func NewResolver(gateway readmodel.Gateway, roles readmodel.RoleResolver, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		gateway: gateway,
		roles:   roles,
		logger:  logger,
	}
}

// Resolve maps the event to its recipient set.
func (r *Resolver) Resolve(ctx context.Context, env *event.Envelope, payload any) (Set, error) {
	switch env.Type {
	// Workspace sharers: social post lifecycle is visible only to members
	// holding the sharer badge for the video's workspace.
	case event.TypeVideoSocialPostStateWasChanged,
		event.TypeVideoSocialPostWasDiscarded,
		event.TypeVideoSocialPostWasScheduled,
		event.TypeVideoWasPostedOnSocials:
		return r.workspaceSharers(ctx, videoID(payload))

	// Creator only.
	case event.TypeBotWasDeployed:
		p := payload.(event.BotDeployed)
		return Users(p.CreatorID), nil
	case event.TypeLicenseWasCreated:
		p := payload.(event.LicenseCreated)
		return Users(p.CreatorID), nil

	// Administrative and infrastructure events go to platform admins.
	case event.TypeBotErrorWasRaised,
		event.TypeBotSwitchedToBranch,
		event.TypeBotWasChanged,
		event.TypeBotWasRebooted,
		event.TypeBotWasRemoved,
		event.TypeLicenseWasAttributedToBot,
		event.TypeLicenseWasChanged,
		event.TypeLicenseWasRemoved,
		event.TypeVideoGenerationErrorWasRaised,
		event.TypeVideoWasReinitialized:
		return r.admins(ctx)

	// Child template scope.
	case event.TypeChildTemplateWasChanged:
		p := payload.(event.ChildTemplateChanged)
		ct, err := r.gateway.ChildTemplate(ctx, p.ChildTemplateID)
		if err != nil {
			return r.denyIfMissing(err)
		}
		return r.organizationMembers(ctx, ct.OrganizationID)
	case event.TypeChildTemplateWasCreated:
		// The projection may lag behind a fresh creation; the payload
		// already names the organization
		p := payload.(event.ChildTemplateCreated)
		return r.organizationMembers(ctx, p.OrganizationID)
	case event.TypeChildTemplateWasRemoved:
		p := payload.(event.ChildTemplateRemoved)
		ct, err := r.gateway.ChildTemplate(ctx, p.ChildTemplateID)
		if err != nil {
			return r.denyIfMissing(err)
		}
		return r.organizationMembersWithAdmins(ctx, ct.OrganizationID)

	// Parent template scope: global templates broadcast to everyone,
	// owned templates narrow to the organization.
	case event.TypeParentTemplateWasCreated:
		p := payload.(event.ParentTemplateCreated)
		if p.OrganizationID == "" {
			return Everyone(), nil
		}
		return r.organizationMembers(ctx, p.OrganizationID)
	case event.TypeParentTemplateConfigThumbnailWasChanged,
		event.TypeParentTemplateWasChanged,
		event.TypeParentTemplateWasPruned,
		event.TypeParentTemplateWasRemoved:
		pt, err := r.gateway.ParentTemplate(ctx, parentTemplateID(payload))
		if err != nil {
			return r.denyIfMissing(err)
		}
		if pt.OrganizationID == "" {
			return Everyone(), nil
		}
		return r.organizationMembersWithAdmins(ctx, pt.OrganizationID)

	// Video scope.
	case event.TypeVideoWasCreated:
		p := payload.(event.VideoCreated)
		org, err := readmodel.OrganizationForVideo(ctx, r.gateway, p.WorkspaceID, p.ChildTemplateID, p.ParentTemplateID)
		if err != nil {
			return r.denyIfMissing(err)
		}
		return r.withAdmins(ctx, Users(org.MemberIDs...))
	case event.TypeVideoWasRemoved, event.TypeVideoWasChanged:
		set, err := r.videoOrganizationMembers(ctx, videoID(payload))
		if err != nil || set.IsEmpty() {
			return set, err
		}
		return r.withAdmins(ctx, set)
	case event.TypeVideoBecameOrphan, event.TypeVideoWasMovedToWorkspace:
		return r.videoOrganizationMembers(ctx, videoID(payload))

	// The affected user only.
	case event.TypeNotificationsWereRemovedFromUser,
		event.TypeUserNotificationsWereMarkedAsBeingRead:
		p := payload.(event.UserNotifications)
		return Users(p.UserID), nil
	case event.TypeUserWasNotified:
		p := payload.(event.UserNotified)
		return Users(p.UserID), nil

	// The user's organization.
	case event.TypeOrganizationBadgeWasAddedToUser,
		event.TypeOrganizationBadgeWasRemovedFromUser,
		event.TypeUserAccountWasChanged,
		event.TypeUserNotificationSettingWasChanged,
		event.TypeUserProfileWasChanged,
		event.TypeUserWasActivated,
		event.TypeUserWasLocked,
		event.TypeUserWasPokedForActivation:
		u, err := r.gateway.User(ctx, userID(payload))
		if err != nil {
			return r.denyIfMissing(err)
		}
		return r.organizationMembers(ctx, u.OrganizationID)

	// The workspace's organization.
	case event.TypeWorkspaceWasChanged:
		p := payload.(event.WorkspaceChanged)
		ws, err := r.gateway.Workspace(ctx, p.WorkspaceID)
		if err != nil {
			return r.denyIfMissing(err)
		}
		return r.organizationMembers(ctx, ws.OrganizationID)

	// Organization scope.
	case event.TypeUserWasRegisteredByEmail:
		p := payload.(event.UserRegisteredByEmail)
		if p.OrganizationID == "" {
			// Open registration is platform-wide news
			return Everyone(), nil
		}
		return r.organizationMembers(ctx, p.OrganizationID)
	case event.TypeWorkspaceWasCreated:
		p := payload.(event.WorkspaceCreated)
		return r.organizationMembers(ctx, p.OrganizationID)
	case event.TypeOrganizationWasChanged,
		event.TypeOrganizationPlanWasChanged,
		event.TypeOrganizationPlanWasStarted,
		event.TypeOrganizationWasCredited,
		event.TypeOrganizationWasDebited:
		return r.organizationMembers(ctx, organizationID(payload))

	default:
		// Unrouted types authorize nobody
		return Nobody(), nil
	}
}

// admins resolves the platform admin set through the role directory.
func (r *Resolver) admins(ctx context.Context) (Set, error) {
	ids, err := r.roles.FindUsersWithRole(ctx, readmodel.RoleAdmin)
	if err != nil {
		return Nobody(), fmt.Errorf("resolve admins: %w", err)
	}
	return Users(ids...), nil
}

// withAdmins unions the admin set into an already-resolved set.
func (r *Resolver) withAdmins(ctx context.Context, set Set) (Set, error) {
	admins, err := r.admins(ctx)
	if err != nil {
		return Nobody(), err
	}
	return set.Union(admins), nil
}

// organizationMembers resolves an organization's member id set.
func (r *Resolver) organizationMembers(ctx context.Context, organizationID string) (Set, error) {
	if organizationID == "" {
		return Nobody(), nil
	}
	org, err := r.gateway.Organization(ctx, organizationID)
	if err != nil {
		return r.denyIfMissing(err)
	}
	return Users(org.MemberIDs...), nil
}

func (r *Resolver) organizationMembersWithAdmins(ctx context.Context, organizationID string) (Set, error) {
	set, err := r.organizationMembers(ctx, organizationID)
	if err != nil || set.IsEmpty() {
		return set, err
	}
	return r.withAdmins(ctx, set)
}

// videoOrganizationMembers resolves the member set of the organization
// owning a video, located through the video's lineage.
func (r *Resolver) videoOrganizationMembers(ctx context.Context, videoID string) (Set, error) {
	v, err := r.gateway.Video(ctx, videoID)
	if err != nil {
		return r.denyIfMissing(err)
	}
	org, err := readmodel.OrganizationForVideo(ctx, r.gateway, v.WorkspaceID, v.ChildTemplateID, v.ParentTemplateID)
	if err != nil {
		return r.denyIfMissing(err)
	}
	return Users(org.MemberIDs...), nil
}

// workspaceSharers resolves the organization members holding the sharer
// badge for the video's workspace.
func (r *Resolver) workspaceSharers(ctx context.Context, videoID string) (Set, error) {
	v, err := r.gateway.Video(ctx, videoID)
	if err != nil {
		return r.denyIfMissing(err)
	}
	if v.WorkspaceID == "" {
		return Nobody(), nil
	}
	ws, err := r.gateway.Workspace(ctx, v.WorkspaceID)
	if err != nil {
		return r.denyIfMissing(err)
	}
	members, err := r.gateway.Members(ctx, ws.OrganizationID)
	if err != nil {
		return r.denyIfMissing(err)
	}

	var ids []string
	for _, m := range members {
		if m.HasBadge(ws.ID, readmodel.BadgeSharer) {
			ids = append(ids, m.ID)
		}
	}
	return Users(ids...), nil
}

// denyIfMissing turns a not-found lookup into the deny decision and lets
// every other error propagate.
func (r *Resolver) denyIfMissing(err error) (Set, error) {
	if errors.Is(err, readmodel.ErrNotFound) {
		return Nobody(), nil
	}
	return Nobody(), err
}

// Payload field accessors shared by grouped cases.

func videoID(payload any) string {
	switch p := payload.(type) {
	case event.VideoTouched:
		return p.VideoID
	case event.VideoChanged:
		return p.VideoID
	case event.VideoRemoved:
		return p.VideoID
	case event.VideoMovedToWorkspace:
		return p.VideoID
	case event.VideoSocialPostStateChanged:
		return p.VideoID
	case event.VideoSocialPostDiscarded:
		return p.VideoID
	case event.VideoSocialPostScheduled:
		return p.VideoID
	case event.VideoPostedOnSocials:
		return p.VideoID
	default:
		return ""
	}
}

func userID(payload any) string {
	switch p := payload.(type) {
	case event.UserBadge:
		return p.UserID
	case event.UserAccountChanged:
		return p.UserID
	case event.UserNotificationSettingChanged:
		return p.UserID
	case event.UserProfileChanged:
		return p.UserID
	case event.UserActivated:
		return p.UserID
	case event.UserFlagged:
		return p.UserID
	default:
		return ""
	}
}

func organizationID(payload any) string {
	switch p := payload.(type) {
	case event.OrganizationChanged:
		return p.OrganizationID
	case event.OrganizationPlan:
		return p.OrganizationID
	case event.OrganizationBalance:
		return p.OrganizationID
	default:
		return ""
	}
}

func parentTemplateID(payload any) string {
	switch p := payload.(type) {
	case event.ParentTemplateTouched:
		return p.ParentTemplateID
	case event.ParentTemplateChanged:
		return p.ParentTemplateID
	case event.ParentTemplateRemoved:
		return p.ParentTemplateID
	default:
		return ""
	}
}
