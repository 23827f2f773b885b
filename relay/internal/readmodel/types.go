// Package readmodel gives the relay query-by-id access to the platform's
// denormalized aggregate snapshots and role directory. Both live in other
// services; everything here is a client.
package readmodel

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the queried aggregate does not exist in the
// read model (deleted, or its projection never produced it).
var ErrNotFound = errors.New("readmodel: not found")

// Organization snapshot.
type Organization struct {
	ID        string   `json:"id"`
	MemberIDs []string `json:"member_ids"`
}

// Workspace snapshot.
type Workspace struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id"`
}

// OrganizationBadge is a per-workspace capability grant on a member profile.
type OrganizationBadge struct {
	WorkspaceID string `json:"workspace_id"`
	Badge       string `json:"badge"`
}

// User snapshot, including the badge grants needed for capability checks.
type User struct {
	ID                 string              `json:"id"`
	OrganizationID     string              `json:"organization_id"`
	OrganizationBadges []OrganizationBadge `json:"organization_badges"`
}

// HasBadge reports whether the user holds the given badge for the workspace.
func (u User) HasBadge(workspaceID, badge string) bool {
	for _, b := range u.OrganizationBadges {
		if b.WorkspaceID == workspaceID && b.Badge == badge {
			return true
		}
	}
	return false
}

// SocialPost is a social publication attached to a video.
type SocialPost struct {
	ID                string         `json:"id"`
	State             string         `json:"state"`
	RemoteSpaceAccess map[string]any `json:"remote_space_access"`
}

// Video snapshot. A video belongs to a workspace, or to a template when it
// has not been claimed yet.
type Video struct {
	ID               string       `json:"id"`
	WorkspaceID      string       `json:"workspace_id"`
	ChildTemplateID  string       `json:"child_template_id"`
	ParentTemplateID string       `json:"parent_template_id"`
	SocialPosts      []SocialPost `json:"social_posts"`
}

// SocialPost returns the post with the given id, if present.
func (v Video) SocialPost(postID string) (SocialPost, bool) {
	for _, p := range v.SocialPosts {
		if p.ID == postID {
			return p, true
		}
	}
	return SocialPost{}, false
}

// ChildTemplate snapshot.
type ChildTemplate struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	WorkspaceID    string `json:"workspace_id"`
}

// ParentTemplate snapshot. Global templates have no organization.
type ParentTemplate struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
}

// License snapshot.
type License struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Gateway queries aggregate snapshots by id. Implementations must return
// ErrNotFound for missing aggregates and plain errors for transport
// failures, so callers can tell deny-by-default from retry.
type Gateway interface {
	Organization(ctx context.Context, id string) (*Organization, error)
	Workspace(ctx context.Context, id string) (*Workspace, error)
	User(ctx context.Context, id string) (*User, error)
	Video(ctx context.Context, id string) (*Video, error)
	ChildTemplate(ctx context.Context, id string) (*ChildTemplate, error)
	ParentTemplate(ctx context.Context, id string) (*ParentTemplate, error)
	License(ctx context.Context, id string) (*License, error)

	// Members returns the member snapshots of an organization, badges
	// included. Needed by capability-filtered recipient resolution.
	Members(ctx context.Context, organizationID string) ([]User, error)
}

// RoleResolver returns the ids of users holding a platform role.
type RoleResolver interface {
	FindUsersWithRole(ctx context.Context, role string) ([]string, error)
}

// Platform role and badge names used by recipient resolution.
const (
	RoleAdmin   = "admin"
	BadgeSharer = "sharer"
)

// OrganizationForVideo locates the organization owning a video through its
// lineage: the workspace's organization when the video lives in a
// workspace, else the child template's, else the parent template's.
func OrganizationForVideo(ctx context.Context, g Gateway, workspaceID, childTemplateID, parentTemplateID string) (*Organization, error) {
	switch {
	case workspaceID != "":
		ws, err := g.Workspace(ctx, workspaceID)
		if err != nil {
			return nil, err
		}
		return g.Organization(ctx, ws.OrganizationID)
	case childTemplateID != "":
		ct, err := g.ChildTemplate(ctx, childTemplateID)
		if err != nil {
			return nil, err
		}
		return g.Organization(ctx, ct.OrganizationID)
	case parentTemplateID != "":
		pt, err := g.ParentTemplate(ctx, parentTemplateID)
		if err != nil {
			return nil, err
		}
		if pt.OrganizationID == "" {
			return nil, ErrNotFound
		}
		return g.Organization(ctx, pt.OrganizationID)
	default:
		return nil, ErrNotFound
	}
}
