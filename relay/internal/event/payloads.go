package event

// Typed payloads for the routed event set. Shapes are shared between event
// types that carry identical fields; the envelope Type stays the
// discriminant.

// ErrorRaised carries a generation or bot error log.
// Types: BotErrorWasRaised, VideoGenerationErrorWasRaised.
type ErrorRaised struct {
	ErrorLog string `json:"error_log"`
}

// BotSwitchedToBranch reports the bot source branch switch.
type BotSwitchedToBranch struct {
	SourceBranch string `json:"source_branch"`
}

// BotDeployed is the full deployment record of a rendering bot.
type BotDeployed struct {
	AuthKey      string `json:"auth_key"`
	CreatorID    string `json:"creator_id"`
	CreatedAt    string `json:"created_at"`
	FlavorID     string `json:"flavor_id"`
	IPAddress    string `json:"ip_address"`
	LicenseID    string `json:"license_id"`
	OSImageID    string `json:"os_image_id"`
	ServerID     string `json:"server_id"`
	SnapshotID   string `json:"snapshot_id"`
	SourceBranch string `json:"source_branch"`
	State        string `json:"state"`
	Name         string `json:"name"`
}

// Flagged carries only a removal/reboot flag object.
// Types: BotWasRebooted, BotWasRemoved, LicenseWasRemoved.
type Flagged struct {
	Flag map[string]any `json:"flag"`
}

// Patched carries an opaque patch object.
// Types: BotWasChanged, LicenseWasChanged.
type Patched struct {
	Patch map[string]any `json:"patch"`
}

// ChildTemplateChanged carries the changed child template id and patch.
type ChildTemplateChanged struct {
	ChildTemplateID string         `json:"child_template_id"`
	Patch           map[string]any `json:"patch"`
}

// ChildTemplateCreated identifies the new child template and its owners.
type ChildTemplateCreated struct {
	ChildTemplateID string `json:"child_template_id"`
	OrganizationID  string `json:"organization_id"`
	WorkspaceID     string `json:"workspace_id"`
}

// ChildTemplateRemoved carries the removed child template id and flag.
type ChildTemplateRemoved struct {
	ChildTemplateID string         `json:"child_template_id"`
	Flag            map[string]any `json:"flag"`
}

// LicenseAttributedToBot links a license to a bot.
type LicenseAttributedToBot struct {
	LicenseID string `json:"license_id"`
	BotID     string `json:"bot_id"`
}

// LicenseCreated is the full creation record of a license.
type LicenseCreated struct {
	LicenseID string `json:"license_id"`
	CreatorID string `json:"creator_id"`
	CreatedAt string `json:"created_at"`
	State     string `json:"state"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// UserNotifications identifies a batch of notifications on a user.
// Types: NotificationsWereRemovedFromUser, UserNotificationsWereMarkedAsBeingRead.
type UserNotifications struct {
	UserID          string   `json:"user_id"`
	NotificationIDs []string `json:"notification_ids"`
}

// Badge is an organization badge scoped to a workspace.
type Badge struct {
	WorkspaceID string `json:"workspace_id"`
	Badge       string `json:"badge"`
}

// UserBadge reports a badge grant or revocation on a user.
// Types: OrganizationBadgeWasAddedToUser, OrganizationBadgeWasRemovedFromUser.
type UserBadge struct {
	UserID            string `json:"user_id"`
	OrganizationBadge Badge  `json:"organization_badge"`
}

// OrganizationPlan reports a plan lifecycle change.
// Types: OrganizationPlanWasChanged, OrganizationPlanWasStarted.
type OrganizationPlan struct {
	OrganizationID string         `json:"organization_id"`
	Plan           map[string]any `json:"plan"`
}

// OrganizationChanged carries the organization patch.
type OrganizationChanged struct {
	OrganizationID string         `json:"organization_id"`
	Patch          map[string]any `json:"patch"`
}

// OrganizationBalance reports a credit or debit.
// Types: OrganizationWasCredited, OrganizationWasDebited.
type OrganizationBalance struct {
	OrganizationID string `json:"organization_id"`
	Amount         int64  `json:"amount"`
}

// ParentTemplateTouched identifies a parent template for events with no
// routed payload fields.
// Types: ParentTemplateConfigThumbnailWasChanged, ParentTemplateWasPruned.
type ParentTemplateTouched struct {
	ParentTemplateID string `json:"parent_template_id"`
}

// ParentTemplateChanged carries the parent template patch.
type ParentTemplateChanged struct {
	ParentTemplateID string         `json:"parent_template_id"`
	Patch            map[string]any `json:"patch"`
}

// ParentTemplateCreated identifies the new parent template and its owner, if
// any. Global templates have no organization.
type ParentTemplateCreated struct {
	ParentTemplateID string `json:"parent_template_id"`
	OrganizationID   string `json:"organization_id"`
}

// ParentTemplateRemoved carries the removed parent template id and flag.
type ParentTemplateRemoved struct {
	ParentTemplateID string         `json:"parent_template_id"`
	Flag             map[string]any `json:"flag"`
}

// UserAccountChanged carries the account patch.
type UserAccountChanged struct {
	UserID string         `json:"user_id"`
	Patch  map[string]any `json:"patch"`
}

// UserNotificationSettingChanged toggles one notification subject.
type UserNotificationSettingChanged struct {
	UserID  string `json:"user_id"`
	Subject string `json:"subject"`
	State   bool   `json:"state"`
}

// UserProfileChanged carries the profile patch.
type UserProfileChanged struct {
	UserID string         `json:"user_id"`
	Patch  map[string]any `json:"patch"`
}

// UserActivated is the activation record of a user.
type UserActivated struct {
	UserID          string         `json:"user_id"`
	EncodedPassword map[string]any `json:"encoded_password"`
	Job             string         `json:"job"`
	Names           map[string]any `json:"names"`
	Phone           string         `json:"phone"`
}

// UserFlagged carries a user id plus flag object.
// Types: UserWasLocked, UserWasPokedForActivation.
type UserFlagged struct {
	UserID string         `json:"user_id"`
	Flag   map[string]any `json:"flag"`
}

// UserNotified carries the full notification object created for a user.
// The notification is kept opaque: it is relayed whole to the client.
type UserNotified struct {
	UserID       string         `json:"user_id"`
	Notification map[string]any `json:"notification"`
}

// NotificationID returns the id field of the notification, or "".
func (p UserNotified) NotificationID() string {
	id, _ := p.Notification["id"].(string)
	return id
}

// NotificationWorkspaceID returns the workspace_id field of the
// notification, or "" when the notification is not workspace-scoped.
func (p UserNotified) NotificationWorkspaceID() string {
	id, _ := p.Notification["workspace_id"].(string)
	return id
}

// UserRegisteredByEmail reports a registration, possibly scoped to an
// organization (empty for open registration).
type UserRegisteredByEmail struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
}

// VideoTouched identifies a video for events with no routed payload fields.
// Types: VideoBecameOrphan, VideoWasReinitialized.
type VideoTouched struct {
	VideoID string `json:"video_id"`
}

// VideoSocialPostStateChanged reports a social post state transition.
type VideoSocialPostStateChanged struct {
	VideoID string `json:"video_id"`
	PostID  string `json:"post_id"`
	State   string `json:"state"`
}

// VideoSocialPostDiscarded identifies a discarded social post.
type VideoSocialPostDiscarded struct {
	VideoID string `json:"video_id"`
	PostID  string `json:"post_id"`
}

// VideoSocialPostScheduled is the scheduling record of a social post.
type VideoSocialPostScheduled struct {
	VideoID       string         `json:"video_id"`
	PostID        string         `json:"post_id"`
	By            map[string]any `json:"by"`
	Network       string         `json:"network"`
	RemoteSpaceID string         `json:"remote_space_id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	ScheduledFor  string         `json:"scheduled_for"`
}

// VideoChanged carries the video patch.
type VideoChanged struct {
	VideoID string         `json:"video_id"`
	Patch   map[string]any `json:"patch"`
}

// VideoCreated identifies the new video and its template/workspace lineage.
// Exactly one of WorkspaceID, ChildTemplateID, ParentTemplateID locates the
// owning organization.
type VideoCreated struct {
	VideoID          string `json:"video_id"`
	WorkspaceID      string `json:"workspace_id"`
	ChildTemplateID  string `json:"child_template_id"`
	ParentTemplateID string `json:"parent_template_id"`
}

// VideoMovedToWorkspace reports a video move.
type VideoMovedToWorkspace struct {
	VideoID     string `json:"video_id"`
	WorkspaceID string `json:"workspace_id"`
}

// VideoPostedOnSocials reports a successful remote publication.
type VideoPostedOnSocials struct {
	VideoID      string `json:"video_id"`
	PostID       string `json:"post_id"`
	RemotePostID string `json:"remote_post_id"`
}

// VideoRemoved carries the removed video id and flag.
type VideoRemoved struct {
	VideoID string         `json:"video_id"`
	Flag    map[string]any `json:"flag"`
}

// WorkspaceChanged carries the workspace patch.
type WorkspaceChanged struct {
	WorkspaceID string         `json:"workspace_id"`
	Patch       map[string]any `json:"patch"`
}

// WorkspaceCreated is the creation record of a workspace.
type WorkspaceCreated struct {
	WorkspaceID    string `json:"workspace_id"`
	CreatedAt      string `json:"created_at"`
	CreatorID      string `json:"creator_id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
}
