package authority

import "fmt"

// The permission catalog is a closed enumeration, organized by domain.
// New permissions are added here and nowhere else.
const (
	ContentView            Permission = "content.view"
	ContentCreate          Permission = "content.create"
	ContentEdit            Permission = "content.edit"
	ContentDelete          Permission = "content.delete"
	ContentSubmitForReview Permission = "content.submit_for_review"
	ContentApprove         Permission = "content.approve"
	ContentViewSubmissions Permission = "content.view_submissions"

	UsersView        Permission = "users.view"
	UsersCreate      Permission = "users.create"
	UsersEdit        Permission = "users.edit"
	UsersDelete      Permission = "users.delete"
	UsersManageRoles Permission = "users.manage_roles"

	FinanceView    Permission = "finance.view"
	FinanceManage  Permission = "finance.manage"
	FinanceRefunds Permission = "finance.refunds"

	AnalyticsView   Permission = "analytics.view"
	AnalyticsExport Permission = "analytics.export"

	SettingsView Permission = "settings.view"
	SettingsEdit Permission = "settings.edit"

	SupportViewTickets Permission = "support.view_tickets"
	SupportRespond     Permission = "support.respond"

	MediaUpload Permission = "media.upload"
	MediaManage Permission = "media.manage"

	ConsultantViewCases    Permission = "consultant.view_cases"
	ConsultantManageCases  Permission = "consultant.manage_cases"
	ConsultantRespondCases Permission = "consultant.respond_cases"

	CommentsView     Permission = "comments.view"
	CommentsPost     Permission = "comments.post"
	CommentsModerate Permission = "comments.moderate"

	ContractsView      Permission = "contracts.view"
	ContractsCreate    Permission = "contracts.create"
	ContractsEdit      Permission = "contracts.edit"
	ContractsDelete    Permission = "contracts.delete"
	ContractsSign      Permission = "contracts.sign"
	ContractsTerminate Permission = "contracts.terminate"
)

var allPermissions = Permissions{
	ContentView, ContentCreate, ContentEdit, ContentDelete,
	ContentSubmitForReview, ContentApprove, ContentViewSubmissions,
	UsersView, UsersCreate, UsersEdit, UsersDelete, UsersManageRoles,
	FinanceView, FinanceManage, FinanceRefunds,
	AnalyticsView, AnalyticsExport,
	SettingsView, SettingsEdit,
	SupportViewTickets, SupportRespond,
	MediaUpload, MediaManage,
	ConsultantViewCases, ConsultantManageCases, ConsultantRespondCases,
	CommentsView, CommentsPost, CommentsModerate,
	ContractsView, ContractsCreate, ContractsEdit, ContractsDelete,
	ContractsSign, ContractsTerminate,
}

// rolePermissions is loaded once and never mutated afterwards.
var rolePermissions = map[Role]Permissions{
	RoleOwner: allPermissions,

	RoleAdmin: {
		ContentView, ContentCreate, ContentEdit, ContentDelete,
		ContentSubmitForReview, ContentApprove, ContentViewSubmissions,
		UsersView, UsersCreate, UsersEdit, UsersDelete, UsersManageRoles,
		FinanceView, FinanceManage,
		AnalyticsView, AnalyticsExport,
		SettingsView,
		SupportViewTickets, SupportRespond,
		MediaUpload, MediaManage,
		CommentsView, CommentsPost, CommentsModerate,
		ContractsView, ContractsCreate, ContractsEdit, ContractsDelete,
		ContractsSign, ContractsTerminate,
	},

	// editor and consultant are deliberately disjoint sets,
	// neither is a subset of the other
	RoleEditor: {
		ContentView, ContentCreate, ContentEdit, ContentSubmitForReview,
		MediaUpload,
		CommentsView, CommentsPost,
	},

	RoleConsultant: {
		ConsultantViewCases, ConsultantManageCases, ConsultantRespondCases,
		ContractsView, ContractsSign,
		SupportRespond,
	},

	RoleViewer: {
		ContentView,
		CommentsView,
	},
}

var roleRanks = map[Role]int{
	RoleOwner:      50,
	RoleAdmin:      40,
	RoleEditor:     30,
	RoleConsultant: 20,
	RoleViewer:     10,
}

func init() {
	for _, role := range AllRoles() {
		if len(rolePermissions[role]) == 0 {
			panic(fmt.Sprintf("permission matrix has no entry for role %s", role))
		}
		if roleRanks[role] == 0 {
			panic(fmt.Sprintf("role rank is not defined for role %s", role))
		}
	}
}

// PermissionsOf returns a copy; callers must not be able to mutate the matrix.
func PermissionsOf(role Role) Permissions {
	perms := rolePermissions[role]
	r := make(Permissions, len(perms))
	copy(r, perms)
	return r
}

func HasPermission(role Role, perm Permission) bool {
	return rolePermissions[role].HasPermission(perm)
}

// Rank returns the privilege rank of a role, higher is more privileged.
// Unknown roles rank zero, below every real role.
func Rank(role Role) int {
	return roleRanks[role]
}

// CanManage reports whether actorRole may manage a user holding targetRole.
// An owner may only ever be managed by an owner, whatever the numeric
// ranks say. For every other target a strictly higher rank is required.
func CanManage(actorRole, targetRole Role) bool {
	if targetRole == RoleOwner {
		return actorRole == RoleOwner
	}
	return Rank(actorRole) > Rank(targetRole)
}
