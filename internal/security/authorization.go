package security

import (
	"log/slog"

	"github.com/yourorg/qaboard/internal/domain"
)

// Role represents a user role
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Permission represents an action permission
type Permission string

const (
	PermAskQuestion  Permission = "ask_question"
	PermPostAnswer   Permission = "post_answer"
	PermCastVote     Permission = "cast_vote"
	PermAcceptAnswer Permission = "accept_answer"
	PermManageUsers  Permission = "manage_users"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermAskQuestion,
		PermPostAnswer,
		PermCastVote,
		PermAcceptAnswer,
		PermManageUsers,
	},
	RoleModerator: {
		PermAskQuestion,
		PermPostAnswer,
		PermCastVote,
		PermAcceptAnswer,
	},
	RoleUser: {
		PermAskQuestion,
		PermPostAnswer,
		PermCastVote,
		PermAcceptAnswer,
	},
}

// AuthorizationService handles authorization checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{logger: logger}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission validates that a role has a specific permission
func (as *AuthorizationService) ValidatePermission(role Role, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return domain.NewForbiddenError("insufficient permissions")
	}
	return nil
}

// CanAcceptAnswer is the single authorship policy for acceptance:
// only the question's author may accept one of its answers.
func (as *AuthorizationService) CanAcceptAnswer(callerID string, question *domain.Question) error {
	if callerID != question.AuthorID {
		as.logger.Warn("acceptance denied",
			slog.String("caller_id", callerID),
			slog.String("question_id", question.ID),
		)
		return domain.NewForbiddenError("only the question author can accept an answer")
	}
	return nil
}
