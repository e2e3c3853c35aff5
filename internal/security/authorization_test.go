package security

import (
	"testing"

	"github.com/yourorg/qaboard/internal/domain"
)

func TestHasPermission(t *testing.T) {
	s := NewAuthorizationService(nil)

	if !s.HasPermission(RoleUser, PermAskQuestion) {
		t.Fatalf("expected user to be allowed to ask questions")
	}
	if s.HasPermission(RoleUser, PermManageUsers) {
		t.Fatalf("expected user to be denied user management")
	}
	if !s.HasPermission(RoleAdmin, PermManageUsers) {
		t.Fatalf("expected admin to be allowed user management")
	}
	if s.HasPermission(Role("ghost"), PermAskQuestion) {
		t.Fatalf("expected unknown role to have no permissions")
	}
}

func TestValidatePermission(t *testing.T) {
	s := NewAuthorizationService(nil)

	if err := s.ValidatePermission(RoleUser, PermCastVote); err != nil {
		t.Fatalf("expected permission granted, got %v", err)
	}
	if err := s.ValidatePermission(RoleModerator, PermManageUsers); !domain.IsCode(err, domain.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCanAcceptAnswer(t *testing.T) {
	s := NewAuthorizationService(nil)
	question := &domain.Question{ID: "q-1", AuthorID: "asker"}

	if err := s.CanAcceptAnswer("asker", question); err != nil {
		t.Fatalf("expected author to be allowed, got %v", err)
	}
	if err := s.CanAcceptAnswer("someone-else", question); !domain.IsCode(err, domain.CodeForbidden) {
		t.Fatalf("expected forbidden for non-author, got %v", err)
	}
}
