package service

import (
	"context"
	"errors"
	"testing"

	"chorequest/internal/models"
	"chorequest/internal/validation"
)

func TestCreateFamilyMakesPrimary(t *testing.T) {
	env := newTestEnv(t)
	user, actor, family := env.createGuardian(t, "alice")

	member, err := env.familyRepo.GetMember(family.ID, user.ID)
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if member == nil {
		t.Fatal("creator should be a member")
	}
	if member.Role != models.RolePrimary || member.Permission != models.PermissionFull {
		t.Errorf("creator = %s/%s, want primary/full", member.Role, member.Permission)
	}
	if family.JoinCode == "" {
		t.Error("family should get a join code")
	}

	detail, kids, err := env.families.GetFamily(actor, family.ID)
	if err != nil {
		t.Fatalf("GetFamily failed: %v", err)
	}
	if len(detail.Members) != 1 || len(kids) != 0 {
		t.Errorf("members = %d kids = %d, want 1/0", len(detail.Members), len(kids))
	}
}

func TestEnsureDefaultFamily(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.families.EnsureDefaultFamily("My Family")
	if err != nil {
		t.Fatalf("EnsureDefaultFamily failed: %v", err)
	}
	if !first.IsDefault {
		t.Error("bootstrap family should be the default")
	}

	second, err := env.families.EnsureDefaultFamily("My Family")
	if err != nil {
		t.Fatalf("EnsureDefaultFamily failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second call created a new family: %d != %d", second.ID, first.ID)
	}
}

func TestJoinByCode(t *testing.T) {
	env := newTestEnv(t)
	_, _, family := env.createGuardian(t, "alice")
	joiner, _, _ := env.createGuardian(t, "bob")

	joined, err := env.families.JoinByCode(joiner.ID, family.JoinCode)
	if err != nil {
		t.Fatalf("JoinByCode failed: %v", err)
	}
	if joined.ID != family.ID {
		t.Errorf("joined family %d, want %d", joined.ID, family.ID)
	}

	member, _ := env.familyRepo.GetMember(family.ID, joiner.ID)
	if member == nil {
		t.Fatal("joiner should be a member")
	}
	if member.Role != models.RoleParent || member.Permission != models.PermissionManage {
		t.Errorf("joiner = %s/%s, want parent/manage", member.Role, member.Permission)
	}

	if _, err := env.families.JoinByCode(joiner.ID, "nope1234"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown code should be not found, got %v", err)
	}
}

func TestInvitationFlow(t *testing.T) {
	env := newTestEnv(t)
	_, primary, family := env.createGuardian(t, "alice")
	grandma, _, _ := env.createGuardian(t, "carol")
	ctx := context.Background()

	t.Run("only the primary invites", func(t *testing.T) {
		_, manager := env.addGuardian(t, family.ID, models.RoleParent, models.PermissionManage)
		_, err := env.families.InviteMember(ctx, manager, family.ID, "x@example.com", models.RoleGuardian, models.PermissionView)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("nobody is invited as primary", func(t *testing.T) {
		var validationErr validation.ValidationError
		_, err := env.families.InviteMember(ctx, primary, family.ID, "x@example.com", models.RolePrimary, models.PermissionFull)
		if !errors.As(err, &validationErr) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("invitation carries role and permission", func(t *testing.T) {
		invitation, err := env.families.InviteMember(ctx, primary, family.ID, "carol@example.com", models.RoleGrandparent, models.PermissionComment)
		if err != nil {
			t.Fatalf("InviteMember failed: %v", err)
		}
		if invitation.Code == "" {
			t.Fatal("invitation should carry a code")
		}

		joined, err := env.families.AcceptInvitation(grandma.ID, invitation.Code)
		if err != nil {
			t.Fatalf("AcceptInvitation failed: %v", err)
		}
		if joined.ID != family.ID {
			t.Errorf("joined family %d, want %d", joined.ID, family.ID)
		}
		member, _ := env.familyRepo.GetMember(family.ID, grandma.ID)
		if member.Role != models.RoleGrandparent || member.Permission != models.PermissionComment {
			t.Errorf("member = %s/%s, want grandparent/comment", member.Role, member.Permission)
		}

		// Consumed codes admit nobody else.
		late, _, _ := env.createGuardian(t, "dave")
		if _, err := env.families.AcceptInvitation(late.ID, invitation.Code); !errors.Is(err, ErrNotFound) {
			t.Errorf("used invitation should be not found, got %v", err)
		}
	})
}

func TestMemberManagement(t *testing.T) {
	env := newTestEnv(t)
	primaryUser, primary, family := env.createGuardian(t, "alice")
	memberUser, _ := env.addGuardian(t, family.ID, models.RoleParent, models.PermissionManage)

	t.Run("primary demotes a member", func(t *testing.T) {
		updated, err := env.families.UpdateMember(primary, family.ID, memberUser.ID, models.RoleParent, models.PermissionView)
		if err != nil {
			t.Fatalf("UpdateMember failed: %v", err)
		}
		if updated.Permission != models.PermissionView {
			t.Errorf("permission = %s, want view", updated.Permission)
		}
	})

	t.Run("primary row is immutable", func(t *testing.T) {
		if _, err := env.families.UpdateMember(primary, family.ID, primaryUser.ID, models.RoleParent, models.PermissionView); !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
		if err := env.families.RemoveMember(primary, family.ID, primaryUser.ID); !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("primary removes a member", func(t *testing.T) {
		if err := env.families.RemoveMember(primary, family.ID, memberUser.ID); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		member, _ := env.familyRepo.GetMember(family.ID, memberUser.ID)
		if member != nil {
			t.Error("member should be gone")
		}
	})
}

func TestDeleteFamily(t *testing.T) {
	env := newTestEnv(t)
	_, primary, family := env.createGuardian(t, "alice")

	t.Run("default family cannot be deleted", func(t *testing.T) {
		def, err := env.families.EnsureDefaultFamily("My Family")
		if err != nil {
			t.Fatalf("EnsureDefaultFamily failed: %v", err)
		}
		err = env.families.DeleteFamily(Actor{IsAdmin: true}, def.ID)
		var validationErr validation.ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("primary deletes their family", func(t *testing.T) {
		if err := env.families.DeleteFamily(primary, family.ID); err != nil {
			t.Fatalf("DeleteFamily failed: %v", err)
		}
		if _, _, err := env.families.GetFamily(Actor{IsAdmin: true}, family.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("deleted family should be not found, got %v", err)
		}
	})
}

func TestKidCredentials(t *testing.T) {
	env := newTestEnv(t)
	_, guardian, family := env.createGuardian(t, "alice")

	kid, pin, err := env.families.CreateKid(guardian, family.ID, "Ben", "green")
	if err != nil {
		t.Fatalf("CreateKid failed: %v", err)
	}
	if len(pin) != 4 {
		t.Errorf("PIN length = %d, want 4", len(pin))
	}
	if kid.AccessToken == "" {
		t.Fatal("kid should get an access token")
	}
	if kid.PINHash == pin {
		t.Error("PIN must not be stored in plaintext")
	}

	t.Run("access token authenticates the kid", func(t *testing.T) {
		found, err := env.auth.AuthenticateKid(kid.AccessToken)
		if err != nil {
			t.Fatalf("AuthenticateKid failed: %v", err)
		}
		if found.ID != kid.ID {
			t.Errorf("authenticated kid %d, want %d", found.ID, kid.ID)
		}
	})

	t.Run("PIN verifies and rejects", func(t *testing.T) {
		if err := env.auth.VerifyKidPIN(kid.ID, pin); err != nil {
			t.Errorf("correct PIN rejected: %v", err)
		}
		if err := env.auth.VerifyKidPIN(kid.ID, "0000"); !errors.Is(err, ErrForbidden) && pin != "0000" {
			t.Errorf("wrong PIN should be forbidden, got %v", err)
		}
	})

	t.Run("rotation invalidates the old token", func(t *testing.T) {
		oldToken := kid.AccessToken
		rotated, err := env.families.RotateKidAccessToken(guardian, kid.ID)
		if err != nil {
			t.Fatalf("RotateKidAccessToken failed: %v", err)
		}
		if rotated.AccessToken == oldToken {
			t.Fatal("rotation should change the token")
		}
		if _, err := env.auth.AuthenticateKid(oldToken); !errors.Is(err, ErrForbidden) {
			t.Errorf("old token should be rejected, got %v", err)
		}
	})
}
