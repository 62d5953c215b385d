package user_test

import (
	"context"
	"testing"

	"sekolahku/core"
	"sekolahku/core/user"
	emailsvc "sekolahku/services/email"
	inmemdb "sekolahku/storage/database/inmem"
	testutil "sekolahku/tests"
)

func setup(t *testing.T) (user.Service, user.Repository) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}
	repo := inmemdb.NewUserRepository(db)
	return user.NewServiceMock(repo, emailsvc.NewConsoleServiceMock()), repo
}

func TestService_Authenticate(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	parent := testutil.CreateUser(t, repo, "Budi Santoso", "orangtua123", "orangtua@test.id", "secret", user.RoleParent, "std1", true)
	testutil.CreateUser(t, repo, "Sleeper", "sleeper1", "sleeper@test.id", "secret", user.RoleStudent, "", false)

	t.Run("ok", func(t *testing.T) {
		p, err := svc.Authenticate(ctx, "orangtua123", "secret", user.RoleParent)
		if err != nil {
			t.Fatalf("Authenticate(): %v", err)
		}
		if p.ID != parent.ID || p.Role != user.RoleParent || p.LinkedStudentID != "std1" {
			t.Errorf("unexpected principal: %+v", p)
		}

		// successful login is recorded
		usr, err := repo.GetUserByID(ctx, parent.ID)
		if err != nil {
			t.Fatalf("GetUserByID(): %v", err)
		}
		if usr.LastLogin.IsZero() {
			t.Error("last login was not set")
		}
	})

	t.Run("ok by email", func(t *testing.T) {
		if _, err := svc.Authenticate(ctx, "Orangtua@Test.id", "secret", user.RoleParent); err != nil {
			t.Errorf("Authenticate(): %v", err)
		}
	})

	// the failure modes must be indistinguishable
	failures := []struct {
		name  string
		uname string
		pwd   string
		role  string
	}{
		{name: "unknown account", uname: "nobody", pwd: "secret", role: user.RoleParent},
		{name: "wrong password", uname: "orangtua123", pwd: "wrong", role: user.RoleParent},
		{name: "role mismatch", uname: "orangtua123", pwd: "secret", role: user.RoleAdmin},
		{name: "deactivated account", uname: "sleeper1", pwd: "secret", role: user.RoleStudent},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Authenticate(ctx, tt.uname, tt.pwd, tt.role); err != user.ErrInvalidCredentials {
				t.Errorf("Authenticate() error = %v, want %v", err, user.ErrInvalidCredentials)
			}
		})
	}
}

func TestService_CheckUniqueness(t *testing.T) {
	svc, repo := setup(t)

	usr := testutil.CreateUser(t, repo, "Taken", "takenuser", "taken@test.id", "secret", user.RoleTeacher, "", true)

	tests := []struct {
		name      string
		uname     string
		email     string
		excl      []user.User
		wantField string
	}{
		{name: "free", uname: "newuser1", email: "new@test.id"},
		{name: "username taken", uname: "takenuser", email: "new@test.id", wantField: "username"},
		{name: "email taken", uname: "newuser1", email: "taken@test.id", wantField: "email"},
		{name: "self excluded", uname: "takenuser", email: "taken@test.id", excl: []user.User{usr}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CheckUniqueness(tt.uname, tt.email, tt.excl...)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("CheckUniqueness(): %v", err)
				}
				return
			}
			vErr, ok := err.(*core.ValidationError)
			if !ok {
				t.Fatalf("CheckUniqueness() error = %v, want *core.ValidationError", err)
			}
			if len(vErr.Fields) != 1 || vErr.Fields[0].Field != tt.wantField {
				t.Errorf("fields = %+v, want field %s", vErr.Fields, tt.wantField)
			}
		})
	}
}

func TestService_ResetPassword(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Forgetful", "forgetful1", "forgot@test.id", "oldpwd", user.RoleTeacher, "", true)

	token, err := user.MakeToken(usr)
	if err != nil {
		t.Fatalf("MakeToken(): %v", err)
	}
	uid := user.EncodeUID(usr)

	t.Run("tampered token", func(t *testing.T) {
		err := svc.ResetPassword(ctx, user.ResetUserPassword{
			UID: uid, Token: token + "x", Password: "newpwd", PasswordConfirm: "newpwd",
		})
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("ResetPassword() error = %v, want *core.ValidationError", err)
		}
	})

	t.Run("garbage uid", func(t *testing.T) {
		err := svc.ResetPassword(ctx, user.ResetUserPassword{
			UID: "???", Token: token, Password: "newpwd", PasswordConfirm: "newpwd",
		})
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("ResetPassword() error = %v, want *core.ValidationError", err)
		}
	})

	t.Run("ok", func(t *testing.T) {
		err := svc.ResetPassword(ctx, user.ResetUserPassword{
			UID: uid, Token: token, Password: "newpwd", PasswordConfirm: "newpwd",
		})
		if err != nil {
			t.Fatalf("ResetPassword(): %v", err)
		}

		updated, err := repo.GetUserByID(ctx, usr.ID)
		if err != nil {
			t.Fatalf("GetUserByID(): %v", err)
		}
		if err = updated.CheckPassword("newpwd"); err != nil {
			t.Errorf("new password does not verify: %v", err)
		}
		if err = updated.CheckPassword("oldpwd"); err == nil {
			t.Error("old password still verifies")
		}
	})
}

func TestService_RequestPasswordReset(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	testutil.CreateUser(t, repo, "Forgetful", "forgetful2", "forgot2@test.id", "oldpwd", user.RoleParent, "", true)

	if err := svc.RequestPasswordReset(ctx, "nobody@test.id"); err != user.ErrNotFound {
		t.Errorf("RequestPasswordReset() error = %v, want %v", err, user.ErrNotFound)
	}

	before := len(emailsvc.SentMessages)
	if err := svc.RequestPasswordReset(ctx, "forgot2@test.id"); err != nil {
		t.Fatalf("RequestPasswordReset(): %v", err)
	}
	if len(emailsvc.SentMessages) != before+1 {
		t.Fatalf("sent %d messages, want 1", len(emailsvc.SentMessages)-before)
	}
	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	if msg.Subject != "Password Reset" {
		t.Errorf("subject = %s, want Password Reset", msg.Subject)
	}
	if len(msg.To) != 1 || msg.To[0].Address != "forgot2@test.id" {
		t.Errorf("recipients = %v, want forgot2@test.id", msg.To)
	}
}
