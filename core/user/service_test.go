package user_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/user"
	emailsvc "github.com/academia-hub/academia/services/email"
	dummydb "github.com/academia-hub/academia/storage/database/dummy"
)

func TestMain(m *testing.M) {
	core.NewConfig()
	os.Exit(m.Run())
}

func newTestService(t *testing.T) (user.Service, user.Repository) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	repo := dummydb.NewUserRepository(db)
	return user.NewServiceMock(repo, emailsvc.NewConsoleServiceMock()), repo
}

func createActiveUser(t *testing.T, repo user.Repository, email, pwd string, active bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{Name: "Reset Testee", Email: email, Role: user.RoleStudent, IsActive: active, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, usr.SetPassword(pwd))
	usr, err := repo.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

func TestPasswordResetFlow(t *testing.T) {
	svc, repo := newTestService(t)
	usr := createActiveUser(t, repo, "reset.flow@test.cd", "OldPassw0rd!", true)
	createActiveUser(t, repo, "reset.inactive@test.cd", "OldPassw0rd!", false)

	t.Run("unknown email is rejected", func(t *testing.T) {
		err := svc.RequestPasswordReset("who@test.cd")
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("deactivated account is rejected", func(t *testing.T) {
		err := svc.RequestPasswordReset("reset.inactive@test.cd")
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, svc.RequestPasswordReset(usr.Email))

		require.NotEmpty(t, emailsvc.SentMessages)
		msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
		assert.Equal(t, "password-reset", msg.TemplateName)
		data, ok := msg.TemplateData.(struct {
			Name  string
			UID   string
			Token string
		})
		require.True(t, ok, "unexpected template data %T", msg.TemplateData)

		refreshed, err := svc.ResetPassword(user.ResetUserPassword{
			UID:             data.UID,
			Token:           data.Token,
			Password:        "NewPassw0rd!",
			PasswordConfirm: "NewPassw0rd!",
		})
		require.NoError(t, err)
		assert.NoError(t, refreshed.CheckPassword("NewPassw0rd!"))
		assert.Error(t, refreshed.CheckPassword("OldPassw0rd!"))

		// the token is single use: it was derived from the old password hash
		_, err = svc.ResetPassword(user.ResetUserPassword{
			UID:             data.UID,
			Token:           data.Token,
			Password:        "YetAnother1!",
			PasswordConfirm: "YetAnother1!",
		})
		assert.EqualError(t, err, "invalid token")
	})

	t.Run("tampered token is rejected", func(t *testing.T) {
		_, err := svc.ResetPassword(user.ResetUserPassword{
			UID:             user.EncodeUID(usr),
			Token:           "AAAA-forged",
			Password:        "NewPassw0rd!",
			PasswordConfirm: "NewPassw0rd!",
		})
		assert.EqualError(t, err, "invalid token")
	})

	t.Run("unknown uid is rejected", func(t *testing.T) {
		_, err := svc.ResetPassword(user.ResetUserPassword{
			UID:             "bm9wZQ",
			Token:           "AAAA-whatever",
			Password:        "NewPassw0rd!",
			PasswordConfirm: "NewPassw0rd!",
		})
		assert.EqualError(t, err, "invalid token")
	})
}

func TestCreateWithCredentials(t *testing.T) {
	svc, _ := newTestService(t)

	usr, err := svc.CreateWithCredentials(context.Background(), "Onboarded Teacher", "ONBOARD@test.cd", user.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, "onboard@test.cd", usr.Email)
	assert.True(t, usr.IsActive)

	require.NotEmpty(t, emailsvc.SentMessages)
	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	require.Equal(t, "account-credentials", msg.TemplateName)
	data, ok := msg.TemplateData.(struct {
		Name     string
		Email    string
		Password string
	})
	require.True(t, ok, "unexpected template data %T", msg.TemplateData)
	assert.NoError(t, usr.CheckPassword(data.Password))
}
