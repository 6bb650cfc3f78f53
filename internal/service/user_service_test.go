package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-account-service/internal/model"
	"go-account-service/internal/repository"
	"go-account-service/pkg/apierror"
)

type userTestKit struct {
	svc      *UserService
	users    *repository.MemoryUserStore
	sessions *fakeSessionStore
	objects  *fakeObjectStore
	mailer   *fakeMailer
}

func newUserTestKit(t *testing.T) *userTestKit {
	t.Helper()

	users := repository.NewMemoryUserStore()
	sessions := newFakeSessionStore()
	objects := newFakeObjectStore()
	m := &fakeMailer{}

	return &userTestKit{
		svc:      NewUserService(users, sessions, objects, m),
		users:    users,
		sessions: sessions,
		objects:  objects,
		mailer:   m,
	}
}

func (k *userTestKit) seedUser(t *testing.T, password string) model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := model.User{
		ID:           uuid.NewString(),
		FullName:     "Dana Miller",
		Username:     "dana",
		Email:        "dana@example.com",
		PasswordHash: string(hash),
		IsVerified:   true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	k.users.Seed(u)
	return u
}

func TestGetDetails(t *testing.T) {
	kit := newUserTestKit(t)
	u := kit.seedUser(t, "secret123")

	profile, err := kit.svc.GetDetails(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, profile.ID)
	assert.Equal(t, "dana@example.com", profile.Email)
}

func TestGetDetails_UnknownUser(t *testing.T) {
	kit := newUserTestKit(t)

	_, err := kit.svc.GetDetails(context.Background(), uuid.NewString())
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.HTTPStatus)
}

func TestUpdateDetails(t *testing.T) {
	kit := newUserTestKit(t)
	u := kit.seedUser(t, "secret123")

	profile, err := kit.svc.UpdateDetails(context.Background(), u.ID, model.UpdateDetailsRequest{
		FullName:    "Dana R. Miller",
		Username:    "Dana_R",
		Email:       "dana@example.com",
		Phone:       "+1 555 0100",
		Address:     "12 Elm St",
		Gender:      "female",
		DateOfBirth: "1990-04-02",
	})
	require.NoError(t, err)

	assert.Equal(t, "Dana R. Miller", profile.FullName)
	assert.Equal(t, "dana_r", profile.Username)
	assert.Equal(t, "+1 555 0100", profile.Phone)

	stored, err := kit.users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "dana_r", stored.Username)
	assert.Equal(t, "12 Elm St", stored.Address)
}

func TestUpdateDetails_UsernameTaken(t *testing.T) {
	kit := newUserTestKit(t)
	u := kit.seedUser(t, "secret123")
	kit.users.Seed(model.User{
		ID:       uuid.NewString(),
		FullName: "Other",
		Username: "taken",
		Email:    "other@example.com",
	})

	_, err := kit.svc.UpdateDetails(context.Background(), u.ID, model.UpdateDetailsRequest{
		FullName: "Dana Miller",
		Username: "Taken",
		Email:    "dana@example.com",
	})
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.HTTPStatus)
	assert.Contains(t, apiErr.Message, "username")
}

func TestUpdateDetails_KeepOwnUsername(t *testing.T) {
	kit := newUserTestKit(t)
	u := kit.seedUser(t, "secret123")

	// Re-submitting the current username must not trip the uniqueness check.
	profile, err := kit.svc.UpdateDetails(context.Background(), u.ID, model.UpdateDetailsRequest{
		FullName: "Dana Miller",
		Username: "DANA",
		Email:    "dana@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "dana", profile.Username)
}

func TestUpdateDetails_MissingFields(t *testing.T) {
	kit := newUserTestKit(t)
	u := kit.seedUser(t, "secret123")

	_, err := kit.svc.UpdateDetails(context.Background(), u.ID, model.UpdateDetailsRequest{
		FullName: "Dana Miller",
	})
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.HTTPStatus)
}

func TestUpdatePassword(t *testing.T) {
	kit := newUserTestKit(t)
	u := kit.seedUser(t, "old-password")

	err := kit.svc.UpdatePassword(context.Background(), u.ID, "old-password", "new-password")
	require.NoError(t, err)

	stored, err := kit.users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-password")))
	assert.Contains(t, kit.mailer.resetSuccessTo, u.Email)
}

func TestUpdatePassword_WrongCurrentPassword(t *testing.T) {
	kit := newUserTestKit(t)
	u := kit.seedUser(t, "old-password")

	err := kit.svc.UpdatePassword(context.Background(), u.ID, "guess", "new-password")
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.HTTPStatus)

	stored, findErr := kit.users.FindByID(context.Background(), u.ID)
	require.NoError(t, findErr)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("old-password")))
}

func TestUpdatePassword_MissingFields(t *testing.T) {
	kit := newUserTestKit(t)
	u := kit.seedUser(t, "old-password")

	err := kit.svc.UpdatePassword(context.Background(), u.ID, "", "new-password")
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.HTTPStatus)
}

func TestUpdateAvatar(t *testing.T) {
	kit := newUserTestKit(t)
	u := kit.seedUser(t, "secret123")

	url, err := kit.svc.UpdateAvatar(context.Background(), u.ID, bytes.NewReader(testPNG(t, 64, 64)))
	require.NoError(t, err)
	assert.Equal(t, "http://objects.local/avatars/"+u.ID+".jpg", url)

	kit.objects.mu.Lock()
	_, stored := kit.objects.objects["avatars/"+u.ID+".jpg"]
	kit.objects.mu.Unlock()
	assert.True(t, stored)

	user, err := kit.users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, url, user.AvatarURL)
}

func TestUpdateAvatar_RejectsNonImage(t *testing.T) {
	kit := newUserTestKit(t)
	u := kit.seedUser(t, "secret123")

	_, err := kit.svc.UpdateAvatar(context.Background(), u.ID, strings.NewReader("definitely not an image"))
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.HTTPStatus)
}

func TestDeleteAccount(t *testing.T) {
	kit := newUserTestKit(t)
	u := kit.seedUser(t, "secret123")

	_, err := kit.svc.UpdateAvatar(context.Background(), u.ID, bytes.NewReader(testPNG(t, 32, 32)))
	require.NoError(t, err)
	require.NoError(t, kit.sessions.Store(context.Background(), u.ID, "some-refresh-token"))

	require.NoError(t, kit.svc.DeleteAccount(context.Background(), u.ID))

	_, err = kit.users.FindByID(context.Background(), u.ID)
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	kit.objects.mu.Lock()
	_, stillThere := kit.objects.objects["avatars/"+u.ID+".jpg"]
	kit.objects.mu.Unlock()
	assert.False(t, stillThere)

	_, err = kit.sessions.Lookup(context.Background(), u.ID)
	assert.ErrorIs(t, err, model.ErrTokenNotFound)
}

func TestDeleteAccount_UnknownUser(t *testing.T) {
	kit := newUserTestKit(t)

	err := kit.svc.DeleteAccount(context.Background(), uuid.NewString())
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.HTTPStatus)
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
