package user

import (
	"context"
	"io"
	"testing"

	userRepo "machly/database/repository/user"
	"machly/models"
	"machly/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserRepo struct {
	users map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*models.User)}
}

func (r *memUserRepo) GetByID(id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, userRepo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetAll(role string) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *memUserRepo) Create(u *models.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) Update(u *models.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return userRepo.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) Delete(id string) error {
	if _, ok := r.users[id]; !ok {
		return userRepo.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) Count() (int64, error) { return int64(len(r.users)), nil }

func (r *memUserRepo) CountByRole(role string) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *memUserRepo) CountUnverifiedProviders() (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == models.RoleProvider && !u.Verified {
			n++
		}
	}
	return n, nil
}

type stubStorage struct{}

func (stubStorage) UploadImage(ctx context.Context, file io.Reader, folder string) (string, error) {
	return "https://cdn.test/" + folder + "/photo.jpg", nil
}

func (stubStorage) Delete(ctx context.Context, publicID string) error { return nil }

func newTestService() (*DefaultUserService, *memUserRepo) {
	repo := newMemUserRepo()
	return NewDefaultUserService(repo, stubStorage{}), repo
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Name:     "Ana",
		Lastname: "Quispe",
		Email:    "Ana@Example.com",
		Password: "correct-horse",
		Role:     models.RoleRenter,
	}
}

func TestRegister(t *testing.T) {
	svc, repo := newTestService()

	created, err := svc.Register(validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", created.Email)
	assert.Equal(t, models.RoleRenter, created.Role)
	assert.NotEqual(t, "correct-horse", created.PasswordHash)
	assert.Len(t, repo.users, 1)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()

	req := validRegistration()
	req.Email = "not-an-email"
	_, err := svc.Register(req)
	assert.ErrorIs(t, err, ErrInvalid)

	req = validRegistration()
	req.Password = "short"
	_, err = svc.Register(req)
	assert.ErrorIs(t, err, ErrInvalid)

	// Admin accounts cannot be self-registered.
	req = validRegistration()
	req.Role = models.RoleAdmin
	_, err = svc.Register(req)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(validRegistration())
	require.NoError(t, err)

	// Same email with different case is still taken.
	req := validRegistration()
	req.Email = "ANA@example.com"
	_, err = svc.Register(req)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(validRegistration())
	require.NoError(t, err)

	resp, err := svc.Authenticate("ana@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ana@example.com", resp.User.Email)

	id, role, err := utils.ExtractActorFromToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, id)
	assert.Equal(t, models.RoleRenter, role)

	_, err = svc.Authenticate("ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.Register(validRegistration())
	require.NoError(t, err)
	actor := models.Actor{ID: created.ID, Role: created.Role}

	updated, err := svc.UpdateProfile(actor, ProfileRequest{Name: "Ana Maria", Phone: "+51 999 888 777"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, "Quispe", updated.Lastname)
	assert.Equal(t, "+51 999 888 777", updated.Phone)

	_, err = svc.UpdateProfile(models.Actor{ID: "missing"}, ProfileRequest{Name: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.Register(validRegistration())
	require.NoError(t, err)
	actor := models.Actor{ID: created.ID, Role: created.Role}

	err = svc.ChangePassword(actor, "wrong", "brand-new-password")
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(actor, "correct-horse", "short")
	assert.ErrorIs(t, err, ErrInvalid)

	require.NoError(t, svc.ChangePassword(actor, "correct-horse", "brand-new-password"))

	_, err = svc.Authenticate("ana@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("ana@example.com", "brand-new-password")
	assert.NoError(t, err)
}

func TestUploadAvatar(t *testing.T) {
	svc, repo := newTestService()
	created, err := svc.Register(validRegistration())
	require.NoError(t, err)
	actor := models.Actor{ID: created.ID, Role: created.Role}

	url, err := svc.UploadAvatar(context.Background(), actor, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, url)
	assert.Equal(t, url, repo.users[created.ID].PhotoURL)
}
