package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/validate"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv/mock"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() model.UserProfile {
	return model.UserProfile{
		Email:   "ada@example.com",
		Name:    "Ada Lovelace",
		Phone:   "0800",
		Address: "1 Analytical St",
		City:    "Lagos",
		State:   "Lagos",
		Country: "Nigeria",
	}
}

func TestRepositoryKeyLayout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock.NewMockStore(ctrl)
	repo := NewRepository(store)

	store.EXPECT().
		Set(gomock.Any(), "sess-1:user", gomock.Any()).
		DoAndReturn(func(ctx context.Context, key string, value []byte) error {
			assert.JSONEq(t, `{
				"email":"ada@example.com","name":"Ada Lovelace","phone":"0800",
				"address":"1 Analytical St","city":"Lagos","state":"Lagos","country":"Nigeria"
			}`, string(value))
			return nil
		})

	require.NoError(t, repo.Save(context.Background(), "sess-1", validProfile()))
}

func TestRepositoryGetNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock.NewMockStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "sess-1:user").Return(nil, kv.ErrNotFound)

	_, err := NewRepository(store).Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestRepositoryGetBackendError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("connection refused")
	store := mock.NewMockStore(ctrl)
	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := NewRepository(store).Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrProfileNotFound)
}

func TestRepositoryGetCorrupted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock.NewMockStore(ctrl)
	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return([]byte("{not json"), nil)

	_, err := NewRepository(store).Get(context.Background(), "sess-1")
	assert.Error(t, err)
}

func TestServiceSaveValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// 驗證失敗時不應寫入
	store := mock.NewMockStore(ctrl)
	svc := NewService(NewRepository(store), nil)

	p := validProfile()
	p.Name = "  "
	p.Email = "not-an-email"
	err := svc.Save(context.Background(), "s", p)

	var verr *validate.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")
	assert.Equal(t, "invalid profile fields: email, name", verr.Error())
}

func TestServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewRepository(kv.NewMemoryStore()), nil)

	_, err := svc.Get(ctx, "s")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	require.NoError(t, svc.Save(ctx, "s", validProfile()))
	got, err := svc.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, validProfile(), *got)

	require.NoError(t, svc.Delete(ctx, "s"))
	_, err = svc.Get(ctx, "s")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestServiceUpdateMerges(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewRepository(kv.NewMemoryStore()), nil)
	require.NoError(t, svc.Save(ctx, "s", validProfile()))

	updated, err := svc.Update(ctx, "s", model.UserProfile{City: "Abuja", Phone: "0900"})
	require.NoError(t, err)
	assert.Equal(t, "Abuja", updated.City)
	assert.Equal(t, "0900", updated.Phone)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Equal(t, "ada@example.com", updated.Email)

	stored, err := svc.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, *updated, *stored)

	_, err = svc.Update(ctx, "s", model.UserProfile{Email: "broken"})
	var verr *validate.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Update(ctx, "nobody", model.UserProfile{City: "x"})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
