package services

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hondenweiden/internal/domain/models"
	apperrors "hondenweiden/internal/storage"
)

type mockPastureRepo struct {
	mock.Mock
}

func (m *mockPastureRepo) List(ctx context.Context) ([]models.PastureRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PastureRecord), args.Error(1)
}

func (m *mockPastureRepo) Get(ctx context.Context, id uuid.UUID) (models.PastureRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.PastureRecord), args.Error(1)
}

func (m *mockPastureRepo) Create(ctx context.Context, attrs models.Attributes) (uuid.UUID, error) {
	args := m.Called(ctx, attrs)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockPastureRepo) Update(ctx context.Context, id uuid.UUID, patch models.Attributes) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *mockPastureRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockImageStorage struct {
	mock.Mock
}

func (m *mockImageStorage) Replace(ctx context.Context, folder, filename string, r io.Reader) (string, int64, error) {
	args := m.Called(ctx, folder, filename, r)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

func (m *mockImageStorage) RemoveFolder(ctx context.Context, folder string) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}

func (m *mockImageStorage) FolderExists(folder string) bool {
	args := m.Called(folder)
	return args.Bool(0)
}

func (m *mockImageStorage) ListImages(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockImageStorage) BaseURL() string {
	args := m.Called()
	return args.String(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListPastures_AppliesDefaults(t *testing.T) {
	repo := new(mockPastureRepo)
	images := new(mockImageStorage)
	svc := NewPastureService(testLogger(), repo, images)

	id1 := uuid.New()
	id2 := uuid.New()

	repo.On("List", mock.Anything).Return([]models.PastureRecord{
		{ID: id1, Attrs: models.Attributes{"area": "Noord", "benchCount": 2.0}},
		{ID: id2, Attrs: nil},
	}, nil)

	pastures, err := svc.ListPastures(context.Background())
	require.NoError(t, err)
	require.Len(t, pastures, 2)

	assert.Equal(t, "Noord", pastures[0].Area)
	assert.Equal(t, 2, pastures[0].BenchCount)

	// a bare record comes out fully defined
	assert.Equal(t, id2, pastures[1].ID)
	assert.Equal(t, models.DefaultArea, pastures[1].Area)
	assert.Equal(t, models.DefaultImage, pastures[1].Image)
	assert.NotNil(t, pastures[1].GroundTypes)
	assert.NotNil(t, pastures[1].Reviews)

	repo.AssertExpectations(t)
}

func TestGetPasture(t *testing.T) {
	t.Run("normalizes the stored record", func(t *testing.T) {
		repo := new(mockPastureRepo)
		svc := NewPastureService(testLogger(), repo, new(mockImageStorage))

		id := uuid.New()
		repo.On("Get", mock.Anything, id).Return(models.PastureRecord{
			ID:    id,
			Attrs: models.Attributes{"dogParkName": "Vliegenbos", "hasShade": true},
		}, nil)

		p, err := svc.GetPasture(context.Background(), id)
		require.NoError(t, err)

		assert.Equal(t, "Vliegenbos", p.DogParkName)
		assert.True(t, p.HasShade)
		assert.Equal(t, models.DefaultAddress, p.Address)
	})

	t.Run("not found passes through", func(t *testing.T) {
		repo := new(mockPastureRepo)
		svc := NewPastureService(testLogger(), repo, new(mockImageStorage))

		id := uuid.New()
		repo.On("Get", mock.Anything, id).Return(models.PastureRecord{}, apperrors.ErrPastureNotFound)

		_, err := svc.GetPasture(context.Background(), id)
		assert.ErrorIs(t, err, apperrors.ErrPastureNotFound)
	})
}

func TestCreatePasture(t *testing.T) {
	repo := new(mockPastureRepo)
	svc := NewPastureService(testLogger(), repo, new(mockImageStorage))

	want := uuid.New()
	attrs := models.Attributes{"area": "Oost"}
	repo.On("Create", mock.Anything, attrs).Return(want, nil)

	got, err := svc.CreatePasture(context.Background(), attrs)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUpdatePasture_NotFound(t *testing.T) {
	repo := new(mockPastureRepo)
	svc := NewPastureService(testLogger(), repo, new(mockImageStorage))

	id := uuid.New()
	repo.On("Update", mock.Anything, id, mock.Anything).Return(apperrors.ErrPastureNotFound)

	err := svc.UpdatePasture(context.Background(), id, models.Attributes{"area": "West"})
	assert.ErrorIs(t, err, apperrors.ErrPastureNotFound)
}

func TestDeletePasture_CleansUpImageFolder(t *testing.T) {
	repo := new(mockPastureRepo)
	images := new(mockImageStorage)
	svc := NewPastureService(testLogger(), repo, images)

	id := uuid.New()
	removed := make(chan struct{})

	repo.On("Delete", mock.Anything, id).Return(nil)
	images.On("RemoveFolder", mock.Anything, id.String()).Return(nil).Run(func(mock.Arguments) {
		close(removed)
	})

	require.NoError(t, svc.DeletePasture(context.Background(), id))

	// cleanup runs detached, give it a moment
	select {
	case <-removed:
	case <-time.After(time.Second):
		t.Fatal("image folder cleanup never ran")
	}
}

func TestDeletePasture_SucceedsWhenCleanupFails(t *testing.T) {
	repo := new(mockPastureRepo)
	images := new(mockImageStorage)
	svc := NewPastureService(testLogger(), repo, images)

	id := uuid.New()
	repo.On("Delete", mock.Anything, id).Return(nil)
	images.On("RemoveFolder", mock.Anything, id.String()).Return(fs.ErrPermission)

	// folder cleanup is best effort, the delete itself must succeed
	assert.NoError(t, svc.DeletePasture(context.Background(), id))
}

func TestDeletePasture_NotFound(t *testing.T) {
	repo := new(mockPastureRepo)
	images := new(mockImageStorage)
	svc := NewPastureService(testLogger(), repo, images)

	id := uuid.New()
	repo.On("Delete", mock.Anything, id).Return(apperrors.ErrPastureNotFound)

	err := svc.DeletePasture(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrPastureNotFound)

	images.AssertNotCalled(t, "RemoveFolder", mock.Anything, mock.Anything)
}

func TestImportPastures(t *testing.T) {
	t.Run("imports every record", func(t *testing.T) {
		repo := new(mockPastureRepo)
		svc := NewPastureService(testLogger(), repo, new(mockImageStorage))

		records := []models.Attributes{
			{"area": "Noord"},
			{"area": "Zuid"},
			{"area": "West"},
		}
		repo.On("Create", mock.Anything, mock.Anything).Return(uuid.New(), nil).Times(3)

		count, err := svc.ImportPastures(context.Background(), records)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		repo.AssertExpectations(t)
	})

	t.Run("stops on first failure and reports progress", func(t *testing.T) {
		repo := new(mockPastureRepo)
		svc := NewPastureService(testLogger(), repo, new(mockImageStorage))

		boom := errors.New("insert failed")
		repo.On("Create", mock.Anything, mock.Anything).Return(uuid.New(), nil).Once()
		repo.On("Create", mock.Anything, mock.Anything).Return(uuid.Nil, boom).Once()

		count, err := svc.ImportPastures(context.Background(), []models.Attributes{
			{"area": "Noord"}, {"area": "Zuid"}, {"area": "West"},
		})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, count)
	})
}
