package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/cuongbtq/email-verifier-be/internal/api/model"
	"github.com/cuongbtq/email-verifier-be/internal/api/service"
	"github.com/cuongbtq/email-verifier-be/internal/api/storage"
	"github.com/cuongbtq/email-verifier-be/internal/mocks"
	"github.com/cuongbtq/email-verifier-be/shared/bouncify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newListService(t *testing.T, store *memStore) (*service.ListService, *mocks.MockProvider) {
	t.Helper()
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	logger := discardLogger()
	ledger := service.NewLedger(store, logger)
	reconciler := service.NewReconciler(store, provider, nil, nil, service.ReconcilerConfig{}, logger)
	svc := service.NewListService(store, store, ledger, provider, reconciler, nil, service.ListServiceConfig{MaxUploadSize: 1024}, logger)
	return svc, provider
}

func TestUpload(t *testing.T) {
	content := []byte("email\na@x.io\nb@y.io\nc@z.io\n")

	t.Run("creates unprocessed record", func(t *testing.T) {
		store := newMemStore()
		svc, provider := newListService(t, store)
		provider.EXPECT().UploadFile(gomock.Any(), "leads.csv", content).
			Return(&bouncify.UploadResponse{Success: true, JobID: "job-9"}, nil)

		list, err := svc.Upload(context.Background(), testUser, service.UploadInput{Filename: "leads.csv", Content: content})
		require.NoError(t, err)
		assert.Equal(t, "job-9", list.JobID)
		assert.Equal(t, "leads", list.ListName)
		assert.Equal(t, 3, list.TotalEmails)
		assert.Equal(t, int64(len(content)), list.Size)
		assert.Equal(t, domain.JobStatusUnprocessed, list.Status)

		_, ok := store.list("job-9")
		assert.True(t, ok)
	})

	rejected := []struct {
		name  string
		input service.UploadInput
	}{
		{"empty file", service.UploadInput{Filename: "a.csv"}},
		{"too large", service.UploadInput{Filename: "a.csv", Content: []byte(strings.Repeat("a@b.io\n", 200))}},
		{"not csv", service.UploadInput{Filename: "a.txt", Content: content}},
		{"no addresses", service.UploadInput{Filename: "a.csv", Content: []byte("name\nbob\n")}},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newListService(t, newMemStore())

			_, err := svc.Upload(context.Background(), testUser, tt.input)
			assert.True(t, errors.Is(err, domain.ErrValidation))
		})
	}

	t.Run("provider failure stores nothing", func(t *testing.T) {
		store := newMemStore()
		svc, provider := newListService(t, store)
		provider.EXPECT().UploadFile(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, bouncify.ErrUnavailable)

		_, err := svc.Upload(context.Background(), testUser, service.UploadInput{Filename: "a.csv", Content: content})
		assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))
		lists, _ := store.ListAllForUser(context.Background(), testUser)
		assert.Empty(t, lists)
	})
}

func TestStartVerification(t *testing.T) {
	t.Run("starts and syncs status", func(t *testing.T) {
		store := newMemStore()
		store.addList(model.EmailList{JobID: "job-1", UserID: testUser, TotalEmails: 50})
		store.setBalance(testUser, 50)

		svc, provider := newListService(t, store)
		gomock.InOrder(
			provider.EXPECT().GetStatus(gomock.Any(), "job-1").Return(&bouncify.StatusResponse{Status: "ready"}, nil),
			provider.EXPECT().StartVerification(gomock.Any(), "job-1").Return(&bouncify.StartResponse{Success: true}, nil),
			provider.EXPECT().GetStatus(gomock.Any(), "job-1").Return(&bouncify.StatusResponse{Status: "verifying"}, nil),
		)

		got, err := svc.StartVerification(context.Background(), testUser, "job-1")
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusProcessing, got.Status)
		// credits are charged on completion, not on start
		assert.Equal(t, int64(50), store.balance(testUser))
	})

	t.Run("insufficient credits makes no provider call", func(t *testing.T) {
		store := newMemStore()
		store.addList(model.EmailList{JobID: "job-1", UserID: testUser, TotalEmails: 50})
		store.setBalance(testUser, 49)

		svc, _ := newListService(t, store)

		_, err := svc.StartVerification(context.Background(), testUser, "job-1")
		assert.True(t, errors.Is(err, domain.ErrInsufficientCredits))
	})

	t.Run("list not ready", func(t *testing.T) {
		store := newMemStore()
		store.addList(model.EmailList{JobID: "job-1", UserID: testUser, TotalEmails: 5})
		store.setBalance(testUser, 50)

		svc, provider := newListService(t, store)
		provider.EXPECT().GetStatus(gomock.Any(), "job-1").Return(&bouncify.StatusResponse{Status: "preparing"}, nil)

		_, err := svc.StartVerification(context.Background(), testUser, "job-1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrValidation))
		assert.Contains(t, err.Error(), "preparing")
	})

	t.Run("provider rejects start", func(t *testing.T) {
		store := newMemStore()
		store.addList(model.EmailList{JobID: "job-1", UserID: testUser, TotalEmails: 5})
		store.setBalance(testUser, 50)

		svc, provider := newListService(t, store)
		provider.EXPECT().GetStatus(gomock.Any(), "job-1").Return(&bouncify.StatusResponse{Status: "ready"}, nil)
		provider.EXPECT().StartVerification(gomock.Any(), "job-1").Return(&bouncify.StartResponse{Success: false, Message: "no"}, nil)

		_, err := svc.StartVerification(context.Background(), testUser, "job-1")
		assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))
		stored, _ := store.list("job-1")
		assert.Equal(t, domain.JobStatusUnprocessed, stored.Status)
	})

	t.Run("missing job id", func(t *testing.T) {
		svc, _ := newListService(t, newMemStore())

		_, err := svc.StartVerification(context.Background(), testUser, "")
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})
}

func TestDelete(t *testing.T) {
	t.Run("provider refusal keeps local record", func(t *testing.T) {
		store := newMemStore()
		store.addList(model.EmailList{JobID: "job-1", UserID: testUser})

		svc, provider := newListService(t, store)
		provider.EXPECT().RemoveJob(gomock.Any(), "job-1").Return(&bouncify.RemoveResponse{Success: false, Message: "locked"}, nil)

		err := svc.Delete(context.Background(), testUser, "job-1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))

		_, ok := store.list("job-1")
		assert.True(t, ok)
	})

	t.Run("provider error keeps local record", func(t *testing.T) {
		store := newMemStore()
		store.addList(model.EmailList{JobID: "job-1", UserID: testUser})

		svc, provider := newListService(t, store)
		provider.EXPECT().RemoveJob(gomock.Any(), "job-1").Return(nil, bouncify.ErrUnavailable)

		require.Error(t, svc.Delete(context.Background(), testUser, "job-1"))
		_, ok := store.list("job-1")
		assert.True(t, ok)
	})

	t.Run("deletes after provider confirms", func(t *testing.T) {
		store := newMemStore()
		store.addList(model.EmailList{JobID: "job-1", UserID: testUser})

		svc, provider := newListService(t, store)
		provider.EXPECT().RemoveJob(gomock.Any(), "job-1").Return(&bouncify.RemoveResponse{Success: true}, nil)

		require.NoError(t, svc.Delete(context.Background(), testUser, "job-1"))
		_, ok := store.list("job-1")
		assert.False(t, ok)
	})

	t.Run("not owned makes no provider call", func(t *testing.T) {
		store := newMemStore()
		store.addList(model.EmailList{JobID: "job-1", UserID: "someone-else"})
		svc, _ := newListService(t, store)

		err := svc.Delete(context.Background(), testUser, "job-1")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("single validation record", func(t *testing.T) {
		store := newMemStore()
		v := &model.EmailValidation{UserID: testUser, Email: "a@x.io"}
		require.NoError(t, store.CreateValidation(context.Background(), v))
		svc, _ := newListService(t, store)

		require.NoError(t, svc.Delete(context.Background(), testUser, service.SingleIDPrefix+v.ID))
		assert.Equal(t, 0, store.validationCount())
	})

	t.Run("malformed single id", func(t *testing.T) {
		svc, _ := newListService(t, newMemStore())

		err := svc.Delete(context.Background(), testUser, "single_nope")
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})
}

func TestMoveToFolder(t *testing.T) {
	folder := "3d0f6a4e-1a2b-4c3d-8e9f-0a1b2c3d4e5f"

	t.Run("moves owned list", func(t *testing.T) {
		store := newMemStore()
		store.addList(model.EmailList{JobID: "job-1", UserID: testUser})
		store.folders[folder] = testUser
		svc, _ := newListService(t, store)

		res, err := svc.MoveToFolder(context.Background(), testUser, "job-1", &folder)
		require.NoError(t, err)
		require.NotNil(t, res.List)
		assert.Equal(t, folder, *res.List.FolderID)
	})

	t.Run("folder of another user", func(t *testing.T) {
		store := newMemStore()
		store.addList(model.EmailList{JobID: "job-1", UserID: testUser})
		store.folders[folder] = "someone-else"
		svc, _ := newListService(t, store)

		_, err := svc.MoveToFolder(context.Background(), testUser, "job-1", &folder)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("invalid folder id", func(t *testing.T) {
		svc, _ := newListService(t, newMemStore())
		bad := "not-a-uuid"

		_, err := svc.MoveToFolder(context.Background(), testUser, "job-1", &bad)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("single validation to root", func(t *testing.T) {
		store := newMemStore()
		v := &model.EmailValidation{UserID: testUser, Email: "a@x.io", FolderID: &folder}
		require.NoError(t, store.CreateValidation(context.Background(), v))
		svc, _ := newListService(t, store)

		res, err := svc.MoveToFolder(context.Background(), testUser, service.SingleIDPrefix+v.ID, nil)
		require.NoError(t, err)
		require.NotNil(t, res.Validation)
		assert.Nil(t, res.Validation.FolderID)
	})
}

func TestDownload(t *testing.T) {
	t.Run("completed list streams report", func(t *testing.T) {
		store := newMemStore()
		store.addList(model.EmailList{JobID: "job-1", UserID: testUser, Status: domain.JobStatusCompleted})
		svc, provider := newListService(t, store)
		provider.EXPECT().DownloadReport(gomock.Any(), "job-1", "deliverable").
			Return(io.NopCloser(strings.NewReader("email\na@x.io\n")), nil)

		rc, list, err := svc.Download(context.Background(), testUser, "job-1", "deliverable")
		require.NoError(t, err)
		defer rc.Close()
		assert.Equal(t, "job-1", list.JobID)
		data, _ := io.ReadAll(rc)
		assert.Contains(t, string(data), "a@x.io")
	})

	t.Run("not completed", func(t *testing.T) {
		store := newMemStore()
		store.addList(model.EmailList{JobID: "job-1", UserID: testUser, Status: domain.JobStatusProcessing})
		svc, _ := newListService(t, store)

		_, _, err := svc.Download(context.Background(), testUser, "job-1", "")
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("unknown filter", func(t *testing.T) {
		svc, _ := newListService(t, newMemStore())

		_, _, err := svc.Download(context.Background(), testUser, "job-1", "risky")
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	svc, _ := newListService(t, newMemStore())

	_, err := svc.List(context.Background(), storage.ListFilter{UserID: testUser, Status: "DONE"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
