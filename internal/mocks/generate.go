// Package mocks provides gomock implementations of the service ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	provider := mocks.NewMockProvider(ctrl)
//	provider.EXPECT().GetStatus(gomock.Any(), "job-1").Return(status, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=provider_mock.go github.com/cuongbtq/email-verifier-be/internal/api/service Provider
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=locker_mock.go github.com/cuongbtq/email-verifier-be/internal/api/service Locker
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=activity_recorder_mock.go github.com/cuongbtq/email-verifier-be/internal/api/service ActivityRecorder
