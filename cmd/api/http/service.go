package http

import (
	"context"

	"github.com/library-register/cmd/api/notifications"
	"github.com/library-register/cmd/api/record"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_serviceapi.go -package=mocks

type ServiceAPI interface {
	Submit(ctx context.Context, mode record.Mode, r record.AcquisitionRecord) (record.AcquisitionRecord, error)
	Get(ctx context.Context, acquisitionNumber string) (record.AcquisitionRecord, error)
	Delete(ctx context.Context, acquisitionNumber string) error
	Search(ctx context.Context, query string) ([]record.AcquisitionRecord, error)
	Backup(ctx context.Context) ([]byte, error)
	Restore(ctx context.Context, records []record.AcquisitionRecord, opts record.RestoreOptions) (record.RestoreReport, error)
}

// NoticeBoard shows the outcome of each action to the user.
type NoticeBoard interface {
	Notify(ctx context.Context, n notifications.Notice) error
	Current() []notifications.Notice
}
