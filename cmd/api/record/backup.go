package record

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// BackupFilename names a backup taken at t, like library_backup_2024-03-01.json.
func BackupFilename(t time.Time) string {
	return fmt.Sprintf("library_backup_%s.json", t.UTC().Format(time.DateOnly))
}

// Serialize writes the records as an indented JSON array.
func Serialize(records []AcquisitionRecord) ([]byte, error) {
	if records == nil {
		records = []AcquisitionRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("serializing backup: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Deserialize parses a backup. The root must be a JSON array.
func Deserialize(data []byte) ([]AcquisitionRecord, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, NewErrMalformedBackup(errors.New("root is not an array"))
	}

	records := []AcquisitionRecord{}
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, NewErrMalformedBackup(err)
	}
	return records, nil
}

func (s *Service) Backup(ctx context.Context) ([]byte, error) {
	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return nil, repoError("Backup", err)
	}
	return Serialize(records)
}

type RestoreOptions struct {
	// Atomic restores every record in one transaction, or none of them.
	Atomic bool
}

type RestoreFailure struct {
	AcquisitionNumber string
	Err               error
}

type RestoreReport struct {
	Total    int
	Restored int
	Failures []RestoreFailure
}

/* Upserts every record. Unless opts.Atomic, each record is written on its own and failures are reported per record. */
func (s *Service) Restore(ctx context.Context, records []AcquisitionRecord, opts RestoreOptions) (RestoreReport, error) {
	report := RestoreReport{Total: len(records)}
	if len(records) == 0 {
		return report, nil
	}

	if opts.Atomic {
		if err := s.repo.PutRecords(ctx, records); err != nil {
			return report, repoError("Restore", err)
		}
		report.Restored = len(records)
		return report, nil
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.restoreConcurrency)
	for _, r := range records {
		r := r
		g.Go(func() error {
			err := s.repo.PutRecord(ctx, r)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failures = append(report.Failures, RestoreFailure{
					AcquisitionNumber: r.AcquisitionNumber,
					Err:               repoError("Restore", err),
				})
				return nil
			}
			report.Restored++
			return nil
		})
	}
	_ = g.Wait()

	if len(report.Failures) == 0 {
		return report, nil
	}

	sort.SliceStable(report.Failures, func(i, j int) bool {
		return report.Failures[i].AcquisitionNumber < report.Failures[j].AcquisitionNumber
	})
	errs := make([]error, 0, len(report.Failures))
	for _, f := range report.Failures {
		errs = append(errs, fmt.Errorf("record %q: %w", f.AcquisitionNumber, f.Err))
	}
	return report, NewErrWithCause(ErrResponseRestoreIncomplete, errors.Join(errs...))
}
