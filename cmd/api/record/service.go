package record

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_repository.go -package=mocks

type Repository interface {
	AddRecord(ctx context.Context, r AcquisitionRecord) error
	PutRecord(ctx context.Context, r AcquisitionRecord) error
	PutRecords(ctx context.Context, rs []AcquisitionRecord) error
	DeleteRecord(ctx context.Context, acquisitionNumber string) error
	GetRecord(ctx context.Context, acquisitionNumber string) (AcquisitionRecord, error)
	ListRecords(ctx context.Context) ([]AcquisitionRecord, error)
}

const DefaultRestoreConcurrency = 8

type Service struct {
	repo               Repository
	validate           *validator.Validate
	restoreConcurrency int
}

func NewService(repo Repository, restoreConcurrency int) *Service {
	if restoreConcurrency <= 0 {
		restoreConcurrency = DefaultRestoreConcurrency
	}
	return &Service{
		repo:               repo,
		validate:           newValidator(),
		restoreConcurrency: restoreConcurrency,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their form names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := []rune(f.Name)
		if len(name) == 0 {
			return f.Name
		}
		name[0] = []rune(strings.ToLower(string(name[0])))[0]
		return string(name)
	})
	return v
}

func (s *Service) Add(ctx context.Context, r AcquisitionRecord) error {
	if err := s.repo.AddRecord(ctx, r); err != nil {
		return repoError("Add", err)
	}
	return nil
}

// Update fully replaces the record with the same acquisition number, creating it when absent.
func (s *Service) Update(ctx context.Context, r AcquisitionRecord) error {
	if err := s.repo.PutRecord(ctx, r); err != nil {
		return repoError("Update", err)
	}
	return nil
}

// Delete of an absent acquisition number is not an error.
func (s *Service) Delete(ctx context.Context, acquisitionNumber string) error {
	if err := s.repo.DeleteRecord(ctx, acquisitionNumber); err != nil {
		return repoError("Delete", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, acquisitionNumber string) (AcquisitionRecord, error) {
	r, err := s.repo.GetRecord(ctx, acquisitionNumber)
	if err != nil {
		return AcquisitionRecord{}, repoError("Get", err)
	}
	return r, nil
}

func (s *Service) ListAll(ctx context.Context) ([]AcquisitionRecord, error) {
	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return nil, repoError("ListAll", err)
	}
	return records, nil
}

/* Checks the form constraints, then creates or overwrites the record according to mode. */
func (s *Service) Submit(ctx context.Context, mode Mode, r AcquisitionRecord) (AcquisitionRecord, error) {
	if mode.IsUpdate() {
		if r.AcquisitionNumber == "" {
			r.AcquisitionNumber = mode.Key()
		}
		if r.AcquisitionNumber != mode.Key() {
			return AcquisitionRecord{}, ErrResponseKeyMismatch
		}
	}

	if err := s.checkForm(r); err != nil {
		return AcquisitionRecord{}, err
	}

	if mode.IsUpdate() {
		if err := s.Update(ctx, r); err != nil {
			return AcquisitionRecord{}, err
		}
		return r, nil
	}

	if err := s.Add(ctx, r); err != nil {
		return AcquisitionRecord{}, err
	}
	return r, nil
}

func (s *Service) checkForm(r AcquisitionRecord) error {
	err := s.validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewErrWithCause(ErrResponseEntryInvalidFields, err)
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s must be %s", fe.Field(), constraintText(fe)))
	}
	return NewErrWithCause(ErrResponseEntryInvalidFields, errors.New(strings.Join(problems, "; ")))
}

func constraintText(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "filled"
	case "datetime":
		return "a date like " + fe.Param()
	default:
		return fe.Tag()
	}
}

/* Lists every record and keeps those matching the query. */
func (s *Service) Search(ctx context.Context, query string) ([]AcquisitionRecord, error) {
	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return nil, repoError("Search", err)
	}
	return Search(query, records), nil
}

// repoError keeps taxonomy errors as they are and wraps any other store error as a storage failure.
func repoError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("timeout on call to %s: %w", op, err)
	}
	if _, ok := KindOf(err); ok {
		return err
	}
	return NewErrStorageFailure(err)
}
