package record

import (
	"errors"
	"fmt"
)

type ErrResponse struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_message"`
}

func (e ErrResponse) Error() string {
	return e.Message
}

var ErrResponseEntryInvalidFields = ErrResponse{100, "the form fields are not filled correctly."}
var ErrResponseRecordNotFound = ErrResponse{101, "record not found"}
var ErrResponseEntryInvalidJSON = ErrResponse{102, "invalid json request"}
var ErrResponseKeyInvalidFormat = ErrResponse{103, "the endpoint is not a valid record key. Must be /records/{acquisitionNumber}"}
var ErrResponseQuerySortByInvalid = ErrResponse{105, "query parameter 'sort_by' must be a record field. 'sort_direction' must be asc or desc."}
var ErrResponseRequestTimeout = ErrResponse{109, "context deadline exceeded"}
var ErrResponseStorageUnavailable = ErrResponse{200, "storage unavailable"}
var ErrResponseSchemaUpgrade = ErrResponse{201, "storage schema could not be upgraded"}
var ErrResponseDuplicateKey = ErrResponse{202, "a record with this acquisition number already exists"}
var ErrResponseStorageFailure = ErrResponse{203, "storage transaction failed"}
var ErrResponseMalformedBackup = ErrResponse{204, "backup is not a JSON array of records"}
var ErrResponseRestoreIncomplete = ErrResponse{205, "some records could not be restored"}
var ErrResponseKeyMismatch = ErrResponse{206, "the acquisition number of an edited record cannot change"}
var ErrResponseDeleteNotConfirmed = ErrResponse{207, "deleting a record must be confirmed"}

// ErrWithCause is an ErrResponse kind that carries the error which caused it.
// errors.Is matches both the kind and anything in the cause chain.
type ErrWithCause struct {
	Kind  ErrResponse
	Cause error
}

func NewErrWithCause(kind ErrResponse, cause error) ErrWithCause {
	return ErrWithCause{Kind: kind, Cause: cause}
}

func NewErrStorageFailure(cause error) ErrWithCause {
	return ErrWithCause{Kind: ErrResponseStorageFailure, Cause: cause}
}

func NewErrMalformedBackup(cause error) ErrWithCause {
	return ErrWithCause{Kind: ErrResponseMalformedBackup, Cause: cause}
}

func (e ErrWithCause) Error() string {
	if e.Cause == nil {
		return e.Kind.Message
	}
	return fmt.Sprintf("%s: %v", e.Kind.Message, e.Cause)
}

func (e ErrWithCause) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

/* Returns the ErrResponse kind found in the chain of err, if any. */
func KindOf(err error) (ErrResponse, bool) {
	var kind ErrResponse
	if errors.As(err, &kind) {
		return kind, true
	}
	return ErrResponse{}, false
}
