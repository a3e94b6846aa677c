// Package businessflow contains the core business logic and use cases for the link distribution workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrSessionNotFound    = errors.New("session not found")

	// Contact-related errors
	ErrContactNotFound    = errors.New("contact not found")
	ErrPhoneAlreadyExists = errors.New("phone number already exists")

	// Batch and allocation errors
	ErrBatchNotFound         = errors.New("batch not found")
	ErrInvalidBatchCount     = errors.New("batch count must be zero or greater")
	ErrInvalidBatchCapacity  = errors.New("batch capacity must be at least 1")
	ErrBatchUpdateRequired   = errors.New("at least one field must be provided for update")
	ErrOwnerLockBusy         = errors.New("another operation is in progress for this account")
	ErrCurrentPasswordNeeded = errors.New("current password is required to change password")

	// Research import errors
	ErrNoFilesUploaded     = errors.New("no files uploaded")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrMissingSheetColumns = errors.New("sheet is missing required columns")

	// Device-related errors
	ErrDeviceNotFound             = errors.New("device not found")
	ErrRegistrationTokenNotFound  = errors.New("registration token not found")
	ErrRegistrationTokenExpired   = errors.New("registration token has expired")
	ErrRegistrationTokenUsed      = errors.New("registration token already used")
	ErrDeviceInactive             = errors.New("device is inactive")
	ErrDeviceContactNotAssigned   = errors.New("device has no assigned contact")
	ErrLinkNotFound               = errors.New("link not found")
	ErrLinkNotOwnedByDevice       = errors.New("link does not belong to this device")
	ErrBatchNotAssignedToContact  = errors.New("batch is not assigned to the device's contact")
	ErrInvalidLinkProcessedStatus = errors.New("invalid link processing status")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsCurrentPasswordNeeded(err error) bool {
	return errors.Is(err, ErrCurrentPasswordNeeded)
}

func IsContactNotFound(err error) bool {
	return errors.Is(err, ErrContactNotFound)
}

func IsPhoneAlreadyExists(err error) bool {
	return errors.Is(err, ErrPhoneAlreadyExists)
}

func IsBatchNotFound(err error) bool {
	return errors.Is(err, ErrBatchNotFound)
}

func IsInvalidBatchCount(err error) bool {
	return errors.Is(err, ErrInvalidBatchCount)
}

func IsInvalidBatchCapacity(err error) bool {
	return errors.Is(err, ErrInvalidBatchCapacity)
}

func IsOwnerLockBusy(err error) bool {
	return errors.Is(err, ErrOwnerLockBusy)
}

func IsNoFilesUploaded(err error) bool {
	return errors.Is(err, ErrNoFilesUploaded)
}

func IsUnsupportedFileType(err error) bool {
	return errors.Is(err, ErrUnsupportedFileType)
}

func IsDeviceNotFound(err error) bool {
	return errors.Is(err, ErrDeviceNotFound)
}

func IsRegistrationTokenNotFound(err error) bool {
	return errors.Is(err, ErrRegistrationTokenNotFound)
}

func IsRegistrationTokenExpired(err error) bool {
	return errors.Is(err, ErrRegistrationTokenExpired)
}

func IsRegistrationTokenUsed(err error) bool {
	return errors.Is(err, ErrRegistrationTokenUsed)
}

func IsDeviceInactive(err error) bool {
	return errors.Is(err, ErrDeviceInactive)
}

func IsDeviceContactNotAssigned(err error) bool {
	return errors.Is(err, ErrDeviceContactNotAssigned)
}

func IsLinkNotFound(err error) bool {
	return errors.Is(err, ErrLinkNotFound)
}

func IsLinkNotOwnedByDevice(err error) bool {
	return errors.Is(err, ErrLinkNotOwnedByDevice)
}
