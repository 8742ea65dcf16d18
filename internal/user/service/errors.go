package service

import (
	"fmt"

	commonerrors "github.com/rosterhq/roster-backend/internal/common/errors"
)

const (
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeUsernameNotFound  = "USERNAME_NOT_FOUND"
	CodeEmptyUsername     = "EMPTY_USERNAME"
	CodeEmptyPassword     = "EMPTY_PASSWORD"
	CodeUsernameNotUnique = "USERNAME_NOT_UNIQUE"
	CodeStoreFailure      = "STORE_FAILURE"
)

// Blank-field failures answer 409, not 400. Clients depend on this.
var (
	ErrEmptyUsername = commonerrors.NewDomainError(
		CodeEmptyUsername,
		commonerrors.CategoryValidation,
		409,
		"The username can't be empty",
	)

	ErrEmptyPassword = commonerrors.NewDomainError(
		CodeEmptyPassword,
		commonerrors.CategoryValidation,
		409,
		"The password can't be empty",
	)

	ErrUsernameNotUnique = commonerrors.NewDomainError(
		CodeUsernameNotUnique,
		commonerrors.CategoryConflict,
		409,
		"The username provided is not unique. Therefore, the user could not be created!",
	)
)

func ErrUserNotFound(id int64) commonerrors.DomainError {
	return commonerrors.NewDomainError(
		CodeUserNotFound,
		commonerrors.CategoryNotFound,
		404,
		fmt.Sprintf("User with userId %d was not found", id),
	)
}

func ErrUsernameNotFound(username string) commonerrors.DomainError {
	return commonerrors.NewDomainError(
		CodeUsernameNotFound,
		commonerrors.CategoryNotFound,
		404,
		fmt.Sprintf("username %s was not found", username),
	)
}

func errStore(cause error) commonerrors.DomainError {
	return commonerrors.NewDomainError(
		CodeStoreFailure,
		commonerrors.CategoryInternal,
		500,
		"user store operation failed",
	).WithCause(cause)
}
