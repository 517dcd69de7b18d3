package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates the submission failed local validation;
	// no network call was made
	ErrValidation = errors.New("validation failed")

	// ErrUploadFailed indicates the analysis submission was rejected or
	// never reached the backend
	ErrUploadFailed = errors.New("upload failed")

	// ErrFetchFailed indicates a project index or detail request failed
	ErrFetchFailed = errors.New("fetch failed")

	// ErrContentFetchFailed indicates a remote document body could not be
	// retrieved; callers degrade to a placeholder, never surface this
	ErrContentFetchFailed = errors.New("content fetch failed")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrWorkflowBusy indicates a submission attempt while another is
	// still processing
	ErrWorkflowBusy = errors.New("submission already in progress")
)
