package session

import "errors"

// Validation failures are rejected synchronously, before any network
// call.
var (
	ErrSessionNotReady     = errors.New("session has no snapshot yet")
	ErrUnknownItem         = errors.New("unknown item")
	ErrUnknownFolder       = errors.New("unknown folder")
	ErrEmptyFolderName     = errors.New("folder name cannot be empty")
	ErrDuplicateFolderName = errors.New("a folder with that name already exists")
	ErrLastFolder          = errors.New("the last folder cannot be deleted")
)
