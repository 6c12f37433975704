package service

import "errors"

var (
	// ErrNoFilePart: the upload request carried no file part at all.
	ErrNoFilePart = errors.New("no file part")
	// ErrNoFileSelected: a file part was present but nothing was selected.
	ErrNoFileSelected = errors.New("no selected file")
	// ErrNotFound: no metadata row (or no blob) for this owner and filename.
	ErrNotFound = errors.New("file not found")
)
