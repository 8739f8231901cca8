package journal

import "errors"

var (
	// ErrNotFound is returned when an entry does not exist for the user
	ErrNotFound = errors.New("journal: entry not found")

	// ErrEmptyText is returned when a symptom description is blank
	ErrEmptyText = errors.New("journal: text is required")

	// ErrTextTooLong is returned when a symptom description exceeds the limit
	ErrTextTooLong = errors.New("journal: text is too long")

	// ErrInvalidFilename is returned when nothing usable remains of an upload name
	ErrInvalidFilename = errors.New("journal: invalid filename")

	// ErrUnsupportedType is returned for uploads that are not images
	ErrUnsupportedType = errors.New("journal: unsupported file type")
)
