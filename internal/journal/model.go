package journal

import "time"

const maxSymptomLength = 2000

// Symptom is a logged symptom with the advice given for it.
type Symptom struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Text      string    `json:"text"`
	Advice    string    `json:"advice"`
	CreatedAt time.Time `json:"created_at"`
}

// Photo is an uploaded skin photo with the advice given for it.
type Photo struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Filename    string    `json:"filename"`
	StorageKey  string    `json:"-"`
	ContentType string    `json:"content_type"`
	Advice      string    `json:"advice"`
	CreatedAt   time.Time `json:"created_at"`
}

// Tip is a generated wellness tip.
type Tip struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// History lists a user's entries, newest first.
type History struct {
	Symptoms []*Symptom `json:"symptoms"`
	Photos   []*Photo   `json:"photos"`
	Tips     []*Tip     `json:"tips"`
}

var imageContentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"heic": "image/heic",
	"heif": "image/heif",
}
