package client

import "time"

// FileType mirrors the server node kinds.
type FileType string

const (
	TypeFolder FileType = "folder"
	TypeFile   FileType = "file"
	TypeImage  FileType = "image"
)

// User is the profile returned by /register and /profile.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// File is the public view of a node.
type File struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Type      FileType  `json:"type"`
	ParentID  string    `json:"parentId"`
	IsPublic  bool      `json:"isPublic"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewFile is the payload of an upload or mkdir. Data holds raw bytes and is
// base64 encoded on the wire.
type NewFile struct {
	Name     string
	Type     FileType
	ParentID string
	IsPublic bool
	Data     []byte
}

// Content is downloaded file data.
type Content struct {
	MimeType string
	Data     []byte
}

// Health is the /health report.
type Health struct {
	Status   string          `json:"status"`
	Services map[string]bool `json:"services"`
}
