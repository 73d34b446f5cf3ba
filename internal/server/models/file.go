// Package models defines server-side data models persisted in the metadata
// store and the payloads exchanged over the job queue.
package models

import (
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
)

// FileType is the immutable kind of a file tree node.
type FileType string

const (
	FileTypeFolder FileType = "folder"
	FileTypeFile   FileType = "file"
	FileTypeImage  FileType = "image"
)

// Valid reports whether t is one of the known kinds.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeFolder, FileTypeFile, FileTypeImage:
		return true
	}
	return false
}

// File is a node of a user's tree. Folders never carry a ContentKey;
// files and images always do, and it never changes once set.
type File struct {
	ID     string   `bson:"_id"`
	UserID string   `bson:"userId"`
	Name   string   `bson:"name"`
	Type   FileType `bson:"type"`
	// ParentID is the id of a folder owned by UserID, or common.RootParentID.
	ParentID   string    `bson:"parentId"`
	IsPublic   bool      `bson:"isPublic"`
	ContentKey string    `bson:"contentKey,omitempty"`
	CreatedAt  time.Time `bson:"createdAt"`
}

// IsFolder reports whether the node is a folder.
func (f *File) IsFolder() bool {
	return f.Type == FileTypeFolder
}

// IsRoot reports whether the node sits at the top of the tree.
func (f *File) IsRoot() bool {
	return f.ParentID == "" || f.ParentID == common.RootParentID
}
