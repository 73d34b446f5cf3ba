package models

// DerivativeJob asks the pipeline to produce thumbnails for an image.
type DerivativeJob struct {
	UserID string `json:"userId"`
	FileID string `json:"fileId"`
}

// WelcomeJob is enqueued once a user has registered.
type WelcomeJob struct {
	UserID string `json:"userId"`
}
