package model

type UploadResponse struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
}
