package domain

// ImageFile is an image submitted for upload.
type ImageFile struct {
	Name string
	Data []byte
}

// UploadedImage describes a stored image and where it can be downloaded.
type UploadedImage struct {
	Name        string `json:"name"`
	Reference   string `json:"reference"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
}
