package sumsub

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// MultipartPart is one part of a multipart/form-data body.
// Parts with a FileName are written as file parts.
type MultipartPart struct {
	Name     string
	FileName string
	Content  io.Reader
}

// MultipartBody serializes parts into a buffer and returns the bytes with the matching Content-Type.
//
// The whole body is built in memory because the signature covers every byte sent.
func MultipartBody(parts ...MultipartPart) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range parts {
		var (
			pw  io.Writer
			err error
		)
		if p.FileName != "" {
			pw, err = w.CreateFormFile(p.Name, p.FileName)
		} else {
			pw, err = w.CreateFormField(p.Name)
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part %q: %w", p.Name, err)
		}
		if _, err := io.Copy(pw, p.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write part %q: %w", p.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
