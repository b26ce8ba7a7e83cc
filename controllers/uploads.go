// File: /controllers/uploads.go
package controllers

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"

	"convoy-api/services"

	"github.com/gabriel-vasile/mimetype"
)

// openUpload opens a multipart file and sniffs its real content type. The
// client's declared type is ignored. The caller must close the returned file.
func openUpload(fh *multipart.FileHeader) (services.UploadFile, io.Closer, error) {
	file, err := fh.Open()
	if err != nil {
		return services.UploadFile{}, nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}

	detected, err := mimetype.DetectReader(file)
	if err != nil {
		file.Close()
		return services.UploadFile{}, nil, fmt.Errorf("sniff %s: %w", fh.Filename, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return services.UploadFile{}, nil, fmt.Errorf("rewind %s: %w", fh.Filename, err)
	}

	return services.UploadFile{
		Name:        fh.Filename,
		ContentType: detected.String(),
		Size:        fh.Size,
		Content:     file,
	}, file, nil
}

// readUpload buffers up to limit+1 bytes of a streamed file part and sniffs
// it. Anything past that is counted and discarded, so Size is always the
// real size and an oversized file fails validation without being held.
func readUpload(part *multipart.Part, limit int64) (services.UploadFile, error) {
	var buf bytes.Buffer
	kept, err := io.CopyN(&buf, part, limit+1)
	if err != nil && err != io.EOF {
		return services.UploadFile{}, fmt.Errorf("read %s: %w", part.FileName(), err)
	}
	dropped, err := io.Copy(io.Discard, part)
	if err != nil {
		return services.UploadFile{}, fmt.Errorf("read %s: %w", part.FileName(), err)
	}

	return services.UploadFile{
		Name:        part.FileName(),
		ContentType: mimetype.Detect(buf.Bytes()).String(),
		Size:        kept + dropped,
		Content:     bytes.NewReader(buf.Bytes()),
	}, nil
}
