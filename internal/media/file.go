package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const (
	MaxFiles    = 10
	MaxFileSize = 10 << 20
)

// sniffLength is how many leading bytes http.DetectContentType looks at.
const sniffLength = 512

var (
	ErrFileTooLarge = errors.New("file too large")
	ErrNotImage     = errors.New("not an image")
)

// File is an image staged on local disk, waiting for upload.
type File struct {
	Path        string
	Name        string
	ContentType string
}

// Stage copies a multipart part into dir so it outlives the request. The
// content type is sniffed from the bytes; the client's header is ignored.
func Stage(dir string, header *multipart.FileHeader) (File, error) {
	if header.Size > MaxFileSize {
		return File{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, header.Filename, MaxFileSize)
	}

	source, err := header.Open()
	if err != nil {
		return File{}, err
	}
	defer source.Close()

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(source, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return File{}, err
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return File{}, fmt.Errorf("%w: %s", ErrNotImage, header.Filename)
	}

	target, err := os.CreateTemp(dir, "comment-image-*"+filepath.Ext(header.Filename))
	if err != nil {
		return File{}, err
	}

	body := io.MultiReader(bytes.NewReader(head), io.LimitReader(source, int64(MaxFileSize-n)))
	_, err = io.Copy(target, body)
	closeErr := target.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(target.Name())
		return File{}, err
	}

	return File{
		Path:        target.Name(),
		Name:        filepath.Base(header.Filename),
		ContentType: contentType,
	}, nil
}

// Discard removes staged files that were never handed to a dispatcher.
func Discard(files []File) {
	for _, file := range files {
		os.Remove(file.Path)
	}
}
