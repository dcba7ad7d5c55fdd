package utils

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// LocalUploader writes icons under a directory when R2 is not configured.
// The returned URL is relative to PublicPrefix.
type LocalUploader struct {
	Dir          string
	PublicPrefix string
}

func NewLocalUploader(dir, publicPrefix string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalUploader{Dir: dir, PublicPrefix: publicPrefix}, nil
}

func (u *LocalUploader) Save(_ context.Context, key string, fileHeader *multipart.FileHeader) (string, error) {
	dest := filepath.Join(u.Dir, filepath.FromSlash(key))
	if err := SaveFile(fileHeader, dest); err != nil {
		return "", err
	}
	return u.PublicPrefix + "/" + key, nil
}

// SaveFile saves the uploaded file to the given destination path
func SaveFile(fileHeader *multipart.FileHeader, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, file)
	return err
}
