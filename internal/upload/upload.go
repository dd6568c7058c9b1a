// Package upload はプロフィール画像の保存を提供します。
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNotAnImage は画像以外のファイルがアップロードされた場合に返されます。
var ErrNotAnImage = errors.New("uploaded file is not an image")

// ErrTooLarge はサイズ上限を超えるファイルがアップロードされた場合に返されます。
var ErrTooLarge = errors.New("uploaded file is too large")

// Saver はアップロードされたファイルを保存先ディレクトリに書き込みます。
type Saver struct {
	dir     string
	maxSize int64
}

// NewSaver は Saver を作成します。保存先ディレクトリがなければ作成します。
func NewSaver(dir string, maxSize int64) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Saver{dir: dir, maxSize: maxSize}, nil
}

// Save はアップロードファイルを検証して保存し、公開パスを返します。
// 一時ファイルに書き込んでから最終名にリネームするため、
// 途中で失敗した場合も中間ファイルは残りません。
// ファイル名には現在時刻（ミリ秒）のプレフィックスを付けて一意にします。
func (s *Saver) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxSize {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(s.dir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	saved := false
	defer func() {
		if !saved {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("writing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	mime, err := mimetype.DetectFile(tmpPath)
	if err != nil {
		return "", fmt.Errorf("detecting content type: %w", err)
	}
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", ErrNotAnImage
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitize(fh.Filename))
	if err := os.Rename(tmpPath, filepath.Join(s.dir, filename)); err != nil {
		return "", fmt.Errorf("storing upload: %w", err)
	}
	saved = true

	return "/uploads/" + filename, nil
}

// sanitize はファイル名からパス区切りなどの危険な文字を取り除きます。
func sanitize(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
