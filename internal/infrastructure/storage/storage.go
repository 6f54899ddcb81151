// Package storage 保存上传的图片（作者照片、图书封面、用户头像）
package storage

import (
	"bytes"
	"context"
	"image"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

// 图片分类目录
const (
	KindAuthors = "autores"
	KindBooks   = "libros"
	KindUsers   = "perfiles"
)

var (
	ErrInvalidImage  = apperrors.New(apperrors.ErrCodeInvalidImage, "仅支持JPEG、PNG、GIF格式的图片")
	ErrImageTooLarge = apperrors.New(apperrors.ErrCodeInvalidImage, "图片文件过大")
)

// allowedTypes 允许的MIME类型及保存时使用的扩展名
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Storage 图片存储接口，返回的路径保存在数据库里
type Storage interface {
	Save(ctx context.Context, kind string, r io.Reader) (string, error)
	Delete(ctx context.Context, stored string) error
	URL(stored string) string
}

// LocalStorage 保存在本地磁盘，由API在MediaURL下提供访问
type LocalStorage struct {
	root     string
	urlBase  string
	maxBytes int64
	maxSide  int
}

// NewLocalStorage maxSide为0时不缩放
func NewLocalStorage(root, urlBase string, maxBytes int64, maxSide int) *LocalStorage {
	return &LocalStorage{
		root:     root,
		urlBase:  strings.TrimRight(urlBase, "/"),
		maxBytes: maxBytes,
		maxSide:  maxSide,
	}
}

// Save 校验真实类型（不信任文件名和Content-Type），按最长边缩放后用uuid文件名保存
// 返回相对路径，如 libros/3f2c...e1.jpg
func (s *LocalStorage) Save(ctx context.Context, kind string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", apperrors.Wrap(err, "读取上传文件失败")
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrImageTooLarge
	}

	ext, ok := allowedTypes[mimetype.Detect(data).String()]
	if !ok {
		return "", ErrInvalidImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrInvalidImage
	}
	img = s.fit(img)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.New(apperrors.ErrCodeStorageError, "创建图片目录失败")
	}

	name := uuid.NewString() + ext
	if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
		return "", apperrors.Wrap(err, "保存图片失败")
	}
	return path.Join(kind, name), nil
}

func (s *LocalStorage) fit(img image.Image) image.Image {
	if s.maxSide <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= s.maxSide && b.Dy() <= s.maxSide {
		return img
	}
	return imaging.Fit(img, s.maxSide, s.maxSide, imaging.Lanczos)
}

// Delete 删除已保存的图片，文件不存在不算错误
func (s *LocalStorage) Delete(_ context.Context, stored string) error {
	if stored == "" {
		return nil
	}
	full, ok := s.resolve(stored)
	if !ok {
		return nil
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return apperrors.Wrap(err, "删除图片失败")
	}
	return nil
}

// URL 存储路径转为访问地址，空路径返回空字符串
func (s *LocalStorage) URL(stored string) string {
	if stored == "" {
		return ""
	}
	return s.urlBase + "/" + strings.TrimLeft(stored, "/")
}

// resolve 只允许访问root目录下的文件
func (s *LocalStorage) resolve(stored string) (string, bool) {
	clean := filepath.Clean(filepath.FromSlash(stored))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(s.root, clean), true
}
