// Package upload stores multipart files under the static uploads directory.
package upload

import (
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
)

// URLPrefix is where the upload directory is served from.
const URLPrefix = "/uploads"

const MaxFiles = 5

// Policy describes what a form field may carry.
type Policy struct {
	Field   string
	Subdir  string
	Exts    []string
	MIMEs   []string
	Message string
}

var imageMIMEs = []string{"image/jpeg", "image/png", "image/gif"}

var ProductImages = Policy{
	Field:   "images",
	Subdir:  "products",
	Exts:    []string{".jpg", ".jpeg", ".png", ".gif"},
	MIMEs:   imageMIMEs,
	Message: "Invalid file type. Only JPEG, PNG, and GIF images are allowed.",
}

var SampleFiles = Policy{
	Field:   "sample",
	Subdir:  "samples",
	Exts:    []string{".jpg", ".jpeg", ".png", ".gif", ".pdf", ".txt"},
	MIMEs:   append([]string{"application/pdf", "text/plain"}, imageMIMEs...),
	Message: "Invalid file type. Only images, PDF, and text files are allowed for samples.",
}

type Store struct {
	dir      string
	maxBytes int64
}

func NewStore(dir string, maxMB int) *Store {
	return &Store{dir: dir, maxBytes: int64(maxMB) << 20}
}

func (s *Store) MaxBytes() int64 { return s.maxBytes }

func (s *Store) check(fh *multipart.FileHeader, p Policy) (string, error) {
	if fh.Size > s.maxBytes {
		return "", apperr.Validation("File size too large. Maximum size is " + strconv.FormatInt(s.maxBytes>>20, 10) + "MB.")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	for _, e := range p.Exts {
		if e == ext {
			return ext, nil
		}
	}
	return "", apperr.Validation(p.Message)
}

// Save validates one file by extension, size and sniffed content, then
// writes it under a random name. It returns the public path.
func (s *Store) Save(fh *multipart.FileHeader, p Policy) (string, error) {
	ext, err := s.check(fh, p)
	if err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", err
	}
	allowed := false
	for _, m := range p.MIMEs {
		if mtype.Is(m) {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", apperr.Validation(p.Message)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Join(s.dir, p.Subdir), 0o755); err != nil {
		return "", err
	}
	name := p.Field + "-" + uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, p.Subdir, name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return path.Join(URLPrefix, p.Subdir, name), nil
}

// SaveAll stores every file or none of them.
func (s *Store) SaveAll(files []*multipart.FileHeader, p Policy) ([]string, error) {
	if len(files) > MaxFiles {
		return nil, apperr.Validation("Too many files. Maximum " + strconv.Itoa(MaxFiles) + " files allowed.")
	}
	out := make([]string, 0, len(files))
	for _, fh := range files {
		u, err := s.Save(fh, p)
		if err != nil {
			s.Remove(out...)
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// Remove deletes previously saved files; used when the row that would
// reference them could not be written.
func (s *Store) Remove(urls ...string) {
	for _, u := range urls {
		rel := strings.TrimPrefix(u, URLPrefix+"/")
		if rel == u || strings.Contains(rel, "..") {
			continue
		}
		_ = os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
	}
}
