package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/palmcourt/hotel-admin/internal/utils"
)

var (
	errTooManyImages    = errors.New("图片数量过多")
	errUnsupportedImage = errors.New("只支持 jpeg、png、gif 和 webp 格式的图片")
	errInvalidForm      = &invalidFormError{msg: "请求体必须是 multipart 表单"}
)

type invalidFormError struct {
	msg string
}

func (e *invalidFormError) Error() string {
	return e.msg
}

func invalidForm(format string, args ...any) error {
	return &invalidFormError{msg: fmt.Sprintf(format, args...)}
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

const uploadURLPrefix = "/uploads/"

// readForm 同时接受 multipart 和 urlencoded 两种表单
func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) (*multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Storage.MaxUploadSize)

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(h.config.Storage.MaxUploadSize); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				return nil, invalidForm("请求体不能超过 %d 字节", maxBytesErr.Limit)
			}
			return nil, errInvalidForm
		}
		return r.MultipartForm, nil
	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return nil, errInvalidForm
		}
		return &multipart.Form{Value: r.PostForm, File: map[string][]*multipart.FileHeader{}}, nil
	default:
		return nil, errInvalidForm
	}
}

func formString(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := strings.TrimSpace(values[0])
	return &v
}

func formBool(form *multipart.Form, key string) (*bool, error) {
	s := formString(form, key)
	if s == nil {
		return nil, nil
	}

	// 浏览器的 checkbox 提交 "on"
	if *s == "on" {
		b := true
		return &b, nil
	}
	b, err := strconv.ParseBool(*s)
	if err != nil {
		return nil, invalidForm("%s 必须是布尔值", key)
	}
	return &b, nil
}

func formFloat(form *multipart.Form, key string) (*float64, error) {
	s := formString(form, key)
	if s == nil || *s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil, invalidForm("%s 必须是数字", key)
	}
	return &f, nil
}

func formInt(form *multipart.Form, key string) (*int, error) {
	s := formString(form, key)
	if s == nil || *s == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(*s)
	if err != nil {
		return nil, invalidForm("%s 必须是整数", key)
	}
	return &i, nil
}

// saveImages 把上传的图片落盘，返回可以通过 /uploads 访问的路径
func (h *Handler) saveImages(files []*multipart.FileHeader, name string) ([]string, error) {
	if len(files) > h.config.Storage.MaxImages {
		return nil, fmt.Errorf("%w，最多 %d 张", errTooManyImages, h.config.Storage.MaxImages)
	}

	if err := os.MkdirAll(h.config.Storage.UploadDir, 0o755); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		p, err := h.saveImage(fh, name)
		if err != nil {
			h.removeImages(paths)
			return nil, err
		}
		paths = append(paths, p)
	}

	return paths, nil
}

func (h *Handler) saveImage(fh *multipart.FileHeader, name string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	ext, ok := imageExtensions[http.DetectContentType(head[:n])]
	if !ok {
		return "", errUnsupportedImage
	}

	filename := fmt.Sprintf("%s-%s%s", utils.Slugify(name), uuid.NewString(), ext)
	dst, err := os.Create(filepath.Join(h.config.Storage.UploadDir, filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := dst.Write(head[:n]); err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return uploadURLPrefix + filename, nil
}

// removeImages 删除失败只记录日志，不影响请求结果
func (h *Handler) removeImages(paths []string) {
	for _, p := range paths {
		name, ok := strings.CutPrefix(p, uploadURLPrefix)
		if !ok || name == "" || strings.Contains(name, "/") {
			continue
		}
		if err := os.Remove(filepath.Join(h.config.Storage.UploadDir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("删除图片失败", "path", p, "error", err)
		}
	}
}

func isUploadClientError(err error) bool {
	return errors.Is(err, errTooManyImages) || errors.Is(err, errUnsupportedImage)
}

func isFormClientError(err error) bool {
	var formErr *invalidFormError
	var validationErrors validator.ValidationErrors
	return errors.As(err, &formErr) || errors.As(err, &validationErrors)
}
