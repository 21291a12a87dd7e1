package dining

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/palmcourt/hotel-admin/internal/gateway"
)

func imageFile(field string, img Image) gateway.FormFile {
	return gateway.FormFile{
		Field:    field,
		Filename: img.Filename,
		Content:  bytes.NewReader(img.Content),
	}
}

// LoadImage 从本地文件读取待上传的图片
func LoadImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, err
	}
	return Image{Filename: filepath.Base(path), Content: data}, nil
}
