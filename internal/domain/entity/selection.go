package entity

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// DefaultMaxUploadSize предел размера загружаемого файла (10 MiB)
const DefaultMaxUploadSize int64 = 10 * 1024 * 1024

// FormatLimit размер лимита в виде, в котором он показывается пользователю
func FormatLimit(n int64) string {
	const kib, mib = 1024, 1024 * 1024
	switch {
	case n >= mib && n%mib == 0:
		return fmt.Sprintf("%dMB", n/mib)
	case n >= mib:
		return fmt.Sprintf("%.1fMB", float64(n)/mib)
	case n >= kib && n%kib == 0:
		return fmt.Sprintf("%dKB", n/kib)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// UploadHint подсказка о допустимых файлах
func UploadHint(maxSize int64) string {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return "PNG, JPG, JPEG up to " + FormatLimit(maxSize)
}

// ImageSelection выбранный пользователем файл
type ImageSelection struct {
	Name     string // имя файла, может быть пустым
	MIMEType string // заявленный тип содержимого
	Size     int64  // размер в байтах
	Data     []byte // содержимое файла
}

// NewImageSelection создаёт выбор по содержимому файла.
// Если тип не передан, он определяется по расширению, затем по содержимому.
func NewImageSelection(name, mimeType string, data []byte) *ImageSelection {
	if mimeType == "" {
		mimeType = SniffMIME(name, data)
	}
	return &ImageSelection{
		Name:     name,
		MIMEType: mimeType,
		Size:     int64(len(data)),
		Data:     data,
	}
}

// SniffMIME определяет MIME-тип по расширению или первым байтам файла.
func SniffMIME(name string, data []byte) string {
	if ext := filepath.Ext(name); ext != "" {
		if t := mime.TypeByExtension(strings.ToLower(ext)); t != "" {
			return t
		}
	}
	if len(data) == 0 {
		return ""
	}
	return http.DetectContentType(data)
}

// SizeMB размер в мегабайтах, как его показывает интерфейс
func (s *ImageSelection) SizeMB() float64 {
	return float64(s.Size) / 1024 / 1024
}

// DataURI строит data URI файла, как FileReader.readAsDataURL.
func (s *ImageSelection) DataURI() string {
	if s == nil {
		return ""
	}
	mimeType := s.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}

// CheckUpload проверяет тип и размер файла до декодирования.
// Лимит строгий: файл ровно maxSize байт допустим.
func CheckUpload(s *ImageSelection, maxSize int64) *ScanError {
	if s == nil || !strings.HasPrefix(s.MIMEType, "image/") {
		return ErrInvalidFileType
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	if s.Size > maxSize {
		return FileTooLarge(maxSize)
	}
	return nil
}
