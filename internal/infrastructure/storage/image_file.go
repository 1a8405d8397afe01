package storage

import (
	"os"
	"path/filepath"

	"grape-bot/internal/domain/entity"
)

// ReadImageFile читает файл с диска как выбор пользователя. Файлы больше maxSize
// не читаются: выбор получает только размер и будет отклонён проверкой.
func ReadImageFile(path string, maxSize int64) (*entity.ImageSelection, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	if info.Size() > maxSize {
		return &entity.ImageSelection{
			Name:     name,
			MIMEType: entity.SniffMIME(name, nil),
			Size:     info.Size(),
		}, nil
	}

	// #nosec G304 - путь задаёт сам пользователь
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return entity.NewImageSelection(name, "", data), nil
}
