package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	app "grape-bot/internal/application"
	"grape-bot/internal/domain/entity"
	"grape-bot/internal/infrastructure/preview"
	"grape-bot/internal/pages"
)

// У сессий REST нет чата
const noChat int64 = 0

// Запас на заголовки multipart сверх лимита файла
const multipartSlack int64 = 1 << 20

type Handler struct {
	users   *app.UserService
	scans   *app.ScanService
	maxSide uint
	log     *zap.Logger
}

func NewHandler(users *app.UserService, scans *app.ScanService, maxSide uint, log *zap.Logger) *Handler {
	return &Handler{
		users:   users,
		scans:   scans,
		maxSide: maxSide,
		log:     log,
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// GetPage отдаёт содержимое раздела
func (h *Handler) GetPage(c *gin.Context) {
	section, err := entity.ParseSection(c.Param("section"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pages.ForLimit(section, h.scans.MaxUploadSize()))
}

func (h *Handler) CreateSession(c *gin.Context) {
	id := uuid.NewString()
	user, err := h.users.Get(c.Request.Context(), id, noChat)
	if err != nil {
		h.internalError(c, "Failed to create session", err)
		return
	}

	h.log.Info("session created", zap.String("session", id))
	c.JSON(http.StatusCreated, newStateView(user))
}

func (h *Handler) GetSession(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id, noChat)
	if err != nil {
		h.internalError(c, "Failed to load session", err)
		return
	}
	c.JSON(http.StatusOK, newStateView(user))
}

func (h *Handler) SetSection(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}

	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	section, err := entity.ParseSection(req.Section)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Navigate(c.Request.Context(), id, noChat, section)
	if err != nil {
		h.internalError(c, "Failed to change section", err)
		return
	}
	c.JSON(http.StatusOK, newStateView(user))
}

func (h *Handler) UploadImage(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}

	maxSize := h.scans.MaxUploadSize()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartSlack)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			scanErr := entity.FileTooLarge(maxSize)
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": scanErr.Message, "kind": scanErr.Kind})
			return
		}
		h.log.Debug("no image in form", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}

	contentType := partType(file.Header.Get("Content-Type"), file.Filename)
	var sel *entity.ImageSelection

	if file.Size > maxSize {
		// Не читаем файл, проверка размера отклонит его
		sel = &entity.ImageSelection{Name: file.Filename, MIMEType: contentType, Size: file.Size}
	} else {
		f, err := file.Open()
		if err != nil {
			h.internalError(c, "Failed to process file", err)
			return
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
		if err != nil {
			h.internalError(c, "Failed to read file", err)
			return
		}
		sel = entity.NewImageSelection(file.Filename, contentType, data)
	}

	user, err := h.scans.SelectFile(c.Request.Context(), id, noChat, sel)
	if err != nil {
		h.internalError(c, "Failed to select file", err)
		return
	}
	c.JSON(http.StatusOK, newStateView(user))
}

// partType тип из заголовка части. Пустой или общий тип определяется по имени файла.
func partType(header, filename string) string {
	if header == "" || header == "application/octet-stream" {
		return entity.SniffMIME(filename, nil)
	}
	return header
}

func (h *Handler) Analyze(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}

	user, err := h.scans.Analyze(c.Request.Context(), id, noChat)
	switch {
	case errors.Is(err, entity.ErrNoSelection),
		errors.Is(err, entity.ErrNotValidated),
		errors.Is(err, entity.ErrScanInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.internalError(c, "Failed to analyze image", err)
		return
	}
	c.JSON(http.StatusOK, newStateView(user))
}

func (h *Handler) Clear(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}

	user, err := h.scans.Clear(c.Request.Context(), id, noChat)
	if err != nil {
		h.internalError(c, "Failed to clear selection", err)
		return
	}
	c.JSON(http.StatusOK, newStateView(user))
}

// Preview отдаёт JPEG-миниатюру выбранного изображения
func (h *Handler) Preview(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id, noChat)
	if err != nil {
		h.internalError(c, "Failed to load session", err)
		return
	}
	sel := user.State.Selection
	if sel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No image selected"})
		return
	}

	thumb, err := preview.Thumbnail(sel.Data, h.maxSide)
	if err != nil {
		h.internalError(c, "Failed to build preview", err)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", thumb)
}

// session проверяет, что сессия из пути существует
func (h *Handler) session(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return "", false
	}

	exists, err := h.users.Exists(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, "Failed to load session", err)
		return "", false
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return "", false
	}
	return id, true
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.log.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
