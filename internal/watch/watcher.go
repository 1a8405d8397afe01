package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"

	app "grape-bot/internal/application"
	"grape-bot/internal/formatter"
	"grape-bot/internal/infrastructure/storage"
)

// DefaultDebounce пауза после последнего события, чтобы файл успел дописаться
const DefaultDebounce = 300 * time.Millisecond

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// IsImageFile проверяет расширение файла
func IsImageFile(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// Watcher следит за каталогом и анализирует каждое новое изображение
type Watcher struct {
	scans    *app.ScanService
	log      *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

func New(scans *app.ScanService, log *zap.Logger, debounce time.Duration) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		scans:    scans,
		log:      log,
		debounce: debounce,
		pending:  make(map[string]*time.Timer),
	}
}

// Process проверяет и анализирует один файл. Каждый вызов получает свою сессию,
// поэтому повторная запись файла во время анализа не отменяет предыдущий.
func (w *Watcher) Process(ctx context.Context, path string) (formatter.Result, error) {
	sessionID := "watch:" + path + ":" + uuid.NewString()

	sel, err := storage.ReadImageFile(path, w.scans.MaxUploadSize())
	if err != nil {
		return formatter.Result{}, fmt.Errorf("read %s: %w", path, err)
	}

	st, err := w.scans.ScanOnce(ctx, sessionID, sel)
	if err != nil {
		return formatter.Result{}, err
	}
	return formatter.FromState(filepath.Base(path), st), nil
}

// Run следит за каталогом dir до отмены ctx и передаёт результаты в handle.
func (w *Watcher) Run(ctx context.Context, dir string, handle func(formatter.Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	w.log.Info("watching directory", zap.String("dir", dir))

	defer w.wait()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !IsImageFile(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name, handle)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", zap.Error(err))
		}
	}
}

// schedule откладывает обработку до паузы в событиях по файлу
func (w *Watcher) schedule(ctx context.Context, path string, handle func(formatter.Result)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		t.Reset(w.debounce)
		return
	}

	w.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()

		w.mu.Lock()
		if w.pending[path] == timer {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}

		res, err := w.Process(ctx, path)
		if err != nil {
			w.log.Error("process failed", zap.String("file", path), zap.Error(err))
			return
		}
		handle(res)
	})
	w.pending[path] = timer
}

// wait останавливает отложенные обработки и ждёт запущенные
func (w *Watcher) wait() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()

	w.wg.Wait()
}
