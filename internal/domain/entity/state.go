package entity

import "fmt"

// Section активный раздел интерфейса
type Section string

const (
	SectionHome     Section = "home"     // главная
	SectionFeatures Section = "features" // описание возможностей
	SectionScan     Section = "scan"     // загрузка и анализ
)

// Sections разделы в порядке навигационной панели
var Sections = []Section{SectionHome, SectionFeatures, SectionScan}

// ParseSection разбирает имя раздела
func ParseSection(s string) (Section, error) {
	for _, sec := range Sections {
		if string(sec) == s {
			return sec, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", s)
}

// Next следующий раздел по кругу
func (s Section) Next() Section {
	for i, sec := range Sections {
		if sec == s {
			return Sections[(i+1)%len(Sections)]
		}
	}
	return SectionHome
}

// State неизменяемое состояние сессии сканирования.
// Меняется только через Reduce. Err и Prediction никогда не заполнены одновременно.
type State struct {
	Section    Section
	Selection  *ImageSelection
	Preview    string // data URI выбранного изображения
	Validated  bool   // выбор прошёл эвристическую проверку
	Loading    bool   // идёт анализ
	Prediction *Prediction
	Err        *ScanError
	Generation uint64 // меняется при каждом новом выборе и очистке
}

// InitialState состояние новой сессии
func InitialState() State {
	return State{Section: SectionHome}
}

// CanScan проверяет, можно ли запустить анализ.
func (s State) CanScan() error {
	switch {
	case s.Selection == nil:
		return ErrNoSelection
	case !s.Validated:
		return ErrNotValidated
	case s.Loading:
		return ErrScanInProgress
	}
	return nil
}

func (s State) withError(err *ScanError) State {
	s.Err = err
	s.Prediction = nil
	return s
}

func (s State) withPrediction(p *Prediction) State {
	s.Prediction = p
	s.Err = nil
	return s
}

// resetSelection сбрасывает всё, что относится к предыдущему файлу.
func (s State) resetSelection() State {
	s.Generation++
	s.Selection = nil
	s.Preview = ""
	s.Validated = false
	s.Loading = false
	s.Prediction = nil
	s.Err = nil
	return s
}

// Action переход состояния
type Action interface {
	apply(s State) State
}

// Reduce применяет действие к состоянию и возвращает новое состояние.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

// Navigate переключает раздел. Ограничений на переходы нет.
type Navigate struct {
	Section Section
}

func (a Navigate) apply(s State) State {
	if a.Section == "" {
		return s
	}
	s.Section = a.Section
	return s
}

// FileRejected файл не прошёл проверку типа или размера.
type FileRejected struct {
	Err *ScanError
}

func (a FileRejected) apply(s State) State {
	s = s.resetSelection()
	if a.Err == nil {
		return s
	}
	return s.withError(a.Err)
}

// FileSelected принят новый файл, ждёт эвристической проверки.
type FileSelected struct {
	Selection *ImageSelection
	Preview   string
}

func (a FileSelected) apply(s State) State {
	s = s.resetSelection()
	s.Selection = a.Selection
	s.Preview = a.Preview
	return s
}

// ValidationFinished итог эвристики для выбора с номером Generation.
type ValidationFinished struct {
	Generation uint64
	Passed     bool
	Err        *ScanError // переопределяет ErrNotALeaf, если задана
}

func (a ValidationFinished) apply(s State) State {
	if a.Generation != s.Generation || s.Selection == nil {
		return s
	}
	if a.Passed {
		s.Validated = true
		return s
	}
	s.Validated = false
	if a.Err != nil {
		return s.withError(a.Err)
	}
	return s.withError(ErrNotALeaf)
}

// ScanStarted начало анализа. Игнорируется, если CanScan возвращает ошибку.
type ScanStarted struct{}

func (ScanStarted) apply(s State) State {
	if s.CanScan() != nil {
		return s
	}
	s.Loading = true
	s.Err = nil
	return s
}

// ScanFinished итог анализа выбора с номером Generation.
// Результат для устаревшего выбора отбрасывается.
type ScanFinished struct {
	Generation uint64
	Prediction *Prediction
	Err        error
}

func (a ScanFinished) apply(s State) State {
	if a.Generation != s.Generation {
		return s
	}
	s.Loading = false
	if a.Err != nil {
		return s.withError(AsScanError(a.Err))
	}
	if a.Prediction == nil {
		return s.withError(ErrUnexpected)
	}
	return s.withPrediction(a.Prediction)
}

// Cleared пользователь убрал выбранный файл.
type Cleared struct{}

func (Cleared) apply(s State) State {
	return s.resetSelection()
}
