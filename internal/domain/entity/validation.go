package entity

// ValidationOutcome хранит итог эвристической проверки изображения.
type ValidationOutcome struct {
	Passed bool    // изображение похоже на лист
	Ratio  float64 // доля «зелёных» пикселей
	Reason string  // пояснение для логов, пустое при успехе
}

// Description — текстовое описание результата для пользователя.
type Description struct {
	Title string
	Text  string
}
