package entity

// User представляет пользователя одного из интерфейсов
type User struct {
	ID     string // Telegram User ID, id HTTP-сессии или имя локальной сессии
	ChatID int64  // Telegram Chat ID, 0 вне Telegram
	State  State  // Текущее состояние сессии
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID string, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  InitialState(),
	}
}

// Apply применяет действие к состоянию пользователя
func (u *User) Apply(a Action) {
	u.State = Reduce(u.State, a)
}
