package core

type AppConfig interface {
	GetRuntimePath() string
	GetDatabasePath() string
	GetLogPath() string
	GetHistoryWindow() int
	GetRetainTurns() int
	GetStrategy() Strategy
}

type TelegramConfig interface {
	GetTelegramToken() string
	GetTelegramOwnerID() int64
}
