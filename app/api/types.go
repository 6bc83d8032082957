package api

import (
	"github.com/lysyi3m/rss-planet/app/database"
)

type Handler struct {
	entryRepo    database.EntryRepository
	settingsRepo database.SettingsRepository
	outputDir    string
}
