package domain

// UserSettings holds cosmetic per-user preferences.
type UserSettings struct {
	ShowStockWarnings bool `json:"show_stock_warnings"`
}

func DefaultUserSettings() UserSettings {
	return UserSettings{ShowStockWarnings: true}
}
