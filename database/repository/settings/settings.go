package settingsRepo

import "tray/models"

// SettingsRepository stores mutable platform-wide settings.
type SettingsRepository interface {
	Get() (*models.PlatformSettings, error)
	SetFeePercent(percent float64, updatedBy string) error
}
