package core

import "fmt"

const (
	DateFormatDMY DateFormat = "dd-mm-yyyy"
	DateFormatMDY DateFormat = "mm-dd-yyyy"
	DateFormatYMD DateFormat = "yyyy-mm-dd"

	LangBengali Language = "bn"
	LangEnglish Language = "en"
)

type (
	DateFormat string
	Language   string

	// Settings is the process-wide preference singleton. It is loaded once at
	// startup and mutated only through explicit save calls.
	Settings struct {
		Currency   string     `json:"currency"`
		DateFormat DateFormat `json:"dateFormat"`
		DarkMode   bool       `json:"darkMode"`
		Language   Language   `json:"language"`
	}

	// SettingsPatch carries a partial settings update; nil fields are left
	// unchanged.
	SettingsPatch struct {
		Currency   *string     `json:"currency,omitempty"`
		DateFormat *DateFormat `json:"dateFormat,omitempty"`
		DarkMode   *bool       `json:"darkMode,omitempty"`
		Language   *Language   `json:"language,omitempty"`
	}
)

// DefaultSettings returns the out-of-the-box preferences.
func DefaultSettings() Settings {
	return Settings{
		Currency:   "BDT",
		DateFormat: DateFormatDMY,
		DarkMode:   false,
		Language:   LangBengali,
	}
}

func (f DateFormat) Validate() error {
	switch f {
	case DateFormatDMY, DateFormatMDY, DateFormatYMD:
		return nil
	default:
		return fmt.Errorf("invalid date format %q", string(f))
	}
}

func (l Language) Validate() error {
	switch l {
	case LangBengali, LangEnglish:
		return nil
	default:
		return fmt.Errorf("invalid language %q", string(l))
	}
}

func (s Settings) Validate() error {
	if s.Currency == "" {
		return fmt.Errorf("currency cannot be empty")
	}
	if err := s.DateFormat.Validate(); err != nil {
		return err
	}
	return s.Language.Validate()
}

// Apply returns a copy of s with the patch's non-nil fields applied.
func (s Settings) Apply(p SettingsPatch) Settings {
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.DateFormat != nil {
		s.DateFormat = *p.DateFormat
	}
	if p.DarkMode != nil {
		s.DarkMode = *p.DarkMode
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	return s
}

// FormatDate renders d according to the configured date format.
func (s Settings) FormatDate(d Date) string {
	if d.IsZero() {
		return ""
	}
	switch s.DateFormat {
	case DateFormatMDY:
		return d.Format("01-02-2006")
	case DateFormatYMD:
		return d.Format("2006-01-02")
	default:
		return d.Format("02-01-2006")
	}
}
