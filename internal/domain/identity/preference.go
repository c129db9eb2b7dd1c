package identity

import (
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Language is a supported UI language
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
)

// DefaultLanguage is the language of the primary market
const DefaultLanguage = LanguageArabic

// Direction returns the text direction for the language
func (l Language) Direction() string {
	if l == LanguageArabic {
		return "rtl"
	}
	return "ltr"
}

// ParseLanguage validates a language code
func ParseLanguage(code string) (Language, error) {
	switch Language(code) {
	case LanguageArabic, LanguageEnglish:
		return Language(code), nil
	}
	return "", shared.NewDomainError("INVALID_LANGUAGE", "Unsupported language: "+code)
}

// Preference stores a user's display language and currency
type Preference struct {
	UserID    uuid.UUID
	Language  Language
	Currency  valueobject.Currency
	UpdatedAt time.Time
}

// DefaultPreference is used when a user has not stored any preference
func DefaultPreference(userID uuid.UUID) Preference {
	return Preference{
		UserID:   userID,
		Language: DefaultLanguage,
		Currency: valueobject.DefaultCurrency,
	}
}
