package catalog

import (
	"golang.org/x/text/language"

	"github.com/MorseWayne/nursery_shop/internal/domain"
)

var (
	supportedTags = []language.Tag{language.Hebrew, language.English, language.Russian}
	matcher       = language.NewMatcher(supportedTags)
)

// NegotiateLanguage 决定展示语言：
// 显式参数优先，其次 Accept-Language，最后使用 fallback
func NegotiateLanguage(param, acceptLanguage string, fallback domain.Language) domain.Language {
	if lang, ok := domain.ParseLanguage(param); ok {
		return lang
	}
	if acceptLanguage != "" {
		tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(tags) > 0 {
			_, idx, conf := matcher.Match(tags...)
			if conf != language.No {
				return domain.SupportedLanguages[idx]
			}
		}
	}
	if _, ok := domain.ParseLanguage(string(fallback)); ok {
		return fallback
	}
	return domain.LanguageHE
}
