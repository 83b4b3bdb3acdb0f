package texts

import (
	"embed"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

// Texts все пользовательские строки бота. Тексты лежат в active.ru.toml,
// чтобы менять формулировки без перекомпиляции логики.
type Texts struct {
	localizer *i18n.Localizer
}

func New() (*Texts, error) {
	bundle := i18n.NewBundle(language.Russian)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if _, err := bundle.LoadMessageFileFS(localeFS, "active.ru.toml"); err != nil {
		return nil, fmt.Errorf("load locale file: %w", err)
	}

	return &Texts{
		localizer: i18n.NewLocalizer(bundle, language.Russian.String()),
	}, nil
}

// T отдаёт строку по ключу. Если ключа нет — возвращает сам ключ,
// чтобы дыра в локали была видна в чате, а не роняла бота.
func (t *Texts) T(key string, data map[string]any) string {
	if key == "" {
		return ""
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		return key
	}
	return msg
}
