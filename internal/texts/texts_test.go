package texts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tx, err := New()
	require.NoError(t, err)
	require.NotNil(t, tx)
}

func TestT(t *testing.T) {
	tx, err := New()
	require.NoError(t, err)

	assert.Equal(t, "⚙️ Настройки", tx.T("btn.settings", nil))
	assert.Contains(t, tx.T("reg.done", map[string]any{"title": "Йога в парке"}), "Йога в парке")

	// Дыра в локали видна как ключ, пустой ключ — пустая строка
	assert.Equal(t, "no.such.key", tx.T("no.such.key", nil))
	assert.Equal(t, "", tx.T("", nil))
}
