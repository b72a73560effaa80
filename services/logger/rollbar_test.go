package logsvc

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRollbarLogger_prepare(t *testing.T) {
	l := RollbarLogger{}
	first := errors.New("first")

	got := l.prepare("saving movement", []interface{}{
		first,
		map[string]interface{}{"collection": "movements"},
		errors.New("second"),
		map[string]interface{}{"id": "m1"},
	})

	if assert.Len(t, got, 3) {
		assert.Equal(t, "saving movement", got[0])
		assert.Equal(t, first, got[1])
		assert.Equal(t, map[string]interface{}{"collection": "movements", "id": "m1"}, got[2])
	}
	assert.Equal(t, []interface{}{"hello"}, l.prepare("hello", nil))
}

func TestRollbarLogger_print(t *testing.T) {
	var buf bytes.Buffer
	l := RollbarLogger{std: log.New(&buf, "API : ", 0)}
	l.Enable(false)

	l.Info("loaded movements", map[string]interface{}{"count": 2})

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "API : loaded movements\n"))
	assert.Contains(t, out, "map[count:2]")
}
