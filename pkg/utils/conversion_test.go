package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBool(t *testing.T) {
	truthy := []any{true, 1, int64(2), 1.5, "true", "YES", " on ", "1", []byte("t"), json.Number("3")}
	for _, v := range truthy {
		assert.True(t, ToBool(v), "%#v", v)
	}

	falsy := []any{nil, false, 0, 0.0, "", "false", "no", "off", []byte("0"), json.Number("0")}
	for _, v := range falsy {
		assert.False(t, ToBool(v), "%#v", v)
	}
}

func TestToFloat64(t *testing.T) {
	f, err := ToFloat64(" 12.5 ")
	require.NoError(t, err)
	assert.Equal(t, 12.5, f)

	f, err = ToFloat64(json.Number("7"))
	require.NoError(t, err)
	assert.Equal(t, 7.0, f)

	_, err = ToFloat64("twelve")
	assert.Error(t, err)

	_, err = ToFloat64(map[string]any{})
	assert.Error(t, err)
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	assert.True(t, IsValidUUID(id))
	assert.NotEqual(t, id, GenerateID())
	assert.False(t, IsValidUUID("not-a-uuid"))
}
