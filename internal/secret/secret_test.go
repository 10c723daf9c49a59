package secret_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/jrsteele09/auth-service/internal/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString_NeverPrintsValue(t *testing.T) {
	s := secret.New("Horse1234!")

	assert.Equal(t, "Horse1234!", s.Expose())
	assert.NotContains(t, fmt.Sprintf("%v %s %+v %#v", s, s, s, s), "Horse1234!")

	data, err := json.Marshal(struct {
		Password secret.String `json:"password"`
	}{Password: s})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Horse1234!")
}

func TestString_Masked(t *testing.T) {
	t.Run("short secret reveals nothing", func(t *testing.T) {
		masked := secret.New("abc").Masked()
		assert.NotContains(t, masked, "abc")
		assert.Equal(t, strings.Repeat("*", 41), masked)
	})

	t.Run("long secret reveals a suffix", func(t *testing.T) {
		masked := secret.New("0123456789abcdefghij").Masked()
		assert.True(t, strings.HasSuffix(masked, "defghij"))
		assert.False(t, strings.Contains(masked, "0123"))
	})
}

func TestString_Equal(t *testing.T) {
	assert.True(t, secret.New("a").Equal(secret.New("a")))
	assert.False(t, secret.New("a").Equal(secret.New("b")))
	assert.False(t, secret.New("abc").Equal(secret.New("ab")))
	assert.False(t, secret.New("").Equal(secret.New("a")))
	assert.True(t, secret.New("").Equal(secret.New("")))
	assert.True(t, secret.New("").IsEmpty())
}
