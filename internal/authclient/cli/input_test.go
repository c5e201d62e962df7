package cli

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{name: "Trims line", input: "  a@x.com \n", expected: "a@x.com"},
		{name: "Partial line before EOF", input: "1234", expected: "1234"},
		{name: "Empty input", input: "", err: io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			text, err := GetSimpleText(bufio.NewReader(strings.NewReader(tt.input)), "Email", out)

			assert.Equal(t, "Email\n> ", out.String())
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, text)
		})
	}
}

func TestGetTextWithDefault(t *testing.T) {
	out := &bytes.Buffer{}
	reader := bufio.NewReader(strings.NewReader("\nb@x.com\n"))

	text, err := GetTextWithDefault(reader, "Email", "a@x.com", out)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", text)
	assert.Contains(t, out.String(), "Email [a@x.com]")

	text, err = GetTextWithDefault(reader, "Email", "a@x.com", out)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", text)
}

func TestGetPassword(t *testing.T) {
	stubPassword(t, "secret")
	out := &bytes.Buffer{}

	pw, err := GetPassword(out)

	require.NoError(t, err)
	assert.Equal(t, "secret", pw)
	assert.Equal(t, "Password: \n", out.String())
}
