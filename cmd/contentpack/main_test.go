package main

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "two lines", truncate("two\nlines", 10))

	got := truncate("Matemáticas básicas", 10)
	assert.Equal(t, "Matemát...", got)
	assert.True(t, utf8.ValidString(got))

	assert.Equal(t, "数学入门", truncate("数学入门", 4))
	assert.Equal(t, "数...", truncate("数学入门课程", 4))
}
