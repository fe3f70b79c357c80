package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidMeowAccepts(t *testing.T) {
	assert := assert.New(t)

	valid := []string{
		"meow",
		"Meow",
		"MEOW",
		"MROW",
		"mrow",
		"meeeooow",
		"mrrrow~",
		"meow meow meow",
		"meow :3",
		"meow 😺",
		"meow 😹😹😹",
		"mrow ^w^",
		"meow!",
		"meow!!! :D",
		"  meow  ",
		"meow uwu",
		"meow pls",
		"meow <3",
		"meow 100",
	}

	for _, msg := range valid {
		assert.True(isValidMeow(msg), "expected valid: %q", msg)
	}
}

func TestIsValidMeowRejects(t *testing.T) {
	assert := assert.New(t)

	invalid := []string{
		"",
		"   ",
		"hello",
		":)",
		"😺",
		"mmm",
		"m",
		"meow mmm",
		"meow 猫",
		"nyaa",
		"woof",
	}

	for _, msg := range invalid {
		assert.False(isValidMeow(msg), "expected invalid: %q", msg)
	}
}

func TestIsValidMeowRequiresMeowToken(t *testing.T) {
	assert := assert.New(t)

	// Emoticon noise alone never qualifies, even when every rune is allowed.
	assert.False(isValidMeow("^w^ :3 uwu"))
	assert.True(isValidMeow("meow ^w^ :3 uwu"))
}

func TestIsEmojiRune(t *testing.T) {
	assert := assert.New(t)

	assert.True(isEmojiRune('😺'))
	assert.True(isEmojiRune('✨'))
	assert.True(isEmojiRune('3'))
	assert.True(isEmojiRune(0xFE0F))
	assert.False(isEmojiRune('猫'))
	assert.False(isEmojiRune('m'))
}
