package main

import (
	"regexp"
	"strings"
	"unicode"
)

// ============================================================================
// Meow Classifier
// ============================================================================

// meowPattern matches the loose phonetic meow family: "meow", "mrow",
// "mrrow", "meeoow" and friends.
var meowPattern = regexp.MustCompile(`(?i)m+[erow]+[wo]*`)

// emoticonChars are the letters and symbols commonly used to build text
// emoticons (T_T, ^w^, :3, uwu, ...). 'm' is deliberately absent so a
// leftover 'm' outside a meow token disqualifies the message.
const emoticonChars = "TwWuUvVoO0xXdDpPbBcCnNqQsSzZaAeEiIyYrRhHkKlLfFgGjJ" +
	":;=-_^><()[]{}|/\\*~`'\".,!?@#$%&+"

// isValidMeow reports whether a message consists purely of meow variants,
// emojis and emoticon characters. It must contain at least one meow token.
func isValidMeow(content string) bool {
	cleaned := strings.TrimSpace(content)
	if cleaned == "" {
		return false
	}

	if !meowPattern.MatchString(cleaned) {
		return false
	}

	// Meow tokens are consumed first so their letters never reach the
	// emoticon allow-list below.
	remainder := meowPattern.ReplaceAllString(cleaned, "")

	for _, r := range remainder {
		if unicode.IsSpace(r) {
			continue
		}
		if r <= unicode.MaxASCII && strings.ContainsRune(emoticonChars, r) {
			continue
		}
		if isEmojiRune(r) {
			continue
		}
		return false
	}
	return true
}

// emojiRanges approximates the Unicode Emoji properties (Emoji,
// Emoji_Component, Emoji_Presentation, Emoji_Modifier, Emoji_Modifier_Base).
// Go's regexp has no \p{Emoji}, so the ranges are spelled out.
var emojiRanges = [][2]rune{
	{0x0023, 0x0023}, // #
	{0x002A, 0x002A}, // *
	{0x0030, 0x0039}, // 0-9 (keycap bases)
	{0x00A9, 0x00A9}, // ©
	{0x00AE, 0x00AE}, // ®
	{0x200D, 0x200D}, // zero-width joiner
	{0x203C, 0x203C},
	{0x2049, 0x2049},
	{0x20E3, 0x20E3}, // combining keycap
	{0x2122, 0x2122}, // ™
	{0x2139, 0x2139},
	{0x2194, 0x21AA}, // arrows
	{0x231A, 0x231B},
	{0x2328, 0x2328},
	{0x23CF, 0x23CF},
	{0x23E9, 0x23FA},
	{0x24C2, 0x24C2},
	{0x25AA, 0x25FE}, // geometric shapes
	{0x2600, 0x27BF}, // misc symbols + dingbats
	{0x2934, 0x2935},
	{0x2B00, 0x2BFF},
	{0x3030, 0x3030},
	{0x303D, 0x303D},
	{0x3297, 0x3297},
	{0x3299, 0x3299},
	{0xFE00, 0xFE0F},   // variation selectors
	{0x1F000, 0x1FAFF}, // the emoji planes, flags and modifiers included
}

func isEmojiRune(r rune) bool {
	for _, rng := range emojiRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}
