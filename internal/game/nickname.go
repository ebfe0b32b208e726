package game

import (
	"strings"
	"unicode/utf8"
)

const MaxNicknameLength = 20

// ValidateNickname returns the trimmed nickname, or ErrInvalidNickname when
// it is empty or longer than MaxNicknameLength characters.
func ValidateNickname(nickname string) (string, error) {
	trimmed := strings.TrimSpace(nickname)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > MaxNicknameLength {
		return "", ErrInvalidNickname
	}
	return trimmed, nil
}

// RejectNickname reports a failed rename to the player.
func (e *Engine) RejectNickname(nickname string) {
	e.dispatch([]Notice{{
		Level:   NoticeError,
		Kind:    NoticeInvalidNickname,
		Subject: nickname,
		Message: "Никнейм должен быть от 1 до 20 символов",
	}})
}
