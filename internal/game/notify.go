package game

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

type NoticeKind string

const (
	NoticeAchievementUnlocked NoticeKind = "achievement_unlocked"
	NoticeUpgradePurchased    NoticeKind = "upgrade_purchased"
	NoticeInsufficientFunds   NoticeKind = "insufficient_funds"
	NoticeInvalidNickname     NoticeKind = "invalid_nickname"
)

// Notice is a one-shot, non-blocking message for the player.
type Notice struct {
	Level   NoticeLevel
	Kind    NoticeKind
	Subject string
	Message string
}

type Notifier interface {
	Notify(Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }
