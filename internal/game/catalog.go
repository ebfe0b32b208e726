package game

import "math"

const (
	UpgradeCursor     = "cursor"
	UpgradeMultiplier = "multiplier"
	UpgradeFactory    = "factory"
	UpgradeMegaboost  = "megaboost"
)

const (
	AchievementFirstClick   = "first_click"
	AchievementHundred      = "hundred"
	AchievementThousand     = "thousand"
	AchievementFirstUpgrade = "first_upgrade"
)

// CostGrowth is applied to an upgrade's cost after every purchase.
const CostGrowth = 1.15

type Target int

const (
	TargetAutoClickRate Target = iota + 1
	TargetClickPower
)

type Upgrade struct {
	ID          string
	Name        string
	Description string
	Icon        string
	BaseCost    int64
	Cost        int64
	Effect      float64
	Target      Target
	Owned       int
}

type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Target      float64
	Progress    float64
	Unlocked    bool
}

// DefaultUpgrades returns a fresh copy of the upgrade catalog, in shop order.
func DefaultUpgrades() []Upgrade {
	return []Upgrade{
		{
			ID:          UpgradeCursor,
			Name:        "Авто-кликер",
			Description: "+0.1 кликов/сек",
			Icon:        "MousePointer2",
			BaseCost:    15,
			Cost:        15,
			Effect:      0.1,
			Target:      TargetAutoClickRate,
		},
		{
			ID:          UpgradeMultiplier,
			Name:        "Множитель силы",
			Description: "+1 к силе клика",
			Icon:        "Zap",
			BaseCost:    100,
			Cost:        100,
			Effect:      1,
			Target:      TargetClickPower,
		},
		{
			ID:          UpgradeFactory,
			Name:        "Фабрика",
			Description: "+5 кликов/сек",
			Icon:        "Factory",
			BaseCost:    500,
			Cost:        500,
			Effect:      5,
			Target:      TargetAutoClickRate,
		},
		{
			ID:          UpgradeMegaboost,
			Name:        "Мега-буст",
			Description: "+10 к силе клика",
			Icon:        "Rocket",
			BaseCost:    2000,
			Cost:        2000,
			Effect:      10,
			Target:      TargetClickPower,
		},
	}
}

func DefaultAchievements() []Achievement {
	return []Achievement{
		{
			ID:          AchievementFirstClick,
			Name:        "Первый клик",
			Description: "Сделай свой первый клик",
			Icon:        "MousePointer",
			Target:      1,
		},
		{
			ID:          AchievementHundred,
			Name:        "Сотня",
			Description: "Набери 100 кликов",
			Icon:        "Target",
			Target:      100,
		},
		{
			ID:          AchievementThousand,
			Name:        "Тысяча",
			Description: "Набери 1000 кликов",
			Icon:        "Trophy",
			Target:      1000,
		},
		{
			ID:          AchievementFirstUpgrade,
			Name:        "Первая покупка",
			Description: "Купи первое улучшение",
			Icon:        "ShoppingCart",
			Target:      1,
		},
	}
}

// NextCost is the price of an upgrade after one more purchase.
func NextCost(cost int64) int64 {
	return int64(math.Floor(float64(cost) * CostGrowth))
}

// CostAfter replays the escalation owned times from the base cost.
func CostAfter(base int64, owned int) int64 {
	cost := base
	for i := 0; i < owned; i++ {
		cost = NextCost(cost)
	}
	return cost
}
