package main

import "os"

type FeatureFlags struct {
	LeaderboardStream bool `yaml:"leaderboard_stream"`
	SaveJournal       bool `yaml:"save_journal"`
}

func defaultFeatureFlags() FeatureFlags {
	return FeatureFlags{
		LeaderboardStream: true,
		SaveJournal:       true,
	}
}

func loadFeatureFlags(base FeatureFlags) FeatureFlags {
	return FeatureFlags{
		LeaderboardStream: envFlag("ENABLE_LEADERBOARD_STREAM", base.LeaderboardStream),
		SaveJournal:       envFlag("ENABLE_SAVE_JOURNAL", base.SaveJournal),
	}
}

func envFlag(name string, fallback bool) bool {
	val := os.Getenv(name)
	if val == "" {
		return fallback
	}
	v, err := parseBool(val)
	if err != nil {
		return fallback
	}
	return v
}
