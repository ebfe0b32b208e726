package game

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const playerIDSuffixLen = 9

// NewPlayerID builds "player_<unix millis>_<random suffix>".
func NewPlayerID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:playerIDSuffixLen]
	return "player_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}
