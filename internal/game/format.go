package game

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatNumber floors v and groups its digits the way tag's locale does.
func FormatNumber(tag language.Tag, v float64) string {
	return message.NewPrinter(tag).Sprintf("%d", int64(math.Floor(v)))
}
