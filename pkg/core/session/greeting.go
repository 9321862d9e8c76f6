package session

import (
	"fmt"
	"strings"
	"time"
)

// Greeting builds the opening line for the given local time.
func Greeting(now time.Time, assistant, user string) string {
	var part string
	switch h := now.Hour(); {
	case h >= 5 && h < 12:
		part = "Good morning"
	case h >= 12 && h < 18:
		part = "Good afternoon"
	case h >= 18 && h < 22:
		part = "Good evening"
	default:
		part = "Good night"
	}
	if user = strings.TrimSpace(user); user != "" {
		part += " " + user
	}
	return fmt.Sprintf("%s, I am %s, your personal assistant. How can I assist you today, %s, %s?",
		part, assistant, now.Weekday(), now.Format("January 2, 2006"))
}
