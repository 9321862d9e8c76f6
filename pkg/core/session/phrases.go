package session

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/vango-go/vai-assistant/pkg/core/music"
)

// Phrases is the vocabulary the engine listens for and the messages it
// speaks. All matching is done on lowercased text.
type Phrases struct {
	// Exit ends the session from NORMAL.
	Exit []string `yaml:"exit"`
	// Cancel leaves MUSIC_SELECTION.
	Cancel []string `yaml:"cancel"`
	// Triggers start a music search. Order matters: the first trigger
	// contained in the utterance classifies it.
	Triggers []string `yaml:"triggers"`
	// Fillers are trimmed from either end of a search query.
	Fillers []string `yaml:"fillers"`

	Selection Selection `yaml:"selection"`
	Messages  Messages  `yaml:"messages"`
}

// Selection lists the words used to pick an entry from a result list.
type Selection struct {
	Ordinals  map[string]int `yaml:"ordinals"`
	Cardinals map[string]int `yaml:"cardinals"`
	Selectors []string       `yaml:"selectors"`
	Guarded   []string       `yaml:"guarded"`
}

// Resolver builds the ordinal resolver for these words.
func (s Selection) Resolver() *music.Ordinals {
	return music.NewOrdinals(s.Ordinals, s.Cardinals, s.Selectors, s.Guarded)
}

// Messages are the spoken responses. Placeholders in braces are filled
// per message: {query}, {title}, {count}.
type Messages struct {
	Farewell      string `yaml:"farewell"`
	AskTitle      string `yaml:"ask_title"`
	Searching     string `yaml:"searching"`
	SearchFailed  string `yaml:"search_failed"`
	NotFound      string `yaml:"not_found"`
	Results       string `yaml:"results"`
	SelectPrompt  string `yaml:"select_prompt"`
	Cancelled     string `yaml:"cancelled"`
	Announce      string `yaml:"announce"`
	Finished      string `yaml:"finished"`
	FetchFailed   string `yaml:"fetch_failed"`
	Remaining     string `yaml:"remaining"`
	Exhausted     string `yaml:"exhausted"`
	NotRecognized string `yaml:"not_recognized"`
	ChatFailed    string `yaml:"chat_failed"`
	TryAgain      string `yaml:"try_again"`
}

// DefaultPhrases returns the English and Indonesian vocabulary.
func DefaultPhrases() Phrases {
	return Phrases{
		Exit:   []string{"exit", "goodbye", "good bye", "keluar", "sampai jumpa"},
		Cancel: []string{"cancel", "never mind", "nevermind", "batal", "tidak jadi", "gak jadi"},
		Triggers: []string{
			"cari lagu", "putar lagu", "putarkan", "play song", "play music",
			"play", "putar",
		},
		Fillers: []string{"please", "tolong", "the", "a", "song", "lagu", "music", "musik", "by"},
		Selection: Selection{
			Ordinals:  maps.Clone(music.DefaultOrdinalWords),
			Cardinals: maps.Clone(music.DefaultCardinalWords),
			Selectors: slices.Clone(music.DefaultSelectorWords),
			Guarded:   slices.Clone(music.DefaultGuardedWords),
		},
		Messages: Messages{
			Farewell:      "Goodbye, have a nice day!",
			AskTitle:      "Which song would you like me to play?",
			Searching:     "Just a moment, I'm looking for {query}.",
			SearchFailed:  "Sorry, I couldn't search for songs right now.",
			NotFound:      "Sorry, I couldn't find any songs for {query}.",
			Results:       "I found these songs:",
			SelectPrompt:  "Say the number of the song you want, or say cancel.",
			Cancelled:     "Okay, music selection cancelled.",
			Announce:      "I'm going to play a song titled {title}.",
			Finished:      "Finished playing {title}.",
			FetchFailed:   "Sorry, I couldn't play {title}.",
			Remaining:     "You can pick another one:",
			Exhausted:     "Sorry, none of those songs could be played.",
			NotRecognized: "Sorry, I didn't catch that. Say a number from 1 to {count}, or say cancel.",
			ChatFailed:    "Sorry, I don't understand. Please try again.",
			TryAgain:      "Something went wrong, please try again.",
		},
	}
}

// Validate reports missing phrases or messages.
func (p Phrases) Validate() error {
	if len(nonEmpty(p.Exit)) == 0 {
		return fmt.Errorf("phrases: exit must not be empty")
	}
	if len(nonEmpty(p.Cancel)) == 0 {
		return fmt.Errorf("phrases: cancel must not be empty")
	}
	if len(nonEmpty(p.Triggers)) == 0 {
		return fmt.Errorf("phrases: triggers must not be empty")
	}
	if len(p.Selection.Ordinals)+len(p.Selection.Cardinals) == 0 {
		return fmt.Errorf("phrases: selection needs ordinal or cardinal words")
	}
	m := p.Messages
	for name, v := range map[string]string{
		"farewell": m.Farewell, "ask_title": m.AskTitle, "searching": m.Searching,
		"search_failed": m.SearchFailed, "not_found": m.NotFound, "results": m.Results,
		"select_prompt": m.SelectPrompt, "cancelled": m.Cancelled, "announce": m.Announce,
		"finished": m.Finished, "fetch_failed": m.FetchFailed, "remaining": m.Remaining,
		"exhausted": m.Exhausted, "not_recognized": m.NotRecognized,
		"chat_failed": m.ChatFailed, "try_again": m.TryAgain,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("phrases: message %s must not be empty", name)
		}
	}
	return nil
}

// fill replaces {key} placeholders. kv alternates keys and values.
func fill(tmpl string, kv ...string) string {
	if len(kv) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+kv[i]+"}", kv[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
