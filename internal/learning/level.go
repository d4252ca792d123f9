// Package learning maps detected library changes to study material. A
// change that needs attention (breaking, major, or unrecognized format) is
// paired with catalog concepts that share tags with the library, filtered
// to the user's skill level.
package learning

import "fmt"

// Level is a named skill tier. Levels form a total order: a user at a
// given level is shown concepts at or below it.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

var levelRanks = map[Level]int{
	LevelBeginner:     0,
	LevelIntermediate: 1,
	LevelAdvanced:     2,
}

// ParseLevel validates and normalizes a skill level string.
func ParseLevel(s string) (Level, error) {
	level := Level(s)
	if _, ok := levelRanks[level]; !ok {
		return "", fmt.Errorf("unknown skill level %q (expected beginner, intermediate, or advanced)", s)
	}
	return level, nil
}

// AtMost reports whether l is at or below the given ceiling.
func (l Level) AtMost(ceiling Level) bool {
	return levelRanks[l] <= levelRanks[ceiling]
}

func (l Level) String() string { return string(l) }
