// Package lexicon holds the static keyword tables used by every classifier.
//
// Tables are ordered slices rather than maps: several classifiers resolve
// ties by declaration order, so the order below is part of their behavior.
package lexicon

import "strings"

// Category is a named keyword list.
type Category struct {
	Name     string
	Keywords []string
}

// Emotions is the emotion lexicon in tie-break order.
var Emotions = []Category{
	{"happy", []string{"happy", "joy", "excited", "great", "amazing", "wonderful", "fantastic", "love", "perfect", "awesome"}},
	{"sad", []string{"sad", "down", "depressed", "upset", "hurt", "crying", "tears", "lonely", "empty", "broken"}},
	{"angry", []string{"angry", "mad", "furious", "annoyed", "frustrated", "irritated", "pissed", "rage", "hate"}},
	{"anxious", []string{"anxious", "worried", "nervous", "scared", "afraid", "panic", "stress", "overwhelmed", "tense"}},
	{"romantic", []string{"love", "romantic", "kiss", "cuddle", "intimate", "passion", "desire", "attraction", "affection"}},
	{"playful", []string{"fun", "playful", "silly", "joke", "laugh", "tease", "game", "humor", "funny"}},
	{"tired", []string{"tired", "exhausted", "sleepy", "drained", "weary", "fatigue", "worn out"}},
	{"confused", []string{"confused", "lost", "unclear", "puzzled", "bewildered", "uncertain", "mixed up"}},
	{"grateful", []string{"grateful", "thankful", "appreciate", "blessed", "lucky", "fortunate"}},
	{"lonely", []string{"lonely", "alone", "isolated", "abandoned", "disconnected", "empty"}},
}

// IntensityModifier adjusts emotion intensity when any of its keywords is
// present in a message.
type IntensityModifier struct {
	Delta    int
	Keywords []string
}

// IntensityModifiers are applied in order: high, medium, low.
var IntensityModifiers = []IntensityModifier{
	{Delta: 3, Keywords: []string{"very", "extremely", "incredibly", "absolutely", "completely", "totally", "really", "so"}},
	{Delta: 1, Keywords: []string{"quite", "pretty", "fairly", "somewhat", "rather"}},
	{Delta: -1, Keywords: []string{"a bit", "slightly", "kind of", "sort of", "a little"}},
}

// Stages is the relationship-stage lexicon in tie-break order. The order
// also defines progression: a later stage is further along.
var Stages = []Category{
	{"initiation", []string{"hi", "hello", "nice to meet", "first time", "new", "introduce"}},
	{"bonding", []string{"tell me about", "what do you like", "share", "interests", "hobbies", "family"}},
	{"conflict", []string{"disagree", "upset", "wrong", "argument", "misunderstand", "hurt"}},
	{"intimacy", []string{"love", "care", "miss", "close", "special", "feelings", "heart"}},
	{"deep_connection", []string{"understand", "soul", "connection", "meant to be", "forever", "complete"}},
	{"long_term", []string{"always", "forever", "future", "together", "commitment", "relationship"}},
}

// StageEmotionalWords are counted per message to boost intimate stages.
var StageEmotionalWords = []string{"love", "feel", "heart", "soul", "care", "miss"}

// StageIntimateWords raise the intimacy level of a stage result.
var StageIntimateWords = []string{"love", "soul", "forever", "always", "heart", "deep", "connection"}

// CountContained returns how many distinct keywords occur in text.
func CountContained(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}

// Contained returns the keywords that occur in text, in keyword order.
func Contained(text string, keywords []string) []string {
	var out []string
	for _, k := range keywords {
		if strings.Contains(text, k) {
			out = append(out, k)
		}
	}
	return out
}

// ContainsAny reports whether text contains at least one keyword.
func ContainsAny(text string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// CountOccurrences counts non-overlapping occurrences of keyword in text.
func CountOccurrences(text, keyword string) int {
	if keyword == "" {
		return 0
	}
	return strings.Count(text, keyword)
}
