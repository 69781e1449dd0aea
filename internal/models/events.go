// Package models defines the data structures for hypothesis events.
package models

// HypothesisUtterance is emitted each time a decoder utterance completes
// with recognized speech.
type HypothesisUtterance struct {
	EventType      string `json:"eventType"`
	DecodeID       string `json:"decodeId"`
	Mode           string `json:"mode"`
	UtteranceIndex int    `json:"utteranceIndex"`
	Text           string `json:"text"`
	Score          int64  `json:"score"`
	Timestamp      int64  `json:"timestamp"`
}

// HypothesisFinal is emitted once per file decode with the accumulated
// result across all utterances in the file.
type HypothesisFinal struct {
	EventType  string `json:"eventType"`
	DecodeID   string `json:"decodeId"`
	Text       string `json:"text"`
	Score      int64  `json:"score"`
	Utterances int    `json:"utterances"`
	Timestamp  int64  `json:"timestamp"`
}
