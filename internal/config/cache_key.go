package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuestionSetPayloadKey returns the cache key for a question set's full payload
func (r *CacheKeyStruct) QuestionSetPayloadKey(setID string) string {
	return fmt.Sprintf("question_set:%s:payload", setID)
}

// QuestionSetListKey returns the cache key for the question set catalog
func (r *CacheKeyStruct) QuestionSetListKey() string {
	return "question_set:catalog"
}

// LeaderboardKey returns the cache key for the public leaderboard snapshot
func (r *CacheKeyStruct) LeaderboardKey() string {
	return "leaderboard:top"
}

var CacheKey = NewCacheKeyStruct()
