package domain

import "time"

type QuestionId = int64
type AnswerId = int64

type Question struct {
	Id         QuestionId
	Title      string
	Body       string // raw markdown as submitted
	BodyHTML   string // rendered and sanitized, never persisted
	AuthorId   UserId
	AuthorName string
	CreatedAt  time.Time
	Answers    []Answer
}

type Answer struct {
	Id         AnswerId
	QuestionId QuestionId
	Body       string
	BodyHTML   string
	AuthorId   UserId
	AuthorName string
	CreatedAt  time.Time
}
