package service

import (
	"strings"

	"github.com/stackover-dev/stackover/internal/domain"
	"github.com/stackover-dev/stackover/internal/errors"
	"github.com/stackover-dev/stackover/internal/markdown"
)

type QuestionService interface {
	CreateQuestion(author *domain.User, title, body string) (domain.Question, error)
	GetQuestion(id domain.QuestionId) (domain.Question, error)
	ListQuestions(page int) ([]domain.Question, error)
	DeleteQuestion(actor *domain.User, id domain.QuestionId) error
	CreateAnswer(author *domain.User, questionId domain.QuestionId, body string) (domain.Answer, error)
	DeleteAnswer(actor *domain.User, id domain.AnswerId) error
}

type QuestionStorage interface {
	SaveQuestion(question domain.Question) (domain.QuestionId, error)
	Question(id domain.QuestionId) (domain.Question, error)
	Questions(page int) ([]domain.Question, error)
	DeleteQuestion(id domain.QuestionId) error
	SaveAnswer(answer domain.Answer) (domain.AnswerId, error)
	Answer(id domain.AnswerId) (domain.Answer, error)
	DeleteAnswer(id domain.AnswerId) error
}

type Questions struct {
	storage QuestionStorage
	text    *markdown.TextProcessor
}

func NewQuestions(storage QuestionStorage, text *markdown.TextProcessor) *Questions {
	return &Questions{storage: storage, text: text}
}

func (s *Questions) CreateQuestion(author *domain.User, title, body string) (domain.Question, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" {
		return domain.Question{}, errors.BadRequest("Title cannot be empty")
	}
	if body == "" {
		return domain.Question{}, errors.BadRequest("Body cannot be empty")
	}

	question := domain.Question{Title: title, Body: body, AuthorId: author.Id}
	id, err := s.storage.SaveQuestion(question)
	if err != nil {
		return domain.Question{}, err
	}
	return s.GetQuestion(id)
}

// GetQuestion returns the question with its answers, bodies rendered to
// sanitized html. Rendering happens on read so raw markdown stays the
// single persisted form.
func (s *Questions) GetQuestion(id domain.QuestionId) (domain.Question, error) {
	question, err := s.storage.Question(id)
	if err != nil {
		return domain.Question{}, err
	}
	question.BodyHTML = s.text.Process(question.Body)
	for i := range question.Answers {
		question.Answers[i].BodyHTML = s.text.Process(question.Answers[i].Body)
	}
	return question, nil
}

func (s *Questions) ListQuestions(page int) ([]domain.Question, error) {
	if page < 1 {
		page = 1
	}
	questions, err := s.storage.Questions(page)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].BodyHTML = s.text.Process(questions[i].Body)
	}
	return questions, nil
}

// DeleteQuestion removes a question and, via cascade, its answers.
// Only the author may delete.
func (s *Questions) DeleteQuestion(actor *domain.User, id domain.QuestionId) error {
	question, err := s.storage.Question(id)
	if err != nil {
		return err
	}
	if question.AuthorId != actor.Id {
		return errors.Forbidden("You can only delete your own questions")
	}
	return s.storage.DeleteQuestion(id)
}

func (s *Questions) CreateAnswer(author *domain.User, questionId domain.QuestionId, body string) (domain.Answer, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return domain.Answer{}, errors.BadRequest("Body cannot be empty")
	}

	answer := domain.Answer{QuestionId: questionId, Body: body, AuthorId: author.Id}
	id, err := s.storage.SaveAnswer(answer)
	if err != nil {
		return domain.Answer{}, err
	}

	saved, err := s.storage.Answer(id)
	if err != nil {
		return domain.Answer{}, err
	}
	saved.BodyHTML = s.text.Process(saved.Body)
	return saved, nil
}

func (s *Questions) DeleteAnswer(actor *domain.User, id domain.AnswerId) error {
	answer, err := s.storage.Answer(id)
	if err != nil {
		return err
	}
	if answer.AuthorId != actor.Id {
		return errors.Forbidden("You can only delete your own answers")
	}
	return s.storage.DeleteAnswer(id)
}
