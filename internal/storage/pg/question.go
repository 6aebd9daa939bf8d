package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stackover-dev/stackover/internal/domain"
	internal_errors "github.com/stackover-dev/stackover/internal/errors"
)

// =========================================================================
// Public Methods (satisfy the service.QuestionStorage interface)
// =========================================================================

func (s *Storage) SaveQuestion(question domain.Question) (domain.QuestionId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.QuestionId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveQuestion(tx, question)
		return err
	})
	return id, err
}

// Question fetches a single question with its answers, oldest answer
// first.
func (s *Storage) Question(id domain.QuestionId) (domain.Question, error) {
	question, err := s.question(s.db, id)
	if err != nil {
		return domain.Question{}, err
	}
	answers, err := s.answers(s.db, id)
	if err != nil {
		return domain.Question{}, err
	}
	question.Answers = answers
	return question, nil
}

// Questions returns one page of questions, newest first, without
// answers. Page numbering starts at 1.
func (s *Storage) Questions(page int) ([]domain.Question, error) {
	perPage := s.cfg.Public.QuestionsPerPage
	offset := (page - 1) * perPage
	return s.questions(s.db, perPage, offset)
}

func (s *Storage) DeleteQuestion(id domain.QuestionId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// answers go with the question via ON DELETE CASCADE
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.deleteQuestion(tx, id)
	})
}

func (s *Storage) SaveAnswer(answer domain.Answer) (domain.AnswerId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.AnswerId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveAnswer(tx, answer)
		return err
	})
	return id, err
}

func (s *Storage) Answer(id domain.AnswerId) (domain.Answer, error) {
	return s.answer(s.db, id)
}

func (s *Storage) DeleteAnswer(id domain.AnswerId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.deleteAnswer(tx, id)
	})
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

func (s *Storage) saveQuestion(q Querier, question domain.Question) (domain.QuestionId, error) {
	var id domain.QuestionId
	err := q.QueryRow(`
        INSERT INTO questions(title, body, author_id)
        VALUES($1, $2, $3) RETURNING id`,
		question.Title, question.Body, question.AuthorId).Scan(&id)
	if err != nil {
		return -1, fmt.Errorf("failed to insert question: %w", err)
	}
	return id, nil
}

func (s *Storage) question(q Querier, id domain.QuestionId) (domain.Question, error) {
	var question domain.Question
	err := q.QueryRow(`
        SELECT q.id, q.title, q.body, q.author_id, u.name, q.created_at AT TIME ZONE 'utc'
        FROM questions q
        JOIN users u ON u.id = q.author_id
        WHERE q.id = $1`,
		id).Scan(&question.Id, &question.Title, &question.Body,
		&question.AuthorId, &question.AuthorName, &question.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Question{}, internal_errors.NotFound("Question not found")
		}
		return domain.Question{}, fmt.Errorf("failed to query question: %w", err)
	}
	return question, nil
}

func (s *Storage) questions(q Querier, limit, offset int) ([]domain.Question, error) {
	rows, err := q.Query(`
        SELECT q.id, q.title, q.body, q.author_id, u.name, q.created_at AT TIME ZONE 'utc'
        FROM questions q
        JOIN users u ON u.id = q.author_id
        ORDER BY q.created_at DESC, q.id DESC
        LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var question domain.Question
		if err := rows.Scan(&question.Id, &question.Title, &question.Body,
			&question.AuthorId, &question.AuthorName, &question.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, question)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	return questions, nil
}

func (s *Storage) deleteQuestion(q Querier, id domain.QuestionId) error {
	result, err := q.Exec("DELETE FROM questions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	rowsDeleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for question deletion: %w", err)
	}
	if rowsDeleted == 0 {
		return internal_errors.NotFound("Question not found")
	}
	return nil
}

func (s *Storage) saveAnswer(q Querier, answer domain.Answer) (domain.AnswerId, error) {
	var id domain.AnswerId
	err := q.QueryRow(`
        INSERT INTO answers(question_id, body, author_id)
        VALUES($1, $2, $3) RETURNING id`,
		answer.QuestionId, answer.Body, answer.AuthorId).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return -1, internal_errors.NotFound("Question not found")
		}
		return -1, fmt.Errorf("failed to insert answer: %w", err)
	}
	return id, nil
}

func (s *Storage) answer(q Querier, id domain.AnswerId) (domain.Answer, error) {
	var answer domain.Answer
	err := q.QueryRow(`
        SELECT a.id, a.question_id, a.body, a.author_id, u.name, a.created_at AT TIME ZONE 'utc'
        FROM answers a
        JOIN users u ON u.id = a.author_id
        WHERE a.id = $1`,
		id).Scan(&answer.Id, &answer.QuestionId, &answer.Body,
		&answer.AuthorId, &answer.AuthorName, &answer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Answer{}, internal_errors.NotFound("Answer not found")
		}
		return domain.Answer{}, fmt.Errorf("failed to query answer: %w", err)
	}
	return answer, nil
}

func (s *Storage) answers(q Querier, questionId domain.QuestionId) ([]domain.Answer, error) {
	rows, err := q.Query(`
        SELECT a.id, a.question_id, a.body, a.author_id, u.name, a.created_at AT TIME ZONE 'utc'
        FROM answers a
        JOIN users u ON u.id = a.author_id
        WHERE a.question_id = $1
        ORDER BY a.created_at ASC, a.id ASC`,
		questionId)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	var answers []domain.Answer
	for rows.Next() {
		var answer domain.Answer
		if err := rows.Scan(&answer.Id, &answer.QuestionId, &answer.Body,
			&answer.AuthorId, &answer.AuthorName, &answer.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, answer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answers: %w", err)
	}

	return answers, nil
}

func (s *Storage) deleteAnswer(q Querier, id domain.AnswerId) error {
	result, err := q.Exec("DELETE FROM answers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete answer: %w", err)
	}
	rowsDeleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for answer deletion: %w", err)
	}
	if rowsDeleted == 0 {
		return internal_errors.NotFound("Answer not found")
	}
	return nil
}
