package handler

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stackover-dev/stackover/internal/domain"
	"github.com/stretchr/testify/require"
)

func createRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// --- Shared mocks ---

type MockAuthService struct {
	MockRegister             func(name, email, password string) (domain.User, error)
	MockLogin                func(creds domain.Credentials) (string, error)
	MockLogout               func(tokenString string) error
	MockRequestPasswordReset func(email string) error
	MockConfirmPasswordReset func(email, code, newPassword string) error
	MockUpdateProfile        func(actor *domain.User, id domain.UserId, name, email string) (domain.User, error)
	MockUserById             func(id domain.UserId) (domain.User, error)
}

func (m *MockAuthService) Register(name, email, password string) (domain.User, error) {
	if m.MockRegister != nil {
		return m.MockRegister(name, email, password)
	}
	return domain.User{Id: 1, Name: name, Email: email}, nil
}

func (m *MockAuthService) Login(creds domain.Credentials) (string, error) {
	if m.MockLogin != nil {
		return m.MockLogin(creds)
	}
	return "", nil
}

func (m *MockAuthService) Logout(tokenString string) error {
	if m.MockLogout != nil {
		return m.MockLogout(tokenString)
	}
	return nil
}

func (m *MockAuthService) RequestPasswordReset(email string) error {
	if m.MockRequestPasswordReset != nil {
		return m.MockRequestPasswordReset(email)
	}
	return nil
}

func (m *MockAuthService) ConfirmPasswordReset(email, code, newPassword string) error {
	if m.MockConfirmPasswordReset != nil {
		return m.MockConfirmPasswordReset(email, code, newPassword)
	}
	return nil
}

func (m *MockAuthService) UpdateProfile(actor *domain.User, id domain.UserId, name, email string) (domain.User, error) {
	if m.MockUpdateProfile != nil {
		return m.MockUpdateProfile(actor, id, name, email)
	}
	return domain.User{Id: id, Name: name, Email: email}, nil
}

func (m *MockAuthService) UserById(id domain.UserId) (domain.User, error) {
	if m.MockUserById != nil {
		return m.MockUserById(id)
	}
	return domain.User{Id: id}, nil
}

type MockQuestionService struct {
	MockCreateQuestion func(author *domain.User, title, body string) (domain.Question, error)
	MockGetQuestion    func(id domain.QuestionId) (domain.Question, error)
	MockListQuestions  func(page int) ([]domain.Question, error)
	MockDeleteQuestion func(actor *domain.User, id domain.QuestionId) error
	MockCreateAnswer   func(author *domain.User, questionId domain.QuestionId, body string) (domain.Answer, error)
	MockDeleteAnswer   func(actor *domain.User, id domain.AnswerId) error
}

func (m *MockQuestionService) CreateQuestion(author *domain.User, title, body string) (domain.Question, error) {
	if m.MockCreateQuestion != nil {
		return m.MockCreateQuestion(author, title, body)
	}
	return domain.Question{Id: 1, Title: title, Body: body}, nil
}

func (m *MockQuestionService) GetQuestion(id domain.QuestionId) (domain.Question, error) {
	if m.MockGetQuestion != nil {
		return m.MockGetQuestion(id)
	}
	return domain.Question{Id: id}, nil
}

func (m *MockQuestionService) ListQuestions(page int) ([]domain.Question, error) {
	if m.MockListQuestions != nil {
		return m.MockListQuestions(page)
	}
	return nil, nil
}

func (m *MockQuestionService) DeleteQuestion(actor *domain.User, id domain.QuestionId) error {
	if m.MockDeleteQuestion != nil {
		return m.MockDeleteQuestion(actor, id)
	}
	return nil
}

func (m *MockQuestionService) CreateAnswer(author *domain.User, questionId domain.QuestionId, body string) (domain.Answer, error) {
	if m.MockCreateAnswer != nil {
		return m.MockCreateAnswer(author, questionId, body)
	}
	return domain.Answer{Id: 1, QuestionId: questionId, Body: body}, nil
}

func (m *MockQuestionService) DeleteAnswer(actor *domain.User, id domain.AnswerId) error {
	if m.MockDeleteAnswer != nil {
		return m.MockDeleteAnswer(actor, id)
	}
	return nil
}
