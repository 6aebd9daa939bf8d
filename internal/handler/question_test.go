package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stackover-dev/stackover/internal/domain"
	internal_errors "github.com/stackover-dev/stackover/internal/errors"
	"github.com/stackover-dev/stackover/internal/middleware"
	"github.com/stretchr/testify/assert"
)

func questionRouter(h *Handler) chi.Router {
	router := chi.NewRouter()
	router.Get("/v1/questions", h.ListQuestions)
	router.Post("/v1/questions", h.CreateQuestion)
	router.Get("/v1/questions/{questionId}", h.GetQuestion)
	router.Delete("/v1/questions/{questionId}", h.DeleteQuestion)
	router.Post("/v1/questions/{questionId}/answers", h.CreateAnswer)
	router.Delete("/v1/answers/{answerId}", h.DeleteAnswer)
	return router
}

func asUser(req *http.Request, user *domain.User) *http.Request {
	return req.WithContext(middleware.ContextWithUser(req.Context(), user))
}

func TestCreateQuestionHandler(t *testing.T) {
	h := &Handler{cfg: testCfg()}
	router := questionRouter(h)

	t.Run("successful request", func(t *testing.T) {
		h.questions = &MockQuestionService{
			MockCreateQuestion: func(author *domain.User, title, body string) (domain.Question, error) {
				assert.Equal(t, domain.UserId(7), author.Id)
				return domain.Question{Id: 3, Title: title, Body: body, BodyHTML: "<p>b</p>", AuthorId: author.Id}, nil
			},
		}

		body := []byte(`{"title": "How?", "body": "b"}`)
		req := asUser(createRequest(t, http.MethodPost, "/v1/questions", body), &domain.User{Id: 7})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"id":3`)
		assert.Contains(t, rr.Body.String(), `"body_html"`)
	})

	t.Run("missing title", func(t *testing.T) {
		h.questions = &MockQuestionService{}

		req := asUser(createRequest(t, http.MethodPost, "/v1/questions", []byte(`{"body": "b"}`)), &domain.User{Id: 7})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetQuestionHandler(t *testing.T) {
	h := &Handler{cfg: testCfg()}
	router := questionRouter(h)

	t.Run("found", func(t *testing.T) {
		h.questions = &MockQuestionService{
			MockGetQuestion: func(id domain.QuestionId) (domain.Question, error) {
				return domain.Question{
					Id: id, Title: "t", Body: "b",
					Answers: []domain.Answer{{Id: 1, QuestionId: id, Body: "a"}},
				}, nil
			},
		}

		req := createRequest(t, http.MethodGet, "/v1/questions/5", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"answers"`)
	})

	t.Run("not found", func(t *testing.T) {
		h.questions = &MockQuestionService{
			MockGetQuestion: func(id domain.QuestionId) (domain.Question, error) {
				return domain.Question{}, internal_errors.NotFound("Question not found")
			},
		}

		req := createRequest(t, http.MethodGet, "/v1/questions/99", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("non numeric id", func(t *testing.T) {
		h.questions = &MockQuestionService{}

		req := createRequest(t, http.MethodGet, "/v1/questions/abc", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListQuestionsHandler(t *testing.T) {
	h := &Handler{cfg: testCfg()}
	router := questionRouter(h)

	t.Run("page passed through", func(t *testing.T) {
		var gotPage int
		h.questions = &MockQuestionService{
			MockListQuestions: func(page int) ([]domain.Question, error) {
				gotPage = page
				return []domain.Question{{Id: 1, Title: "t"}}, nil
			},
		}

		req := createRequest(t, http.MethodGet, "/v1/questions?page=3", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 3, gotPage)
	})

	t.Run("empty list is json array", func(t *testing.T) {
		h.questions = &MockQuestionService{}

		req := createRequest(t, http.MethodGet, "/v1/questions", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "[]\n", rr.Body.String())
	})
}

func TestDeleteQuestionHandler(t *testing.T) {
	h := &Handler{cfg: testCfg()}
	router := questionRouter(h)

	t.Run("author deletes", func(t *testing.T) {
		h.questions = &MockQuestionService{}

		req := asUser(createRequest(t, http.MethodDelete, "/v1/questions/5", nil), &domain.User{Id: 7})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("non-author forbidden", func(t *testing.T) {
		h.questions = &MockQuestionService{
			MockDeleteQuestion: func(actor *domain.User, id domain.QuestionId) error {
				return internal_errors.Forbidden("You can only delete your own questions")
			},
		}

		req := asUser(createRequest(t, http.MethodDelete, "/v1/questions/5", nil), &domain.User{Id: 8})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestCreateAnswerHandler(t *testing.T) {
	h := &Handler{cfg: testCfg()}
	router := questionRouter(h)

	t.Run("successful request", func(t *testing.T) {
		h.questions = &MockQuestionService{
			MockCreateAnswer: func(author *domain.User, questionId domain.QuestionId, body string) (domain.Answer, error) {
				assert.Equal(t, domain.QuestionId(5), questionId)
				return domain.Answer{Id: 2, QuestionId: questionId, Body: body, AuthorId: author.Id}, nil
			},
		}

		req := asUser(createRequest(t, http.MethodPost, "/v1/questions/5/answers", []byte(`{"body": "try this"}`)), &domain.User{Id: 7})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("question missing", func(t *testing.T) {
		h.questions = &MockQuestionService{
			MockCreateAnswer: func(author *domain.User, questionId domain.QuestionId, body string) (domain.Answer, error) {
				return domain.Answer{}, internal_errors.NotFound("Question not found")
			},
		}

		req := asUser(createRequest(t, http.MethodPost, "/v1/questions/99/answers", []byte(`{"body": "x"}`)), &domain.User{Id: 7})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
