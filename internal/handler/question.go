package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stackover-dev/stackover/internal/domain"
	"github.com/stackover-dev/stackover/internal/middleware"
	"github.com/stackover-dev/stackover/internal/utils"
)

type createQuestionRequest struct {
	Title string `validate:"required" json:"title"`
	Body  string `validate:"required" json:"body"`
}

type createAnswerRequest struct {
	Body string `validate:"required" json:"body"`
}

type answerResponse struct {
	Id         domain.AnswerId   `json:"id"`
	QuestionId domain.QuestionId `json:"question_id"`
	Body       string            `json:"body"`
	BodyHTML   string            `json:"body_html"`
	AuthorId   domain.UserId     `json:"author_id"`
	AuthorName string            `json:"author_name"`
	CreatedAt  time.Time         `json:"created_at"`
}

type questionResponse struct {
	Id         domain.QuestionId `json:"id"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	BodyHTML   string            `json:"body_html"`
	AuthorId   domain.UserId     `json:"author_id"`
	AuthorName string            `json:"author_name"`
	CreatedAt  time.Time         `json:"created_at"`
	Answers    []answerResponse  `json:"answers,omitempty"`
}

func toQuestionResponse(q domain.Question) questionResponse {
	resp := questionResponse{
		Id:         q.Id,
		Title:      q.Title,
		Body:       q.Body,
		BodyHTML:   q.BodyHTML,
		AuthorId:   q.AuthorId,
		AuthorName: q.AuthorName,
		CreatedAt:  q.CreatedAt,
	}
	for _, a := range q.Answers {
		resp.Answers = append(resp.Answers, toAnswerResponse(a))
	}
	return resp
}

func toAnswerResponse(a domain.Answer) answerResponse {
	return answerResponse{
		Id:         a.Id,
		QuestionId: a.QuestionId,
		Body:       a.Body,
		BodyHTML:   a.BodyHTML,
		AuthorId:   a.AuthorId,
		AuthorName: a.AuthorName,
		CreatedAt:  a.CreatedAt,
	}
}

func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var body createQuestionRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	author := middleware.GetUserFromContext(r)
	question, err := h.questions.CreateQuestion(author, body.Title, body.Body)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toQuestionResponse(question))
}

func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "questionId"), "question id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	question, err := h.questions.GetQuestion(id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuestionResponse(question))
}

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		parsed, err := parseIntParam(p, "page")
		if err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
		page = int(parsed)
	}

	questions, err := h.questions.ListQuestions(page)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := make([]questionResponse, 0, len(questions))
	for _, q := range questions {
		resp = append(resp, toQuestionResponse(q))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "questionId"), "question id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	actor := middleware.GetUserFromContext(r)
	if err := h.questions.DeleteQuestion(actor, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) CreateAnswer(w http.ResponseWriter, r *http.Request) {
	questionId, err := parseIntParam(chi.URLParam(r, "questionId"), "question id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body createAnswerRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	author := middleware.GetUserFromContext(r)
	answer, err := h.questions.CreateAnswer(author, questionId, body.Body)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAnswerResponse(answer))
}

func (h *Handler) DeleteAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "answerId"), "answer id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	actor := middleware.GetUserFromContext(r)
	if err := h.questions.DeleteAnswer(actor, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
