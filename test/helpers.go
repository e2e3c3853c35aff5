package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/qaboard/internal/domain"
	"github.com/yourorg/qaboard/internal/handler"
	"github.com/yourorg/qaboard/internal/infrastructure/logger"
	"github.com/yourorg/qaboard/internal/security"
	"github.com/yourorg/qaboard/internal/security/auth"
	"github.com/yourorg/qaboard/internal/security/middleware"
	"github.com/yourorg/qaboard/internal/service"
)

// TestServerHelper runs the full HTTP stack against in-memory
// repositories, with no Postgres or Redis required
type TestServerHelper struct {
	Server *httptest.Server
	Logger *slog.Logger
}

func NewTestServer(t *testing.T) *TestServerHelper {
	log := logger.NewLogger("error")

	users := &memUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}, byUsername: map[string]*domain.User{}}
	answers := &memAnswerRepo{answers: map[string]*domain.Answer{}}
	questions := &memQuestionRepo{questions: map[string]*domain.Question{}, answers: answers}
	votes := &memVoteRepo{answers: answers, votes: map[string]domain.VoteDirection{}}

	tokenManager := auth.NewTokenManager("integration-test-secret", "qaboard-test", time.Hour)
	authzService := security.NewAuthorizationService(log)

	authService := service.NewAuthService(users, tokenManager, log)
	questionService := service.NewQuestionService(questions, answers, nil, nil, 20, log)
	voteService := service.NewVoteService(answers, votes, questionService, nil, log)
	acceptService := service.NewAcceptService(questions, answers, authzService, questionService, nil, log)

	authHandler := handler.NewAuthHandler(authService, log)
	questionHandler := handler.NewQuestionHandler(questionService, log)
	answerHandler := handler.NewAnswerHandler(questionService, log)
	voteHandler := handler.NewVoteHandler(voteService, log)
	acceptHandler := handler.NewAcceptHandler(acceptService, log)
	healthHandler := handler.NewHealthHandler(nil, nil, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/questions", questionHandler.Create)
	mux.HandleFunc("GET /api/questions", questionHandler.List)
	mux.HandleFunc("GET /api/questions/{id}", questionHandler.Get)
	mux.HandleFunc("POST /api/questions/{id}/answers", answerHandler.Create)
	mux.HandleFunc("POST /api/questions/{id}/accept", acceptHandler.Accept)
	mux.HandleFunc("POST /api/answers/{id}/vote", voteHandler.Cast)
	mux.HandleFunc("GET /healthz", healthHandler.Healthz)

	root := middleware.JWTMiddleware(tokenManager, log)(mux)
	server := httptest.NewServer(root)

	return &TestServerHelper{Server: server, Logger: log}
}

func (h *TestServerHelper) Close() {
	h.Server.Close()
}

func (h *TestServerHelper) URL() string {
	return h.Server.URL
}

// PostJSON sends a JSON request, optionally with a bearer token
func (h *TestServerHelper) PostJSON(t *testing.T, path, token string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req, err := http.NewRequest("POST", h.URL()+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp, decodeBody(t, resp)
}

// GetJSON sends a GET request and decodes the JSON response
func (h *TestServerHelper) GetJSON(t *testing.T, path string) (*http.Response, map[string]interface{}) {
	t.Helper()

	resp, err := http.Get(h.URL() + path)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp, decodeBody(t, resp)
}

// Register creates an account and returns its user ID and token
func (h *TestServerHelper) Register(t *testing.T, email, username string) (string, string) {
	t.Helper()

	resp, body := h.PostJSON(t, "/api/auth/register", "", map[string]string{
		"email":    email,
		"username": username,
		"password": "Password123",
	})
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusCreated)

	userID, _ := body["userId"].(string)
	token, _ := body["token"].(string)
	if userID == "" || token == "" {
		t.Fatalf("registration returned no user id or token: %v", body)
	}
	return userID, token
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if len(data) == 0 {
		return nil
	}
	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode body %q: %v", data, err)
	}
	return body
}

// AssertStatusCode helper function
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks the stable code in an error response
func AssertErrorCode(t *testing.T, body map[string]interface{}, expected string) {
	t.Helper()
	if code, _ := body["code"].(string); code != expected {
		t.Errorf("Expected error code %s, got %v", expected, body["code"])
	}
}

// In-memory repositories backing the test server.

type memUserRepo struct {
	byID       map[string]*domain.User
	byEmail    map[string]*domain.User
	byUsername map[string]*domain.User
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = "u-" + u.Email
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	m.byUsername[u.Username] = u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.NewNotFoundError("user", id)
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.NewNotFoundError("user", email)
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := m.byUsername[username]; ok {
		return u, nil
	}
	return nil, domain.NewNotFoundError("user", username)
}

func (m *memUserRepo) Update(_ context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now()
	m.byID[u.ID] = u
	return nil
}

type memQuestionRepo struct {
	questions map[string]*domain.Question
	answers   *memAnswerRepo
	seq       int
}

func (m *memQuestionRepo) Create(_ context.Context, q *domain.Question) error {
	m.seq++
	q.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	m.questions[q.ID] = q
	return nil
}

func (m *memQuestionRepo) GetByID(_ context.Context, id string) (*domain.Question, error) {
	if q, ok := m.questions[id]; ok {
		return q, nil
	}
	return nil, domain.NewNotFoundError("question", id)
}

func questionMatches(q *domain.Question, search string) bool {
	search = strings.ToLower(search)
	if strings.Contains(strings.ToLower(q.Title), search) ||
		strings.Contains(strings.ToLower(q.Description), search) {
		return true
	}
	for _, tag := range q.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func (m *memQuestionRepo) List(_ context.Context, opts domain.ListOptions) ([]*domain.QuestionSummary, error) {
	summaries := []*domain.QuestionSummary{}
	for _, q := range m.questions {
		if opts.Search != "" && !questionMatches(q, opts.Search) {
			continue
		}
		s := &domain.QuestionSummary{Question: *q}
		for _, a := range m.answers.answers {
			if a.QuestionID == q.ID {
				s.AnswerCount++
				if a.IsAccepted {
					s.HasAcceptedAnswer = true
				}
			}
		}
		if opts.Filter == domain.FilterUnanswered && s.AnswerCount > 0 {
			continue
		}
		summaries = append(summaries, s)
	}

	switch opts.Filter {
	case domain.FilterMostVoted:
		sort.Slice(summaries, func(i, j int) bool {
			return summaries[i].VoteCount > summaries[j].VoteCount
		})
	default:
		sort.Slice(summaries, func(i, j int) bool {
			return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
		})
	}

	if opts.Offset >= len(summaries) {
		return []*domain.QuestionSummary{}, nil
	}
	summaries = summaries[opts.Offset:]
	if opts.Limit > 0 && len(summaries) > opts.Limit {
		summaries = summaries[:opts.Limit]
	}
	return summaries, nil
}

type memAnswerRepo struct {
	answers map[string]*domain.Answer
}

func (m *memAnswerRepo) Create(_ context.Context, a *domain.Answer) error {
	a.CreatedAt = time.Now()
	m.answers[a.ID] = a
	return nil
}

func (m *memAnswerRepo) GetByID(_ context.Context, id string) (*domain.Answer, error) {
	if a, ok := m.answers[id]; ok {
		return a, nil
	}
	return nil, domain.NewNotFoundError("answer", id)
}

func (m *memAnswerRepo) ListByQuestion(_ context.Context, questionID string) ([]*domain.Answer, error) {
	out := []*domain.Answer{}
	for _, a := range m.answers {
		if a.QuestionID == questionID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsAccepted != out[j].IsAccepted {
			return out[i].IsAccepted
		}
		if out[i].VoteCount != out[j].VoteCount {
			return out[i].VoteCount > out[j].VoteCount
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memAnswerRepo) Accept(_ context.Context, questionID, answerID string) (*domain.Answer, error) {
	target, ok := m.answers[answerID]
	if !ok {
		return nil, domain.NewNotFoundError("answer", answerID)
	}
	if target.QuestionID != questionID {
		return nil, domain.NewValidationError("answer does not belong to this question")
	}
	if target.IsAccepted {
		return target, nil
	}
	for _, a := range m.answers {
		if a.QuestionID == questionID {
			a.IsAccepted = false
		}
	}
	target.IsAccepted = true
	return target, nil
}

type memVoteRepo struct {
	answers *memAnswerRepo
	votes   map[string]domain.VoteDirection
}

func (m *memVoteRepo) Cast(_ context.Context, userID, answerID string, direction domain.VoteDirection) (int, error) {
	answer, ok := m.answers.answers[answerID]
	if !ok {
		return 0, domain.NewNotFoundError("answer", answerID)
	}

	key := userID + "/" + answerID
	prior, voted := m.votes[key]
	switch {
	case !voted:
		answer.VoteCount += direction.Delta()
	case prior == direction:
		// repeated vote is a no-op
	default:
		answer.VoteCount += 2 * direction.Delta()
	}
	m.votes[key] = direction
	return answer.VoteCount, nil
}

func (m *memVoteRepo) Get(_ context.Context, userID, answerID string) (*domain.Vote, error) {
	if d, ok := m.votes[userID+"/"+answerID]; ok {
		return &domain.Vote{UserID: userID, AnswerID: answerID, Direction: d}, nil
	}
	return nil, domain.NewNotFoundError("vote", answerID)
}
