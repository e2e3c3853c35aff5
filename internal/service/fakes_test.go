package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/yourorg/qaboard/internal/domain"
)

// In-memory repository fakes shared by the service tests.

type memUserRepo struct {
	byID       map[string]*domain.User
	byEmail    map[string]*domain.User
	byUsername map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:       map[string]*domain.User{},
		byEmail:    map[string]*domain.User{},
		byUsername: map[string]*domain.User{},
	}
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
	m.byEmail[u.Email] = u
	m.byUsername[u.Username] = u
	return nil
}

type memQuestionRepo struct {
	questions map[string]*domain.Question
	answers   *memAnswerRepo
	seq       int
}

func newMemQuestionRepo(answers *memAnswerRepo) *memQuestionRepo {
	return &memQuestionRepo{questions: map[string]*domain.Question{}, answers: answers}
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
		if m.answers != nil {
			for _, a := range m.answers.answers {
				if a.QuestionID == q.ID {
					s.AnswerCount++
					if a.IsAccepted {
						s.HasAcceptedAnswer = true
					}
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

func newMemAnswerRepo() *memAnswerRepo {
	return &memAnswerRepo{answers: map[string]*domain.Answer{}}
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
	votes   map[string]domain.VoteDirection // userID + "/" + answerID
}

func newMemVoteRepo(answers *memAnswerRepo) *memVoteRepo {
	return &memVoteRepo{answers: answers, votes: map[string]domain.VoteDirection{}}
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
