package test

import (
	"net/http"
	"testing"
)

// TestHealthEndpoint verifies the liveness probe
func TestHealthEndpoint(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	resp, body := server.GetJSON(t, "/healthz")
	defer resp.Body.Close()

	AssertStatusCode(t, resp, http.StatusOK)
	if status, _ := body["status"].(string); status != "ok" {
		t.Errorf("Expected status 'ok', got %v", body["status"])
	}
}

// TestQuestionLifecycle walks the whole board flow: register, ask,
// answer, vote, accept.
func TestQuestionLifecycle(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	_, askerToken := server.Register(t, "asker@example.com", "asker")
	_, helperToken := server.Register(t, "helper@example.com", "helper")

	// Ask a question
	resp, body := server.PostJSON(t, "/api/questions", askerToken, map[string]interface{}{
		"title":       "How do I join two tables?",
		"description": "Full details of the problem.",
		"tags":        []string{"sql", "postgres"},
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusCreated)
	questionID, _ := body["id"].(string)
	if questionID == "" {
		t.Fatalf("expected question id, got %v", body)
	}

	// Post an answer
	resp, body = server.PostJSON(t, "/api/questions/"+questionID+"/answers", helperToken, map[string]string{
		"content": "Use an INNER JOIN.",
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusCreated)
	answerID, _ := body["id"].(string)
	if answerID == "" {
		t.Fatalf("expected answer id, got %v", body)
	}

	// Upvote the answer
	resp, body = server.PostJSON(t, "/api/answers/"+answerID+"/vote", askerToken, map[string]string{
		"direction": "up",
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)
	if count, _ := body["voteCount"].(float64); count != 1 {
		t.Errorf("expected vote count 1, got %v", body["voteCount"])
	}

	// The helper cannot accept an answer on the asker's question
	resp, body = server.PostJSON(t, "/api/questions/"+questionID+"/accept", helperToken, map[string]string{
		"answerId": answerID,
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusForbidden)
	AssertErrorCode(t, body, "FORBIDDEN")

	// The asker accepts it
	resp, body = server.PostJSON(t, "/api/questions/"+questionID+"/accept", askerToken, map[string]string{
		"answerId": answerID,
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)
	if accepted, _ := body["isAccepted"].(bool); !accepted {
		t.Errorf("expected answer to be accepted, got %v", body)
	}

	// The listing reflects the accepted answer
	resp, body = server.GetJSON(t, "/api/questions?filter=newest")
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)
	questions, _ := body["questions"].([]interface{})
	if len(questions) != 1 {
		t.Fatalf("expected one question in listing, got %d", len(questions))
	}
	first, _ := questions[0].(map[string]interface{})
	if hasAccepted, _ := first["hasAcceptedAnswer"].(bool); !hasAccepted {
		t.Errorf("expected hasAcceptedAnswer=true in listing")
	}
}

// TestWritesRequireAuth verifies that every write endpoint rejects
// missing tokens while reads stay public
func TestWritesRequireAuth(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	paths := []string{
		"/api/questions",
		"/api/questions/some-id/answers",
		"/api/questions/some-id/accept",
		"/api/answers/some-id/vote",
	}
	for _, path := range paths {
		resp, _ := server.PostJSON(t, path, "", map[string]string{})
		resp.Body.Close()
		AssertStatusCode(t, resp, http.StatusUnauthorized)
	}

	// Reads need no token
	resp, _ := server.GetJSON(t, "/api/questions")
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)
}

// TestLoginFlow verifies login and the uniform failure response
func TestLoginFlow(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	server.Register(t, "eve@example.com", "eve")

	resp, body := server.PostJSON(t, "/api/auth/login", "", map[string]string{
		"email":    "eve@example.com",
		"password": "Password123",
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)
	if token, _ := body["token"].(string); token == "" {
		t.Fatalf("expected token on login")
	}

	// Wrong password and unknown email look identical
	resp, wrongBody := server.PostJSON(t, "/api/auth/login", "", map[string]string{
		"email":    "eve@example.com",
		"password": "WrongPassword",
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusUnauthorized)
	AssertErrorCode(t, wrongBody, "INVALID_CREDENTIALS")

	resp, unknownBody := server.PostJSON(t, "/api/auth/login", "", map[string]string{
		"email":    "ghost@example.com",
		"password": "Password123",
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusUnauthorized)
	AssertErrorCode(t, unknownBody, "INVALID_CREDENTIALS")

	if wrongBody["error"] != unknownBody["error"] {
		t.Errorf("expected identical failure bodies, got %v vs %v", wrongBody, unknownBody)
	}
}

// TestInvalidToken verifies expired/garbage tokens are rejected
func TestInvalidToken(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	resp, _ := server.PostJSON(t, "/api/questions", "not-a-real-token", map[string]interface{}{
		"title":       "Title",
		"description": "Body",
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusUnauthorized)
}

// TestValidationErrors verifies VALIDATION responses surface a 400
func TestValidationErrors(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	_, token := server.Register(t, "frank@example.com", "frank")

	// Too many tags
	resp, body := server.PostJSON(t, "/api/questions", token, map[string]interface{}{
		"title":       "Title",
		"description": "Body",
		"tags":        []string{"a", "b", "c", "d", "e", "f"},
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusBadRequest)
	AssertErrorCode(t, body, "VALIDATION")

	// Missing title
	resp, body = server.PostJSON(t, "/api/questions", token, map[string]interface{}{
		"description": "Body",
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusBadRequest)
	AssertErrorCode(t, body, "VALIDATION")

	// Unknown question for an answer
	resp, body = server.PostJSON(t, "/api/questions/missing/answers", token, map[string]string{
		"content": "An answer",
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusNotFound)
	AssertErrorCode(t, body, "NOT_FOUND")
}
