package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "question":
		handleQuestion(args)
	case "answer":
		handleAnswer(args)
	case "vote":
		castVote(args)
	case "accept":
		acceptAnswer(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: qaboard auth <register|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		registerUser(args[1:])
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleQuestion(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: qaboard question <ask|list|show>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "ask":
		askQuestion(args[1:])
	case "list":
		listQuestions(args[1:])
	case "show":
		showQuestion(args[1:])
	default:
		fmt.Printf("unknown question command: %s\n", subCmd)
	}
}

func handleAnswer(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: qaboard answer <post>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "post":
		postAnswer(args[1:])
	default:
		fmt.Printf("unknown answer command: %s\n", subCmd)
	}
}

// Auth commands
func registerUser(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *username == "" || *password == "" {
		fmt.Println("Error: email, username, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"email":    *email,
		"username": *username,
		"password": *password,
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/register", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ User registered: %s\n", *email)
		if token, ok := result["token"].(string); ok {
			saveToken(token)
		}
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s\n", *email)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logoutUser() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", token[:20])
}

// Question commands
func askQuestion(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	title := fs.String("title", "", "question title")
	description := fs.String("description", "", "question body")
	tags := fs.String("tags", "", "comma-separated tags (max 5)")

	fs.Parse(args)

	if *title == "" || *description == "" {
		fmt.Println("Error: title and description are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]interface{}{
		"title":       *title,
		"description": *description,
	}
	if *tags != "" {
		payload["tags"] = strings.Split(*tags, ",")
	}

	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/questions", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Question posted: %v\n", result["id"])
	} else {
		fmt.Printf("✗ Failed: %v\n", result)
	}
}

func listQuestions(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	filter := fs.String("filter", "newest", "newest, unanswered or most-voted")
	page := fs.Int("page", 1, "page number")
	search := fs.String("q", "", "search term")

	fs.Parse(args)

	url := fmt.Sprintf("%s/questions?filter=%s&page=%d", getAPIURL(), *filter, *page)
	if *search != "" {
		url += "&q=" + *search
	}

	resp, err := http.Get(url)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result struct {
		Questions []map[string]interface{} `json:"questions"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tVOTES\tANSWERS\tACCEPTED")
	for _, q := range result.Questions {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n",
			q["id"], q["title"], q["voteCount"], q["answerCount"], q["hasAcceptedAnswer"])
	}
	w.Flush()
}

func showQuestion(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: qaboard question show <question-id>")
		return
	}

	resp, err := http.Get(getAPIURL() + "/questions/" + args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result struct {
		Question map[string]interface{}   `json:"question"`
		Answers  []map[string]interface{} `json:"answers"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode != 200 {
		fmt.Printf("✗ Failed: question not found\n")
		return
	}

	fmt.Printf("%v\n\n%v\n\n", result.Question["title"], result.Question["description"])
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ANSWER\tVOTES\tACCEPTED")
	for _, a := range result.Answers {
		fmt.Fprintf(w, "%v\t%v\t%v\n", a["id"], a["voteCount"], a["isAccepted"])
	}
	w.Flush()
}

// Answer commands
func postAnswer(args []string) {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	questionID := fs.String("question", "", "question ID")
	content := fs.String("content", "", "answer body")

	fs.Parse(args)

	if *questionID == "" || *content == "" {
		fmt.Println("Error: question and content are required")
		fs.PrintDefaults()
		return
	}

	data, _ := json.Marshal(map[string]string{"content": *content})
	req, _ := http.NewRequest("POST", getAPIURL()+"/questions/"+*questionID+"/answers", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Answer posted: %v\n", result["id"])
	} else {
		fmt.Printf("✗ Failed: %v\n", result)
	}
}

// Vote commands
func castVote(args []string) {
	fs := flag.NewFlagSet("vote", flag.ExitOnError)
	answerID := fs.String("answer", "", "answer ID")
	direction := fs.String("direction", "up", "up or down")

	fs.Parse(args)

	if *answerID == "" {
		fmt.Println("Error: answer is required")
		fs.PrintDefaults()
		return
	}

	data, _ := json.Marshal(map[string]string{"direction": *direction})
	req, _ := http.NewRequest("POST", getAPIURL()+"/answers/"+*answerID+"/vote", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		fmt.Printf("✓ Vote recorded, answer now at %v\n", result["voteCount"])
	} else {
		fmt.Printf("✗ Failed: %v\n", result)
	}
}

// Accept commands
func acceptAnswer(args []string) {
	fs := flag.NewFlagSet("accept", flag.ExitOnError)
	questionID := fs.String("question", "", "question ID")
	answerID := fs.String("answer", "", "answer ID")

	fs.Parse(args)

	if *questionID == "" || *answerID == "" {
		fmt.Println("Error: question and answer are required")
		fs.PrintDefaults()
		return
	}

	data, _ := json.Marshal(map[string]string{"answerId": *answerID})
	req, _ := http.NewRequest("POST", getAPIURL()+"/questions/"+*questionID+"/accept", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		fmt.Printf("✓ Answer accepted: %v\n", result["id"])
	} else {
		fmt.Printf("✗ Failed: %v\n", result)
	}
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("QABOARD_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.qaboard/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.qaboard", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`QABoard CLI

Usage:
  qaboard <command> [options]

Commands:
  auth       User authentication (register, login, logout, who)
  question   Question operations (ask, list, show)
  answer     Answer operations (post)
  vote       Vote on an answer (-answer <id> -direction up|down)
  accept     Accept an answer (-question <id> -answer <id>)
  help       Show this help message

Environment Variables:
  QABOARD_API    API endpoint (default: http://localhost:8080/api)

Examples:
  qaboard auth register -email user@example.com -username user -password pass
  qaboard auth login -email user@example.com -password pass
  qaboard question ask -title "How do I X" -description "Details" -tags go,http
  qaboard question list -filter most-voted
  qaboard vote -answer <answer-id> -direction up
`)
}
