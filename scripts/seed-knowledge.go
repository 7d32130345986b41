package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KnowledgeFile is the seed format: a list of admin knowledge entries.
type KnowledgeFile struct {
	Entries []Entry `json:"entries"`
}

type Entry struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Keywords string `json:"keywords"`
	Answer   string `json:"answer"`
	Priority int    `json:"priority"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/seed-knowledge.go <knowledge-file.json>")
		fmt.Println("Example: go run scripts/seed-knowledge.go testdata/agency-knowledge.json")
		os.Exit(1)
	}

	apiURL := strings.TrimRight(os.Getenv("API_URL"), "/")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}
	token, err := adminToken()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	knowledgeFile := os.Args[1]
	fmt.Printf("Seeding knowledge base\n")
	fmt.Printf("API URL: %s\n", apiURL)
	fmt.Printf("Knowledge file: %s\n\n", knowledgeFile)

	data, err := os.ReadFile(knowledgeFile)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}
	var file KnowledgeFile
	if err := json.Unmarshal(data, &file); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 30 * time.Second}
	created := 0
	for i, entry := range file.Entries {
		payload, err := json.Marshal(entry)
		if err != nil {
			fmt.Printf("  [%d] error marshaling entry: %v\n", i+1, err)
			continue
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/admin/knowledge", bytes.NewReader(payload))
		if err != nil {
			fmt.Printf("  [%d] error creating request: %v\n", i+1, err)
			continue
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+token)

		resp, err := client.Do(httpReq)
		if err != nil {
			fmt.Printf("  [%d] error sending request: %v\n", i+1, err)
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			fmt.Printf("  [%d] failed (status %d): %s\n", i+1, resp.StatusCode, strings.TrimSpace(string(body)))
			continue
		}
		created++
		fmt.Printf("  [%d] created: %s\n", i+1, entry.Question)
	}

	fmt.Printf("\nCreated %d of %d entries.\n", created, len(file.Entries))
	fmt.Printf("Try it: curl -s %s/chatbot/chat -d '{\"message\":\"How much does SEO cost?\"}'\n", apiURL)
}

// adminToken uses ADMIN_TOKEN as-is, or mints a short-lived token from ADMIN_JWT_SECRET.
func adminToken() (string, error) {
	if token := strings.TrimSpace(os.Getenv("ADMIN_TOKEN")); token != "" {
		return token, nil
	}
	secret := strings.TrimSpace(os.Getenv("ADMIN_JWT_SECRET"))
	if secret == "" {
		return "", fmt.Errorf("set ADMIN_TOKEN or ADMIN_JWT_SECRET")
	}
	claims := jwt.MapClaims{
		"sub":  "seed-knowledge",
		"role": "admin",
		"exp":  time.Now().Add(15 * time.Minute).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
