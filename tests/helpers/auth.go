package helpers

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"testing"
)

func randInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// GeneratePassword generates a 10 character password with a capital and special char
func GeneratePassword() string {
	const (
		lower   = "abcdefghijklmnopqrstuvwxyz"
		upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		special = "!@#$%^&*"
		numbers = "0123456789"
		all     = lower + upper + special + numbers
	)

	password := make([]byte, 10)
	password[0] = upper[randInt(len(upper))]
	password[1] = special[randInt(len(special))]
	password[2] = numbers[randInt(len(numbers))]

	for i := 3; i < 10; i++ {
		password[i] = all[randInt(len(all))]
	}

	for i := range password {
		j := randInt(len(password))
		password[i], password[j] = password[j], password[i]
	}

	return string(password)
}

// AcquireAccount registers and logs in against a running service, returning
// the user id and bearer token. Registration conflicts are tolerated so the
// same account can be reused across tests.
func AcquireAccount(t *testing.T, baseURL, email, password string) (int64, string) {
	t.Helper()

	registerBody, _ := json.Marshal(map[string]string{
		"email":     email,
		"firstName": "Test",
		"lastName":  "User",
		"password":  password,
	})
	resp, err := http.Post(baseURL+"/api/v1/users/register", "application/json", bytes.NewReader(registerBody))
	if err != nil {
		t.Fatalf("Register request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		t.Fatalf("Register failed with status %d", resp.StatusCode)
	}

	loginBody, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	resp, err = http.Post(baseURL+"/api/v1/users/login", "application/json", bytes.NewReader(loginBody))
	if err != nil {
		t.Fatalf("Login request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Login failed with status %d", resp.StatusCode)
	}

	var login struct {
		UserID int64  `json:"userId"`
		Token  string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	if login.Token == "" {
		t.Fatal("Login returned an empty token")
	}
	return login.UserID, login.Token
}

// AuthedRequest builds a request carrying the bearer token.
func AuthedRequest(t *testing.T, method, url, token string, body []byte) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Authorization", token)
	return req
}

// UniqueEmail returns an email unlikely to collide across test runs.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s%d@example.com", prefix, randInt(1_000_000_000))
}
