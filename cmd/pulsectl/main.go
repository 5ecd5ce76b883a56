package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// pulsectl is a tiny operator helper: it registers a monitor against a
// running monitord and prints the result of the first check.
func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	key := os.Getenv("ADMIN_API_KEY")

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Monitor URL (e.g. https://example.com): ")
	raw, _ := reader.ReadString('\n')
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		fmt.Fprintln(os.Stderr, "invalid URL")
		os.Exit(1)
	}

	fmt.Print("Name (blank to use the URL): ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Organization id (blank for none): ")
	org, _ := reader.ReadString('\n')
	org = strings.TrimSpace(org)

	body, _ := json.Marshal(map[string]string{
		"url":             raw,
		"name":            name,
		"organization_id": org,
	})
	req, err := http.NewRequest(http.MethodPost, api+"/api/monitors", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintln(os.Stderr, "request error:", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error contacting API:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		fmt.Fprintln(os.Stderr, "API returned status:", resp.Status)
		os.Exit(1)
	}

	var created struct {
		Monitor struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"monitor"`
		Result struct {
			Status         string `json:"status"`
			HTTPCode       int    `json:"http_code"`
			ResponseTimeMS int    `json:"response_time"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		fmt.Fprintln(os.Stderr, "decode error:", err)
		os.Exit(1)
	}

	fmt.Printf("Added %s (%s)\n", created.Monitor.URL, created.Monitor.ID)
	fmt.Printf("First check: %s (code %d, %d ms)\n",
		created.Result.Status, created.Result.HTTPCode, created.Result.ResponseTimeMS)
}
