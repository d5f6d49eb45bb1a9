package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
)

// capitalize title-cases each word of a player name so "jane doe" and
// "Jane Doe" refer to the same player.
func capitalize(words []string) string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		out = append(out, strings.ToUpper(w[:1])+strings.ToLower(w[1:]))
	}
	return strings.Join(out, " ")
}

func main() {
	host := flag.String("host", "http://localhost:8000", "server base URL")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: add-player [--host URL] <name>...")
		os.Exit(2)
	}
	name := capitalize(flag.Args())

	payload, _ := json.Marshal(map[string]string{"name": name})
	resp, err := http.Post(*host+"/api/add_player", "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		log.Fatalf("Server returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	fmt.Printf("Successfully added player %s\n", name)
}
