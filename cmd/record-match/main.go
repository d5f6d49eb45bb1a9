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

func capitalize(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

func main() {
	host := flag.String("host", "http://localhost:8000", "server base URL")
	winner := flag.String("winner", "", "name of the winning player")
	loser := flag.String("loser", "", "name of the losing player")
	flag.Parse()

	if *winner == "" || *loser == "" {
		fmt.Fprintln(os.Stderr, "usage: record-match [--host URL] --winner <name> --loser <name>")
		os.Exit(2)
	}

	winnerName := capitalize(*winner)
	loserName := capitalize(*loser)

	payload, _ := json.Marshal(map[string]string{
		"winner": winnerName,
		"loser":  loserName,
	})
	resp, err := http.Post(*host+"/api/match", "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		log.Fatalf("Server returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	fmt.Printf("Successfully recorded %s beating %s\n", winnerName, loserName)
}
