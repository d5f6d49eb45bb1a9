package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

func main() {
	host := flag.String("host", "http://localhost:8000", "server base URL")
	flag.Parse()

	resp, err := http.Post(*host+"/api/undo", "application/json", nil)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		log.Fatalf("Server returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	fmt.Println("Successful undo")
}
