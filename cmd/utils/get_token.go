// Command get_token runs the Google sign-in flow locally and prints an ID
// token usable as a bearer token against the API.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"propdesk-service/internal/infrastructure/config"
	"propdesk-service/internal/infrastructure/oauth"
	"propdesk-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	signIn := oauth.NewGoogleSignIn(cfg.GoogleClientID, cfg.GoogleClientSecret,
		"http://localhost:8090/oauth2callback", logger.NewNop())

	state := "get-token"

	http.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		idToken, err := signIn.Exchange(context.Background(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to exchange code: %v", err), http.StatusInternalServerError)
			return
		}

		fmt.Printf("\nID Token: %s\n\n", idToken)

		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		os.Exit(0)
	})

	fmt.Printf("Open this URL in your browser:\n%s\n", signIn.AuthURL(state))

	log.Fatal(http.ListenAndServe(":8090", nil))
}
