// Command gagyebu-sheets-auth runs the Google consent flow once and writes
// user credentials the mirror worker can load through
// GOOGLE_SERVICE_ACCOUNT_FILE, for accounts that cannot use a service
// account.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"gagyebu/internal/cli"
	"gagyebu/internal/log"
	gsheet "gagyebu/internal/sheets/google"
)

func main() {
	clientFile := flag.String("client", os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"), "OAuth client JSON file")
	port := flag.String("port", "8085", "local port for the redirect http://localhost:<port>/callback")
	out := flag.String("out", "", "credentials output file (default GOOGLE_SERVICE_ACCOUNT_FILE or sheets_credentials.json)")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := cli.LoadConfig(log.ComponentSheets)
	logger := cli.SetupLogger(cfg, log.ComponentSheets)

	clientJSON := []byte(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	if len(clientJSON) == 0 {
		if *clientFile == "" {
			logger.Error("Set GOOGLE_OAUTH_CLIENT_JSON, GOOGLE_OAUTH_CLIENT_FILE or -client")
			os.Exit(2)
		}
		b, err := os.ReadFile(*clientFile)
		if err != nil {
			logger.Error("Failed to read OAuth client file", log.FieldError, err)
			os.Exit(1)
		}
		clientJSON = b
	}

	outFile := *out
	if outFile == "" {
		outFile = cfg.GoogleServiceAccountFile
	}
	if outFile == "" {
		outFile = "sheets_credentials.json"
	}

	oauthCfg, err := gsheet.OAuthConfig(clientJSON, "http://localhost:"+*port+"/callback")
	if err != nil {
		logger.Error("Invalid OAuth client", log.FieldError, err)
		os.Exit(1)
	}

	state := uuid.NewString()
	codeCh := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if errStr := q.Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		select {
		case codeCh <- q.Get("code"):
		default:
		}
	})
	srv := &http.Server{Addr: "localhost:" + *port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Callback server failed", log.FieldError, err)
		}
	}()

	fmt.Printf("Open this URL to authorize:\n%s\n",
		oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)

	code := 0
	select {
	case authCode := <-codeCh:
		code = save(ctx, logger, oauthCfg, authCode, outFile)
	case <-ctx.Done():
		logger.Error("Authorization aborted", log.FieldError, ctx.Err())
		code = 1
	}

	cancel()
	stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = srv.Shutdown(shutdownCtx)
	shutdownCancel()
	os.Exit(code)
}

func save(ctx context.Context, logger *log.Logger, cfg *oauth2.Config, authCode, outFile string) int {
	tok, err := cfg.Exchange(ctx, authCode)
	if err != nil {
		logger.Error("Token exchange failed", log.FieldError, err)
		return 1
	}
	creds, err := gsheet.AuthorizedUserJSON(cfg, tok)
	if err != nil {
		logger.Error("Cannot build credentials", log.FieldError, err)
		return 1
	}
	if err := os.WriteFile(outFile, creds, 0o600); err != nil {
		logger.Error("Failed to write credentials", log.FieldError, err, "path", outFile)
		return 1
	}
	logger.Info("Saved credentials", "path", outFile)
	return 0
}
