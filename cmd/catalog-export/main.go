package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

// catalog-export fetches a csv export from a running catalog-search-ws
// instance, for scripted harvesting of saved searches.

func exportAction(ctx context.Context, c *cli.Command) error {
	endpoint := strings.TrimRight(c.String("endpoint"), "/")

	params, err := url.ParseQuery(c.String("params"))
	if err != nil {
		return fmt.Errorf("invalid search params: %w", err)
	}

	if c.Bool("confirm") == true {
		params.Set("confirm", "true")
	}

	exportURL := fmt.Sprintf("%s/api/export?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", exportURL, nil)
	if err != nil {
		return err
	}

	if token := c.String("token"); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	client := &http.Client{Timeout: 5 * time.Minute}

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	switch res.StatusCode {
	case http.StatusOK:
		// fall through to write the csv

	case http.StatusConflict:
		return fmt.Errorf("export needs confirmation (rerun with --confirm): %s", strings.TrimSpace(string(body)))

	default:
		return fmt.Errorf("export failed: %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	out := c.String("out")

	if out == "" || out == "-" {
		_, err = os.Stdout.Write(body)
		return err
	}

	if err := os.WriteFile(out, body, 0644); err != nil {
		return err
	}

	log.Printf("wrote %d bytes to %s", len(body), out)

	return nil
}

func main() {
	app := &cli.Command{
		Name:  "catalog-export",
		Usage: "Export catalogue search results as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "Base URL of the search service",
				Value: "http://localhost:8080",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Bearer token, when the service requires auth",
			},
			&cli.StringFlag{
				Name:  "params",
				Usage: "Search state as a query string, e.g. 'q1=kitab&f1=title&library=SK'",
			},
			&cli.BoolFlag{
				Name:  "confirm",
				Usage: "Accept truncation of oversized exports",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output file ('-' for stdout)",
				Value: "-",
			},
		},
		Action: exportAction,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
