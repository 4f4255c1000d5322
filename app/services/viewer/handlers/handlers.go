// Package handlers contains the full set of handler functions and routes
// supported by the viewer web app.
package handlers

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"os"

	"github.com/ardanlabs/powchain/business/web/mid"
	"github.com/ardanlabs/powchain/foundation/web"
	"go.uber.org/zap"
)

//go:embed views/index.html
var indexHTML string

// UIMux constructs an http.Handler with all application routes defined.
// The page streams node events from the websocket at eventsURL.
func UIMux(shutdown chan os.Signal, log *zap.SugaredLogger, eventsURL string) (*web.App, error) {
	app := web.NewApp(
		shutdown,
		mid.Logger(log),
		mid.Errors(log),
		mid.Panics(),
		mid.Cors("*"),
	)

	// Register the index page for the website.
	ig, err := newIndex(eventsURL)
	if err != nil {
		return nil, fmt.Errorf("loading index template: %w", err)
	}
	app.Handle(http.MethodGet, "", "/", ig.handler)

	return app, nil
}

// =============================================================================

type index struct {
	tmpl      *template.Template
	eventsURL string
}

func newIndex(eventsURL string) (index, error) {
	tmpl, err := template.New("index").Parse(indexHTML)
	if err != nil {
		return index{}, err
	}

	return index{tmpl: tmpl, eventsURL: eventsURL}, nil
}

func (ig index) handler(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	data := struct {
		EventsURL string
	}{
		EventsURL: ig.eventsURL,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ig.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("executing index template: %w", err)
	}

	return web.SetStatusCode(ctx, http.StatusOK)
}
