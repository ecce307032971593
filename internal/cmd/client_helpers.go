package cmd

import (
	"context"
	"errors"

	"github.com/salmonumbrella/xmlsel/internal/ajax"
	"github.com/salmonumbrella/xmlsel/internal/config"
	"github.com/salmonumbrella/xmlsel/internal/debug"
	clierrors "github.com/salmonumbrella/xmlsel/internal/errors"
	"github.com/salmonumbrella/xmlsel/internal/logging"
	"github.com/salmonumbrella/xmlsel/internal/modal"
	"github.com/salmonumbrella/xmlsel/internal/output"
	"github.com/salmonumbrella/xmlsel/internal/page"
	"github.com/salmonumbrella/xmlsel/internal/selection"
	"github.com/salmonumbrella/xmlsel/internal/ui"
)

// clientFromContext builds the network client for the resolved server root.
// Every command gets a fresh client, and so a fresh tracker and cookie jar.
func clientFromContext(ctx context.Context) *ajax.Client {
	client := ajax.NewClient(BaseURLFromContext(ctx))
	if debug.IsDebug(ctx) {
		client.WithDebugOutput(stderrFromContext(ctx))
	}
	return client
}

func pageOptions(cfg *config.Config) page.Options {
	return page.Options{
		TableSelector: cfg.Page.TableSelector,
		RowSelector:   cfg.Page.RowSelector,
		SelectedClass: cfg.Page.SelectedClass,
	}
}

// notifierFromContext renders the modal on the UI unless output is quiet.
func notifierFromContext(ctx context.Context) *modal.Terminal {
	if output.QuietFromContext(ctx) {
		return modal.NewTerminal(nil)
	}
	return modal.NewTerminal(ui.FromContext(ctx))
}

// loadPage fetches and parses the main page. The page load is a navigation,
// not an ajax request, so it is never counted by the client's tracker.
func loadPage(ctx context.Context, client *ajax.Client, path string) (*page.Document, error) {
	res := client.Untracked().Get(ctx, path)
	if !res.OK() {
		return nil, res.Err()
	}
	return page.ParseString(res.Value, pageOptions(ConfigFromContext(ctx)))
}

// parseClicks parses "[+]table:row" arguments.
func parseClicks(args []string) ([]selection.Click, error) {
	clicks := make([]selection.Click, 0, len(args))
	for _, arg := range args {
		c, err := selection.ParseClick(arg)
		if err != nil {
			return nil, clierrors.WrapUserError(err, "invalid click", "Write clicks as table:row, or +table:row for a shift click")
		}
		clicks = append(clicks, c)
	}
	return clicks, nil
}

// replayClicks seeds a selection from the page loaded from path and applies
// clicks in order.
func replayClicks(path string, doc *page.Document, clicks []selection.Click) (*selection.Page, error) {
	sel := doc.Selection()
	for _, c := range clicks {
		if err := sel.Click(c.Table, c.Row, c.Shift); err != nil {
			if errors.Is(err, selection.ErrUnknownTable) {
				return nil, clierrors.TableNotFoundError(path, c.Table, sel.Tables(), err)
			}
			return nil, err
		}
	}
	doc.Apply(sel)
	return sel, nil
}

type tableSummary struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Rows       int      `json:"rows"`
	Selected   []int    `json:"selected"`
	Attributes []string `json:"attributes"`
}

func summarizeTables(doc *page.Document) []tableSummary {
	out := make([]tableSummary, 0, len(doc.Tables()))
	for _, t := range doc.Tables() {
		s := tableSummary{ID: t.ID, Name: t.Name, Rows: len(t.Rows), Selected: []int{}, Attributes: []string{}}
		for _, r := range t.Rows {
			if r.Selected {
				s.Selected = append(s.Selected, r.Index)
				s.Attributes = append(s.Attributes, r.FirstCell())
			}
		}
		out = append(out, s)
	}
	return out
}

// attachIdleRedirect installs the page's idle handler on the client's
// tracker: once every request has finished, the main page is loaded again.
func attachIdleRedirect(ctx context.Context, client *ajax.Client) (*ajax.IdleRedirect, *ajax.PageNavigator) {
	cfg := ConfigFromContext(ctx)
	nav := &ajax.PageNavigator{Client: client, Options: pageOptions(cfg)}
	redirect := ajax.NewIdleRedirect(ctx, nav, cfg.GetRedirectPath(), cfg.GetRedirectDelay(), logging.Console())
	return redirect.Attach(client.Tracker()), nav
}

// pageReport is what a command prints about the page it ended up on.
type pageReport struct {
	Path    string   `json:"path"`
	Flashes []string `json:"flashes"`
}

func reportPage(path string, doc *page.Document) *pageReport {
	if doc == nil {
		return nil
	}
	flashes := doc.Flashes()
	if flashes == nil {
		flashes = []string{}
	}
	return &pageReport{Path: path, Flashes: flashes}
}
