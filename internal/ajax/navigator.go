package ajax

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/salmonumbrella/xmlsel/internal/page"
)

// PageNavigator loads the target page over HTTP and keeps the parsed result,
// standing in for the browser replacing the document.
type PageNavigator struct {
	Client  *Client
	Options page.Options

	mu      sync.Mutex
	current *page.Document
	visited []string
}

// Navigate implements Navigator. The page load is not an ajax request and
// does not touch the client's tracker. Flash messages found on the new page are
// logged, as that is the only feedback the server gives about an export.
func (n *PageNavigator) Navigate(ctx context.Context, target string) error {
	res := n.Client.Untracked().Get(ctx, target)
	if !res.OK() {
		return res.Err()
	}
	doc, err := page.Parse(strings.NewReader(res.Value), n.Options)
	if err != nil {
		return err
	}

	for _, msg := range doc.Flashes() {
		slog.Info("flash", "message", msg)
	}

	n.mu.Lock()
	n.current = doc
	n.visited = append(n.visited, target)
	n.mu.Unlock()
	return nil
}

// Current returns the last page navigated to, or nil.
func (n *PageNavigator) Current() *page.Document {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Visited returns the targets navigated to, oldest first.
func (n *PageNavigator) Visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.visited))
	copy(out, n.visited)
	return out
}
