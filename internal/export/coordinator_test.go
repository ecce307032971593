package export

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/salmonumbrella/xmlsel/internal/ajax"
	"github.com/salmonumbrella/xmlsel/internal/modal"
	"github.com/salmonumbrella/xmlsel/internal/testutil"
)

func newCoordinator(t *testing.T, url string) (*Coordinator, *modal.Terminal, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	n := modal.NewTerminal(nil)
	return &Coordinator{
		Client:   ajax.NewClient(url),
		Notifier: n,
		Console:  slog.New(slog.NewTextHandler(&logs, nil)),
	}, n, &logs
}

func TestCoordinator_Run(t *testing.T) {
	ms := testutil.NewMockServer()
	defer ms.Close()
	ms.HandleJSON("POST", DefaultURL, http.StatusOK, map[string]string{"returnMsg": "OK"})

	c, n, logs := newCoordinator(t, ms.URL())
	req := Request{"Order": {"Customer"}, "Invoice": {"Amount", "InvoiceNo"}}

	res := c.Run(context.Background(), req).Wait()
	if !res.OK() {
		t.Fatalf("Run failed: %v", res.Err())
	}
	if res.Value.Status != StatusOK {
		t.Errorf("Status = %s", res.Value.Status)
	}

	if st := n.State(); !st.Visible || st.Message != "Creating Excel file. This might take a while..." {
		t.Errorf("modal = %+v", st)
	}

	reqs := ms.RequestsTo("POST", DefaultURL)
	if len(reqs) != 1 {
		t.Fatalf("expected 1 export post, got %d", len(reqs))
	}
	var sent Request
	if err := json.Unmarshal(reqs[0].Body, &sent); err != nil {
		t.Fatalf("body: %v", err)
	}
	if !reflect.DeepEqual(sent, req) {
		t.Errorf("sent %v, want %v", sent, req)
	}

	out := logs.String()
	for _, want := range []string{"calling async postData now", "after calling async postData", "retVal is:"} {
		if !strings.Contains(out, want) {
			t.Errorf("console missing %q:\n%s", want, out)
		}
	}
}

func TestCoordinator_RunFailure(t *testing.T) {
	ms := testutil.NewMockServer()
	defer ms.Close()
	ms.HandleText("POST", DefaultURL, http.StatusInternalServerError, "boom")

	c, _, logs := newCoordinator(t, ms.URL())
	res := c.Run(context.Background(), Request{"Order": {"Customer"}}).Wait()

	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.Value.Status != StatusFailed || res.Value.Error == "" {
		t.Errorf("Outcome = %+v", res.Value)
	}
	if !strings.Contains(logs.String(), "export request failed") {
		t.Errorf("console = %s", logs.String())
	}
}

func TestCoordinator_RunNavigatesWhenIdle(t *testing.T) {
	ms := testutil.NewMockServer()
	defer ms.Close()
	ms.HandleJSON("POST", DefaultURL, http.StatusOK, map[string]string{})
	ms.HandleHTML("GET", "/xmlparser/main", `<div class="alert alert-success">Order_20260101_120000.xlsx</div>`)

	c, _, _ := newCoordinator(t, ms.URL())
	nav := &ajax.PageNavigator{Client: c.Client}
	redirect := ajax.NewIdleRedirect(context.Background(), nav, "/xmlparser/main", 10*time.Millisecond, c.Console).
		Attach(c.Client.Tracker())
	defer redirect.Stop()

	c.Run(context.Background(), Request{"Order": {"Customer"}}).Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redirect.Wait(ctx); err != nil {
		t.Fatalf("redirect: %v", err)
	}
	flashes := nav.Current().Flashes()
	if len(flashes) != 1 || flashes[0] != "Order_20260101_120000.xlsx" {
		t.Errorf("flashes = %v", flashes)
	}
}

func TestCoordinator_ProcessFile(t *testing.T) {
	ms := testutil.NewMockServer()
	defer ms.Close()

	var got string
	ms.Handle("POST", "/xmlparser/main", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		got = r.PostForm.Get("sourcefile")
		_, _ = w.Write([]byte(`<table id="t" name="Order"><tr><td>OrderID</td></tr></table>`))
	})

	c, n, _ := newCoordinator(t, ms.URL())
	doc := parse(t, `<form name="xmlmain" action="/xmlparser/main" method="post">
<input type="text" id="sourcefile" name="sourcefile" value="orders.xml"></form>`)

	next, err := c.ProcessFile(context.Background(), doc)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if got != "orders.xml" {
		t.Errorf("submitted sourcefile = %q", got)
	}
	if n.State().Message != "Parsing Xml documents. This might take a while..." {
		t.Errorf("modal = %+v", n.State())
	}
	if len(next.Tables()) != 1 || next.Tables()[0].Key() != "Order" {
		t.Errorf("next page tables = %+v", next.Tables())
	}
	if c.Client.Tracker().Active() != 0 {
		t.Error("form submission should not count as an ajax request")
	}
}

func TestCoordinator_ProcessFileWithoutSource(t *testing.T) {
	ms := testutil.NewMockServer()
	defer ms.Close()
	ms.HandleHTML("POST", "/xmlparser/main", `<div class="alert alert-danger">Please select a file to be uploaded!</div>`)

	c, n, _ := newCoordinator(t, ms.URL())
	doc := parse(t, `<form name="xmlmain" method="post"><input id="sourcefile" name="sourcefile" value=""></form>`)

	next, err := c.ProcessFile(context.Background(), doc)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if st := n.State(); !st.Visible || st.Message != modal.ParsingMessage {
		t.Errorf("modal should be shown without a source file, got %+v", st)
	}
	if flashes := next.Flashes(); len(flashes) != 1 {
		t.Errorf("flashes = %v", flashes)
	}
	if len(ms.RequestsTo("POST", "/xmlparser/main")) != 1 {
		t.Error("form should be submitted to the page path")
	}
}

func TestCoordinator_ProcessFileWithoutForm(t *testing.T) {
	c, n, _ := newCoordinator(t, "http://127.0.0.1:1")
	if _, err := c.ProcessFile(context.Background(), parse(t, `<p>no form</p>`)); err == nil {
		t.Fatal("expected error")
	}
	if n.State().Visible {
		t.Error("modal should not be shown when there is nothing to submit")
	}
}
