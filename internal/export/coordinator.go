package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/salmonumbrella/xmlsel/internal/ajax"
	"github.com/salmonumbrella/xmlsel/internal/modal"
	"github.com/salmonumbrella/xmlsel/internal/page"
	"github.com/salmonumbrella/xmlsel/internal/selection"
)

const (
	// DefaultURL is the workbook endpoint.
	DefaultURL = "/xmlparser/createexcel"
	// DefaultPagePath is where a form without an action submits to.
	DefaultPagePath = "/xmlparser/main"
	// FormName is the page's main form.
	FormName = "xmlmain"
	// SourceFieldID is the input holding the source file name.
	SourceFieldID = "sourcefile"
)

// Status is the explicit result of an export post.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Outcome describes what happened to one export request. The server's
// feedback still arrives as a flash message on the next page load; Outcome
// only says whether the post itself went through.
type Outcome struct {
	Status   Status      `json:"status"`
	Request  Request     `json:"request"`
	Response interface{} `json:"response,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// Coordinator runs the export and process-file actions of the page.
type Coordinator struct {
	Client      *ajax.Client
	Notifier    modal.Notifier
	URL         string
	PagePath    string
	// SourceField is the id of the source file input, SourceFieldID when empty.
	SourceField string
	Options     page.Options
	Console     *slog.Logger
}

func (c *Coordinator) console() *slog.Logger {
	if c.Console != nil {
		return c.Console
	}
	return slog.Default()
}

func (c *Coordinator) notifier() modal.Notifier {
	if c.Notifier != nil {
		return c.Notifier
	}
	return modal.Discard
}

func (c *Coordinator) url() string {
	if c.URL != "" {
		return c.URL
	}
	return DefaultURL
}

// Export builds the request from the page's selection and runs it.
func (c *Coordinator) Export(ctx context.Context, doc *page.Document, sel *selection.Page) *ajax.Call[Outcome] {
	return c.Run(ctx, Build(doc, sel))
}

// Run shows the export dialog and posts req in the background. The reply is
// logged and otherwise ignored.
func (c *Coordinator) Run(ctx context.Context, req Request) *ajax.Call[Outcome] {
	c.notifier().Show(modal.ExportMessage)

	log := c.console()
	log.Info("calling async postData now", "url", c.url(), "tables", len(req))

	call := ajax.Go(ctx, c.Client.Tracker(), func(ctx context.Context) ajax.Result[Outcome] {
		res := c.Client.PostExport(ctx, c.url(), req)
		out := Outcome{Status: StatusOK, Request: req, Response: res.Value}
		if !res.OK() {
			out.Status = StatusFailed
			out.Error = res.Fail.Error()
		}
		return ajax.Result[Outcome]{Value: out, Fail: res.Fail}
	}).Then(func(r ajax.Result[Outcome]) {
		if !r.OK() {
			log.Error("export request failed", "kind", string(r.Fail.Kind), "status", r.Fail.StatusCode, "error", r.Fail.Err)
			return
		}
		log.Info("retVal is:", "response", r.Value.Response)
	})

	log.Info("after calling async postData")
	return call
}

// ProcessFile shows the parsing dialog, submits the page's main form and
// returns the page the server answered with. An empty source file is submitted
// too; the server rejects it with a flash.
func (c *Coordinator) ProcessFile(ctx context.Context, doc *page.Document) (*page.Document, error) {
	form, ok := doc.Form(FormName)
	if !ok {
		return nil, fmt.Errorf("page has no %q form", FormName)
	}
	values, _ := doc.FormValues(FormName)

	field := c.SourceField
	if field == "" {
		field = SourceFieldID
	}
	source, _ := doc.FieldValue(field)
	c.notifier().Show(modal.ParsingMessage)
	c.console().Info("submitting form", "form", FormName, "source", source)

	target := strings.TrimSpace(form.Action)
	if target == "" {
		target = c.PagePath
		if target == "" {
			target = DefaultPagePath
		}
	}

	res := c.Client.Untracked().SubmitForm(ctx, form.Method, target, values)
	if !res.OK() {
		return nil, res.Err()
	}
	return page.ParseString(res.Value, c.Options)
}
