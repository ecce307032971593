package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/xmlsel/internal/ajax"
	"github.com/salmonumbrella/xmlsel/internal/logging"
	"github.com/salmonumbrella/xmlsel/internal/page"
)

// scriptResult is printed by every ajax subcommand.
type scriptResult struct {
	Endpoint string      `json:"endpoint"`
	Sent     string      `json:"sent,omitempty"`
	Response interface{} `json:"response"`
	Display  *string     `json:"display,omitempty"`
	Page     *pageReport `json:"page,omitempty"`
}

func newAjaxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ajax",
		Short: "Run the page's ajax scripts",
		Long: `Run the page's request scripts against the server. Results are written
to the console log as the page would; the reply is also printed.

With --follow the page's idle handler runs too: once the request has finished
the main page is loaded again and its flash messages are reported.`,
	}
	cmd.PersistentFlags().Bool("follow", false, "Load the main page again once the request has finished")

	cmd.AddCommand(newAjaxGetCmd())
	cmd.AddCommand(newAjaxPostCmd())
	cmd.AddCommand(newAjaxMessageCmd())
	return cmd
}

func newAjaxGetCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "GET /ajaxapi",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, func(ctx context.Context, s *ajax.Scripts) (scriptResult, error) {
				res := scriptResult{Endpoint: "GET " + ajax.PathAjax}
				if asJSON {
					r := s.GetDataFromServerJSON(ctx).Wait()
					res.Response = r.Value
					return res, r.Err()
				}
				r := s.GetDataFromServer(ctx).Wait()
				res.Response = r.Value
				return res, r.Err()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json-body", false, "Decode the reply as JSON")
	return cmd
}

func newAjaxPostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post [greeting]",
		Short: "POST a greeting to /ajaxapi",
		Long: `POST {"greeting": ...} to /ajaxapi. The server answers "OK".

The greeting defaults to "` + ajax.DefaultGreeting + `".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			greeting := ajax.DefaultGreeting
			if len(args) == 1 {
				greeting = args[0]
			}
			return runScript(cmd, func(ctx context.Context, s *ajax.Scripts) (scriptResult, error) {
				r := s.PostDataToServer(ctx, greeting).Wait()
				return scriptResult{Endpoint: "POST " + ajax.PathAjax, Sent: greeting, Response: r.Value}, r.Err()
			})
		},
	}
}

func newAjaxMessageCmd() *cobra.Command {
	var onPage bool

	cmd := &cobra.Command{
		Use:   "message [text]",
		Short: "POST a client message to /ajaxapi2",
		Long: `POST {"messageClient": ...} to /ajaxapi2 and echo the reply into the
page's display field.

The message defaults to "` + ajax.DefaultClientMessage + `". With --on-page the
main page is loaded first and the reply is written into its display element;
otherwise only the text that would be displayed is reported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := ajax.DefaultClientMessage
			if len(args) == 1 {
				message = args[0]
			}
			return runScript(cmd, func(ctx context.Context, s *ajax.Scripts) (scriptResult, error) {
				var display ajax.Display = &displayField{}
				var doc *page.Document
				if onPage {
					loaded, err := loadPage(ctx, s.Client, ConfigFromContext(ctx).GetRedirectPath())
					if err != nil {
						return scriptResult{}, err
					}
					doc = loaded
					display = doc
				}

				r := s.PostAndGetData(ctx, message, display).Wait()
				res := scriptResult{Endpoint: "POST " + ajax.PathAjax2, Sent: message, Response: r.Value}
				if !r.OK() {
					return res, r.Err()
				}

				var text string
				var shown bool
				if doc != nil {
					text, shown = doc.Display(s.DisplayID), r.Value != nil
				} else {
					f := display.(*displayField)
					text, shown = f.text, f.set
				}
				if shown {
					res.Display = &text
				}
				return res, nil
			})
		},
	}
	cmd.Flags().BoolVar(&onPage, "on-page", false, "Load the main page and write the reply into its display element")
	return cmd
}

// displayField stands in for the display element when no page is loaded.
type displayField struct {
	text string
	set  bool
}

func (d *displayField) SetDisplay(_ string, text string) bool {
	d.text, d.set = text, true
	return true
}

// runScript runs one page script and prints its result. The request's
// failure has already been logged on the console when it is returned.
func runScript(cmd *cobra.Command, run func(ctx context.Context, s *ajax.Scripts) (scriptResult, error)) error {
	ctx := cmd.Context()
	client := clientFromContext(ctx)
	scripts := &ajax.Scripts{
		Client:    client,
		Console:   logging.Console(),
		DisplayID: displayID(ctx),
	}

	follow, _ := cmd.Flags().GetBool("follow")
	var (
		redirect *ajax.IdleRedirect
		nav      *ajax.PageNavigator
	)
	if follow {
		redirect, nav = attachIdleRedirect(ctx, client)
		defer redirect.Stop()
	}

	res, err := run(ctx, scripts)
	if err != nil {
		return err
	}

	if redirect != nil {
		waitCtx, cancel := context.WithTimeout(ctx, ConfigFromContext(ctx).GetRedirectDelay()+30*time.Second)
		defer cancel()
		if err := redirect.Wait(waitCtx); err != nil {
			return err
		}
		res.Page = reportPage(ConfigFromContext(ctx).GetRedirectPath(), nav.Current())
	}

	return printerForContext(ctx).Print(ctx, res)
}

func displayID(ctx context.Context) string {
	if id := ConfigFromContext(ctx).Page.DisplayID; id != "" {
		return id
	}
	return ajax.DefaultDisplayID
}
