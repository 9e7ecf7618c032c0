package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/mmx/internal/services"
	"github.com/desertthunder/mmx/internal/shared"
	"github.com/desertthunder/mmx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the backend
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	if r.api == nil {
		return fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return r.apiError(err)
	}
	return r.writeResponse(resp, cmd.Bool("pretty"))
}

// APIPost makes a direct POST request to the backend
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	if r.api == nil {
		return fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	data := cmd.String("data")
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	r.logger.Info("POST request", "path", path)

	resp, err := r.api.Post(ctx, path, []byte(data))
	if err != nil {
		return r.apiError(err)
	}
	return r.writeResponse(resp, true)
}

// APIDump fetches every read-only endpoint for the logged-in account.
func (r *Runner) APIDump(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: task engine not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Info("dumping API state")

	progress := make(chan tasks.ProgressUpdate, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	dump, err := r.engine.Dump(ctx, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	for _, failed := range dump.Errors {
		r.logger.Warn("endpoint failed", "endpoint", failed.Endpoint, "error", failed.Error)
	}
	r.writePlain("\n✓ Dump complete\n\n")

	if cmd.Bool("save") {
		saveFile := "api_dump.json"
		data, err := json.MarshalIndent(dump, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal dump: %w", err)
		}
		if err := os.WriteFile(saveFile, data, 0644); err != nil {
			r.logger.Warn("failed to save dump", "error", err)
		} else {
			r.logger.Info("dump saved", "file", saveFile)
			r.writePlain("✓ Dump saved to %s\n\n", saveFile)
		}
	}

	return r.writeJSON(dump, cmd.Bool("pretty"))
}

// apiError keeps the response body of a non-2xx reply visible.
func (r *Runner) apiError(err error) error {
	var httpErr *services.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, httpErr.Status, string(httpErr.Body))
	}
	return fmt.Errorf("%w: %s", shared.ErrAPIRequest, services.UserMessage(err))
}

func (r *Runner) writeResponse(resp *services.APIResponse, pretty bool) error {
	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}
	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// apiCommand handles direct backend calls and the state dump
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the movie matcher backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the JSON response",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "dump",
				Usage: "Dump account, progress, users, history and library",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save dump to api_dump.json",
						Value: false,
					},
				},
				Action: r.APIDump,
			},
		},
	}
}
