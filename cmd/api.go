package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/libcat/internal/services"
	"github.com/desertthunder/libcat/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the catalog API, signed with the stored session when there is one.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	catalog, _, err := r.session()
	if errors.Is(err, shared.ErrNotAuthenticated) {
		r.logger.Debug("no session, sending anonymous request")
		catalog = r.anonymous()
	} else if err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	resp, err := catalog.API().Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return r.checkAuth(&services.APIError{StatusCode: resp.StatusCode, Message: string(resp.Body), Err: shared.ErrNotAuthenticated})
	}
	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, cmd.Bool("pretty"))
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}
