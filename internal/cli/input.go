package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/canicai/canicai/pkg/editor"
	apperrors "github.com/canicai/canicai/pkg/errors"
	"github.com/canicai/canicai/pkg/persist"
	"github.com/canicai/canicai/pkg/store"
)

// workflowInput selects the workflow a command works on: either a JSON
// file given as the single argument or a stored workflow given by --id.
type workflowInput struct {
	id string
}

func (in *workflowInput) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.id, "id", "", "use the stored workflow with this id instead of a file")
}

// args validates the positional arguments against --id.
func (in *workflowInput) args(cmd *cobra.Command, args []string) error {
	if in.id != "" {
		return cobra.NoArgs(cmd, args)
	}
	return cobra.ExactArgs(1)(cmd, args)
}

// openSession rebuilds the selected workflow against the configured catalog.
// The returned func releases every backend the session uses.
func (c *CLI) openSession(ctx context.Context, in *workflowInput, args []string) (*editor.Session, persist.Result, func(), error) {
	logger := loggerFromContext(ctx)

	src, closeCatalog, err := openCatalog(ctx, c.cfg.Catalog)
	if err != nil {
		return nil, persist.Result{}, nil, err
	}

	var st store.Store
	if in.id != "" {
		st, err = openStore(ctx, c.cfg.Store)
		if err != nil {
			closeCatalog()
			return nil, persist.Result{}, nil, err
		}
	} else {
		st = store.NewMemory()
	}
	release := func() {
		_ = st.Close()
		closeCatalog()
	}

	sess := editor.NewSession(st, src, logger, c.cfg.Layout.Spacing)
	prog := newProgress(logger)

	var res persist.Result
	if in.id != "" {
		res, err = sess.Load(ctx, in.id)
	} else {
		var saved *persist.SavedWorkflow
		saved, err = readWorkflowFile(args[0])
		if err == nil {
			res, err = sess.Open(ctx, saved)
		}
	}
	if err != nil {
		release()
		return nil, persist.Result{}, nil, err
	}
	prog.done("Loaded workflow")
	return sess, res, release, nil
}

// readWorkflowFile reads and validates a saved workflow. A path of "-"
// reads standard input.
func readWorkflowFile(path string) (*persist.SavedWorkflow, error) {
	var (
		saved *persist.SavedWorkflow
		err   error
	)
	if path == "-" {
		saved, err = persist.Read(os.Stdin)
	} else {
		saved, err = persist.ReadFile(path)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read %s", path)
	}
	if err := persist.Validate(saved); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidWorkflow, err, "%s", path)
	}
	return saved, nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns stdout for an empty path, or creates the file.
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	return os.Create(path)
}
