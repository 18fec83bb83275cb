package batch

import (
	"fmt"
	"io"

	"github.com/adrianliechti/menuart/pkg/catalog"
	"github.com/adrianliechti/menuart/pkg/provider"
)

type Report struct {
	Total int

	Succeeded int
	Failed    int

	Failures []ViewFailure
}

type ViewFailure struct {
	Category string
	Item     string
	View     catalog.ViewKind

	Path string

	Err error
}

func (r *Report) fail(req Request, err error) {
	r.Failed++

	r.Failures = append(r.Failures, ViewFailure{
		Category: req.Category.Name,
		Item:     req.Item.ID,
		View:     req.View,

		Path: req.Path,

		Err: err,
	})
}

// WriteSummary prints the final tally in a human readable form.
func (r *Report) WriteSummary(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "generated %d of %d images\n", r.Succeeded, r.Total); err != nil {
		return err
	}

	if r.Failed == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "failed: %d\n", r.Failed); err != nil {
		return err
	}

	for _, f := range r.Failures {
		if _, err := fmt.Fprintf(w, "  %s/%s (%s): %s: %v\n", f.Category, f.Item, f.View, provider.ReasonOf(f.Err), f.Err); err != nil {
			return err
		}
	}

	return nil
}
