package http

import (
	"context"

	"github.com/a-h/templ"
	"github.com/rotisserie/eris"
)

// renderHTML renders component into one of templ's pooled buffers and returns
// a copy of the markup.
func renderHTML(ctx context.Context, component templ.Component) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "rendering page")
	}

	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := component.Render(ctx, buf); err != nil {
		return nil, eris.Wrap(err, "rendering page")
	}
	return append([]byte(nil), buf.Bytes()...), nil
}
