package render

import "context"

type Renderer interface {
	RenderRunbook(ctx context.Context, page RunbookPage) ([]byte, error)
	RenderHTML(ctx context.Context, title string, markdown []byte) ([]byte, error)
}
