package ports

import "context"

// Renderer turns serialized diagram source into rendered image markup (e.g. SVG).
type Renderer interface {
	Render(ctx context.Context, source string) (string, error)
}
