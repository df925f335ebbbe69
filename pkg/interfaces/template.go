package interfaces

// TemplateRenderer renders named templates with a per call context merged
// over the renderer's global context.
type TemplateRenderer interface {
	Render(name string, data map[string]any) (string, error)
}
