package interfaces

// Translator resolves UI strings for the active language. Unknown keys are
// returned unchanged.
type Translator interface {
	Translate(key string) string
}
