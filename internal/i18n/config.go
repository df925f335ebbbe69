package i18n

// Config locates translation catalogs. Dir holds one "<language>.csv" file
// per language; an empty Dir disables translation.
type Config struct {
	Dir             string
	DefaultLanguage string
}

func FromSiteConfig(dir, defaultLanguage string) Config {
	return Config{
		Dir:             dir,
		DefaultLanguage: defaultLanguage,
	}
}
