// Package markdown renders Markdown content bodies to HTML with goldmark.
// Before rendering, block directives (expandables, cards, GitHub style
// alerts) are rewritten into HTML and math spans are shielded so MathJax
// receives them untouched.
package markdown
