// Package generation defines the boundary to the care plan content provider.
// The worker calls a Generator once per attempt; implementations live in this
// package (the offline placeholder) and in platform adapters such as gemini.
package generation
