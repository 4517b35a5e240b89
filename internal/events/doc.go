// Package events decouples request admission from background work. Admission
// emits a TaskRequestEvent naming the care plan to generate; the task package
// registers the handler that turns it into queued work.
package events
