// Package service contains the read side of the care plan API: listing,
// status lookup and download of stored care plans. Writes go through
// internal/admission and internal/task.
package service
