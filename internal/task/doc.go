// Package task runs care plan generation in the background. Admission
// enqueues the id of each new care plan; a pool of workers claims the plan,
// calls the generation provider with bounded retries and records the outcome
// on the row. Plans left behind by a crash or a full queue are recovered at
// start and by a periodic sweep.
package task
