// Package mocks provides shared test doubles for the service's interfaces.
//
// Function-field mocks (MockGenerator, MockJWTService) suit tests that script
// one behavior; TestifyMockCarePlanStore uses testify/mock for tests that
// assert on exact calls.
//
//	gen := &mocks.MockGenerator{Err: errors.New("rate limit exceeded")}
//	processor, err := task.NewCarePlanProcessor(plans, gen, cfg, logger)
package mocks
