// Package domain contains the core entities of the care plan service: providers,
// patients, orders and the care plans generated for them. It holds validation
// rules and lifecycle transitions and is independent of storage and transport.
package domain
