// Package mock provides test doubles for the ai interfaces.
//
// The mocks use function fields for behavior injection: set the
// corresponding *Func field to override a method, or leave it nil for
// deterministic default behavior suitable for most tests.
package mock
