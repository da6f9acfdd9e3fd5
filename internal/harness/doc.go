// Package harness runs query scenarios: declarative conformance tests that
// seed an in-memory database, compile query documents, execute them, and
// check the compiled text, bound values, rows, and counts.
//
// Each scenario runs against a fresh ":memory:" store, so results depend
// only on the scenario file. Row order is asserted exactly; scenarios that
// assert the order of rows with equal sort keys should add a unique final
// sort key, because ties are returned in engine order.
//
// Golden files capture every step of a scenario as canonical JSON:
//
//	go test ./internal/harness -update
//
// regenerates testdata/golden/{scenario}.golden.
package harness
