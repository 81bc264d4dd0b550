// Package harness runs question scenarios end to end.
//
// A scenario is a YAML file naming a dataset, a question and the expected
// outcome:
//
//	name: count_tracks
//	description: Count shortcut on the music store
//	dataset: chinook
//	question: How many tracks are there?
//	expect:
//	  status: ok
//	  sql: SELECT COUNT(*) FROM Track;
//	  answer: The result count is 3503.
//
// Run asks the question through a real engine and checks every expectation
// that is set. RunWithGolden additionally snapshots the status, SQL and
// answer under testdata/golden/<name>.golden; regenerate with
//
//	go test ./internal/harness -update
package harness
